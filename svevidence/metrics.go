package svevidence

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// Metrics counts what Extract did with the records it read.
type Metrics struct {
	// Records is the number of records read.
	Records int64
	// Duplicates is the number of records dropped as duplicates.
	Duplicates int64
	// Discordant is the number of records written to the discordant sink.
	Discordant int64
	// Split is the number of records written to the split sink.
	Split int64

	// Split rejections, by reason.
	RejectTooMany   int64
	RejectMissing   int64
	RejectMalformed int64
	RejectOverlap   int64

	// SplitChecksum and DiscordantChecksum digest the records written to
	// each sink. They are set by the caller of Extract, and are zero unless
	// the sinks were wrapped by bamsink.NewChecksumSink.
	SplitChecksum      uint64
	DiscordantChecksum uint64
}

// Add folds one verdict into m. Records is not touched.
func (m *Metrics) Add(v Verdict) {
	if v.Duplicate {
		m.Duplicates++
		return
	}
	if v.Discordant {
		m.Discordant++
	}
	if v.Split {
		m.Split++
	}
	switch v.Reject {
	case RejectTooMany:
		m.RejectTooMany++
	case RejectMissing:
		m.RejectMissing++
	case RejectMalformed:
		m.RejectMalformed++
	case RejectOverlap:
		m.RejectOverlap++
	}
}

func (m *Metrics) rows() []struct {
	name  string
	value int64
} {
	return []struct {
		name  string
		value int64
	}{
		{"records", m.Records},
		{"duplicates", m.Duplicates},
		{"discordant", m.Discordant},
		{"split", m.Split},
		{"reject_" + RejectTooMany.String(), m.RejectTooMany},
		{"reject_" + RejectMissing.String(), m.RejectMissing},
		{"reject_" + RejectMalformed.String(), m.RejectMalformed},
		{"reject_" + RejectOverlap.String(), m.RejectOverlap},
	}
}

// Write stores the metrics in path as a two-column TSV file with a
// "#metric\tcount" header line.
func (m *Metrics) Write(ctx context.Context, path string) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "Couldn't create metrics file:", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("#metric")
	w.WriteString("count")
	if err = w.EndLine(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	for _, row := range m.rows() {
		w.WriteString(row.name)
		w.WriteInt64(row.value)
		if err = w.EndLine(); err != nil {
			return errors.E(err, "error writing to metrics file:", path)
		}
	}
	for _, row := range []struct {
		name  string
		value uint64
	}{
		{"split_checksum", m.SplitChecksum},
		{"discordant_checksum", m.DiscordantChecksum},
	} {
		w.WriteString(row.name)
		w.WriteString(fmt.Sprintf("%016x", row.value))
		if err = w.EndLine(); err != nil {
			return errors.E(err, "error writing to metrics file:", path)
		}
	}
	if err = w.Flush(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	return nil
}
