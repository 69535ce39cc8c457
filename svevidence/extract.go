package svevidence

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/svevidence/encoding/bamprovider"
	"github.com/grailbio/svevidence/encoding/bamsink"
)

// Extract reads every record of provider once, in file order, and writes
// discordant-pair evidence to discordant and split-read evidence to split.
// A record may go to both sinks. Records written to split get "_1" or "_2"
// appended to their name, after the discordant sink has seen them.
//
// Extract fails on the first reader or sink error, or on a record whose
// geometry cannot be computed. The error names the 0-based ordinal of the
// offending record. The sinks are not closed.
func Extract(ctx context.Context, provider bamprovider.Provider, split, discordant bamsink.Sink, opts Opts) (Metrics, error) {
	var (
		m    Metrics
		c    = NewClassifier(opts)
		iter = provider.NewIterator()
		err  error
	)
	for iter.Scan() {
		if err = ctx.Err(); err != nil {
			err = errors.E(err, fmt.Sprintf("record %d", m.Records))
			break
		}
		r := iter.Record()
		var v Verdict
		if v, err = c.Classify(r); err != nil {
			err = errors.E(err, fmt.Sprintf("record %d", m.Records))
			break
		}
		m.Records++
		m.Add(v)
		if v.Duplicate {
			continue
		}
		if v.Discordant {
			if err = discordant.Write(r); err != nil {
				err = errors.E(err, fmt.Sprintf("record %d: discordant output", m.Records-1))
				break
			}
		}
		if v.Split {
			r.Name += FragmentSideSuffix(r)
			if err = split.Write(r); err != nil {
				err = errors.E(err, fmt.Sprintf("record %d: split output", m.Records-1))
				break
			}
		}
	}
	if err == nil && iter.Err() != nil {
		err = errors.E(iter.Err(), fmt.Sprintf("record %d", m.Records))
	}
	if e := iter.Close(); e != nil && err == nil {
		err = errors.E(e, fmt.Sprintf("record %d", m.Records))
	}
	log.Printf("read %d records: %d duplicates dropped, %d discordant, %d split (rejected: %d too many SA, %d no SA, %d malformed SA, %d overlapping)",
		m.Records, m.Duplicates, m.Discordant, m.Split,
		m.RejectTooMany, m.RejectMissing, m.RejectMalformed, m.RejectOverlap)
	return m, err
}
