// Package bamsink writes sam.Records to a BAM or SAM file.
package bamsink

import (
	"context"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// Sink accepts records one at a time. Thread compatible.
type Sink interface {
	// Write serializes the record. The caller may modify or reuse r after
	// Write returns.
	Write(r *sam.Record) error
	// Close flushes the output. It must be called exactly once.
	Close() error
}

// Opts defines options for Create.
type Opts struct {
	// CompressionLevel is a gzip level, e.g. gzip.DefaultCompression. It is
	// consulted only for BAM output.
	CompressionLevel int
	// Parallelism is the number of BGZF compression goroutines. Values <= 0
	// mean one.
	Parallelism int
}

// DefaultOpts is the default value of Opts.
var DefaultOpts = Opts{
	CompressionLevel: gzip.DefaultCompression,
	Parallelism:      1,
}

// IsSAMPath returns true if path names a SAM text file, i.e. its last dotted
// component is "sam". Everything else is written as BAM.
func IsSAMPath(path string) bool {
	parts := strings.Split(path, ".")
	return parts[len(parts)-1] == "sam"
}

type recordWriter interface {
	Write(r *sam.Record) error
}

type fileSink struct {
	ctx  context.Context
	path string
	out  file.File
	w    recordWriter
	// bamw is set iff the output is BAM. It must be closed before out.
	bamw *bam.Writer
}

// Create opens path for writing and emits the header. The output format is
// SAM if IsSAMPath(path), BAM otherwise. Existing contents of path, if any,
// are destroyed.
func Create(ctx context.Context, path string, header *sam.Header, opts Opts) (Sink, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	s := &fileSink{ctx: ctx, path: path, out: out}
	if IsSAMPath(path) {
		s.w, err = sam.NewWriter(out.Writer(ctx), header, sam.FlagDecimal)
	} else {
		wc := opts.Parallelism
		if wc <= 0 {
			wc = 1
		}
		s.bamw, err = bam.NewWriterLevel(out.Writer(ctx), header, opts.CompressionLevel, wc)
		s.w = s.bamw
	}
	if err != nil {
		out.Close(ctx) // nolint: errcheck
		return nil, errors.E(err, "write header", path)
	}
	return s, nil
}

// Write implements the Sink interface.
func (s *fileSink) Write(r *sam.Record) error {
	if err := s.w.Write(r); err != nil {
		return errors.E(err, "write", s.path)
	}
	return nil
}

// Close implements the Sink interface.
func (s *fileSink) Close() error {
	err := errors.Once{}
	if s.bamw != nil {
		err.Set(s.bamw.Close())
	}
	err.Set(s.out.Close(s.ctx))
	if err.Err() != nil {
		return errors.E(err.Err(), "close", s.path)
	}
	return nil
}
