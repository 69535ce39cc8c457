package bamprovider

import (
	"io"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// recordReader is implemented by both hts sam.Reader and hts bam.Reader.
type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

// openFunc wraps an opened file into a recordReader. The returned closer, if
// non-nil, is called before the file itself is closed.
type openFunc func(in io.Reader) (recordReader, io.Closer, error)

// fileProvider is the part shared by BAMProvider and SAMProvider. Both file
// types are read front to back, so the only difference is how the byte
// stream is decoded.
type fileProvider struct {
	path string
	open openFunc
	err  errors.Once

	mu      sync.Mutex
	nActive int
	header  *sam.Header
}

type fileIterator struct {
	provider *fileProvider
	in       file.File
	reader   recordReader
	closer   io.Closer

	err  error
	rec  *sam.Record
	done bool
}

func (p *fileProvider) getHeader() (*sam.Header, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.header != nil {
		return p.header, nil
	}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, p.path)
	if err != nil {
		p.err.Set(err)
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck
	reader, closer, err := p.open(in.Reader(ctx))
	if err != nil {
		p.err.Set(err)
		return nil, err
	}
	if closer != nil {
		defer closer.Close() // nolint: errcheck
	}
	p.header = reader.Header()
	return p.header, nil
}

func (p *fileProvider) newIterator() Iterator {
	p.mu.Lock()
	p.nActive++
	p.mu.Unlock()

	iter := &fileIterator{provider: p}
	ctx := vcontext.Background()
	if iter.in, iter.err = file.Open(ctx, p.path); iter.err != nil {
		return iter
	}
	iter.reader, iter.closer, iter.err = p.open(iter.in.Reader(ctx))
	return iter
}

func (p *fileProvider) close() error {
	if p.nActive > 0 {
		vlog.Fatalf("%d iterators still active for %v", p.nActive, p.path)
	}
	return p.err.Err()
}

// Scan implements the Iterator interface.
func (i *fileIterator) Scan() bool {
	if i.err != nil || i.done {
		return false
	}
	rec, err := i.reader.Read()
	if err != nil {
		if err != io.EOF {
			i.err = err
		}
		i.done = true
		i.rec = nil
		return false
	}
	i.rec = rec
	return true
}

// Record implements the Iterator interface.
func (i *fileIterator) Record() *sam.Record {
	return i.rec
}

// Err implements the Iterator interface.
func (i *fileIterator) Err() error {
	return i.err
}

// Close implements the Iterator interface.
func (i *fileIterator) Close() error {
	ctx := vcontext.Background()
	if i.closer != nil {
		if err := i.closer.Close(); err != nil && i.err == nil {
			i.err = err
		}
	}
	if i.in != nil {
		if err := i.in.Close(ctx); err != nil && i.err == nil {
			i.err = err
		}
	}
	p := i.provider
	if i.err != nil {
		p.err.Set(i.err)
	}
	p.mu.Lock()
	p.nActive--
	if p.nActive < 0 {
		vlog.Fatalf("Negative active count for %v", p.path)
	}
	p.mu.Unlock()
	return i.err
}

// BAMProvider implements Provider for BAM files. The path may be any URL
// supported by github.com/grailbio/base/file.
type BAMProvider struct {
	// Path of the *.bam file. Must be nonempty.
	Path string
	// Parallelism is the number of BGZF decompression goroutines. If <= 0,
	// one is used.
	Parallelism int

	once sync.Once
	fp   *fileProvider
}

func (b *BAMProvider) init() {
	b.once.Do(func() {
		rd := b.Parallelism
		if rd <= 0 {
			rd = 1
		}
		b.fp = &fileProvider{
			path: b.Path,
			open: func(in io.Reader) (recordReader, io.Closer, error) {
				r, err := bam.NewReader(in, rd)
				if err != nil {
					return nil, nil, err
				}
				return r, r, nil
			},
		}
	})
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	b.init()
	return b.fp.getHeader()
}

// NewIterator implements the Provider interface.
func (b *BAMProvider) NewIterator() Iterator {
	b.init()
	return b.fp.newIterator()
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	b.init()
	return b.fp.close()
}

// SAMProvider implements Provider for SAM text files.
type SAMProvider struct {
	// Path of the *.sam file. Must be nonempty.
	Path string

	once sync.Once
	fp   *fileProvider
}

func (s *SAMProvider) init() {
	s.once.Do(func() {
		s.fp = &fileProvider{
			path: s.Path,
			open: func(in io.Reader) (recordReader, io.Closer, error) {
				r, err := sam.NewReader(in)
				if err != nil {
					return nil, nil, err
				}
				return r, nil, nil
			},
		}
	})
}

// GetHeader implements the Provider interface.
func (s *SAMProvider) GetHeader() (*sam.Header, error) {
	s.init()
	return s.fp.getHeader()
}

// NewIterator implements the Provider interface.
func (s *SAMProvider) NewIterator() Iterator {
	s.init()
	return s.fp.newIterator()
}

// Close implements the Provider interface.
func (s *SAMProvider) Close() error {
	s.init()
	return s.fp.close()
}
