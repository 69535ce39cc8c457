package bamsink

import (
	"encoding/binary"
	"hash"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/hts/sam"
)

// Checksum is an order-independent digest of a record stream. Two streams
// holding the same records, in any order, have the same Checksum.
type Checksum struct {
	// NRecs is the number of records seen.
	NRecs int64
	// Sum is the sum of per-record seahash values.
	Sum uint64
}

func (c *Checksum) add(r *sam.Record, h hash.Hash64) {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(r.Ref.ID()))
	binary.LittleEndian.PutUint32(buf[4:], uint32(r.Pos))
	binary.LittleEndian.PutUint32(buf[8:], uint32(r.Flags))
	binary.LittleEndian.PutUint32(buf[12:], uint32(r.MapQ))
	h.Reset()
	h.Write(buf[:])         // nolint: errcheck
	h.Write([]byte(r.Name)) // nolint: errcheck
	for _, op := range r.Cigar {
		binary.LittleEndian.PutUint32(buf[:4], uint32(op))
		h.Write(buf[:4]) // nolint: errcheck
	}
	for _, aux := range r.AuxFields {
		h.Write(aux) // nolint: errcheck
	}
	c.NRecs++
	c.Sum += h.Sum64()
}

// ChecksumSink forwards records to another Sink and digests the ones that
// were written successfully.
type ChecksumSink struct {
	Sink
	h    hash.Hash64
	csum Checksum
}

// NewChecksumSink wraps s.
func NewChecksumSink(s Sink) *ChecksumSink {
	return &ChecksumSink{Sink: s, h: seahash.New()}
}

// Write implements the Sink interface.
func (s *ChecksumSink) Write(r *sam.Record) error {
	if err := s.Sink.Write(r); err != nil {
		return err
	}
	s.csum.add(r, s.h)
	return nil
}

// Checksum returns the digest of the records written so far.
func (s *ChecksumSink) Checksum() Checksum {
	return s.csum
}
