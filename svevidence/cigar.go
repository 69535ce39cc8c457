package svevidence

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// Orient returns the CIGAR in fragment (5' to 3') order. For a
// reverse-strand alignment the op order is reversed. The result never shares
// storage with c.
func Orient(c sam.Cigar, reverse bool) sam.Cigar {
	oriented := make(sam.Cigar, len(c))
	if !reverse {
		copy(oriented, c)
		return oriented
	}
	for i, op := range c {
		oriented[len(c)-1-i] = op
	}
	return oriented
}

// alignsQuery returns true for ops that place query bases on the reference.
// Equal and Mismatch are treated like Match.
func alignsQuery(t sam.CigarOpType) bool {
	switch t {
	case sam.CigarMatch, sam.CigarInsertion, sam.CigarEqual, sam.CigarMismatch:
		return true
	}
	return false
}

// CigarExtent computes the query interval occupied by the aligned part of an
// oriented CIGAR. Clips seen before the first aligned op shift both ends;
// aligned ops extend End. Clips after the aligned part, deletions, skips and
// pads do not move the interval.
func CigarExtent(c sam.Cigar) Extent {
	var (
		e       Extent
		started bool
	)
	for _, op := range c {
		t := op.Type()
		switch {
		case t == sam.CigarSoftClipped || t == sam.CigarHardClipped:
			if !started {
				e.Start += op.Len()
				e.End += op.Len()
			}
		case alignsQuery(t):
			started = true
			e.End += op.Len()
		}
	}
	return e
}

// CheckCigar returns an error of kind errors.NotSupported if c contains an op
// other than M, I, D, N, S, H, P, = or X.
func CheckCigar(c sam.Cigar) error {
	for i, op := range c {
		if op.Type() > sam.CigarMismatch {
			return errors.E(errors.NotSupported,
				fmt.Sprintf("unsupported cigar operation %d at index %d of %v", op.Type(), i, c))
		}
	}
	return nil
}
