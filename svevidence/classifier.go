package svevidence

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	gbam "github.com/grailbio/svevidence/encoding/bam"
)

// Opts for evidence extraction.
type Opts struct {
	// MaxSupplementary is the largest number of SA entries a record may
	// carry and still be considered a split read.
	MaxSupplementary int
	// IncludeDuplicates causes duplicate-flagged records to be classified
	// instead of dropped.
	IncludeDuplicates bool
	// MinNonOverlap is the minimum number of query bases each of the primary
	// and the first supplementary alignment must cover alone.
	MinNonOverlap int
	// DiscordantMask and NoiseMask together list the flags that disqualify
	// a record from the discordant set. DiscordantMask holds the pairing
	// bits, NoiseMask the bits of records that are not primary alignments.
	DiscordantMask sam.Flags
	NoiseMask      sam.Flags
}

// DefaultOpts sets the default values of Opts. The combined mask is 2318
// (0x90e).
var DefaultOpts = Opts{
	MaxSupplementary:  1,
	IncludeDuplicates: false,
	MinNonOverlap:     20,
	DiscordantMask:    sam.ProperPair | sam.Unmapped | sam.MateUnmapped,
	NoiseMask:         sam.Secondary | sam.Supplementary,
}

// RejectReason explains why a record was not accepted as a split read.
type RejectReason int

const (
	// RejectNone means the record was accepted, or was never evaluated.
	RejectNone RejectReason = iota
	// RejectTooMany means the record has more SA entries than
	// Opts.MaxSupplementary.
	RejectTooMany
	// RejectMissing means the record has no SA tag.
	RejectMissing
	// RejectMalformed means the SA tag could not be parsed.
	RejectMalformed
	// RejectOverlap means the two alignments share too much of the query.
	RejectOverlap
)

var rejectNames = []string{"none", "too_many_supplementary", "no_supplementary", "malformed_supplementary", "overlapping"}

// String returns a short snake_case name.
func (r RejectReason) String() string {
	if int(r) < 0 || int(r) >= len(rejectNames) {
		return fmt.Sprintf("RejectReason(%d)", int(r))
	}
	return rejectNames[r]
}

// Verdict is the classification of one record.
type Verdict struct {
	// Duplicate is set when the record was dropped as a duplicate. No other
	// field is set then.
	Duplicate bool
	// Discordant is set when the record belongs to the discordant set.
	Discordant bool
	// Split is set when the record belongs to the split-read set.
	Split bool
	// Reject is the reason Split is false.
	Reject RejectReason
	// Primary and Supplementary are the query extents compared when the
	// record got as far as the non-overlap test.
	Primary, Supplementary Extent
}

// Classifier decides evidence membership of single records. It holds no
// state besides its options, so one Classifier may be shared freely.
type Classifier struct {
	opts Opts
}

// NewClassifier creates a Classifier.
func NewClassifier(opts Opts) *Classifier {
	return &Classifier{opts: opts}
}

// Opts returns the options the classifier was created with.
func (c *Classifier) Opts() Opts { return c.opts }

// IsDiscordant returns true if r has none of the disqualifying flags.
func (c *Classifier) IsDiscordant(r *sam.Record) bool {
	return !gbam.HasAnyFlag(r, c.opts.DiscordantMask|c.opts.NoiseMask)
}

// Classify computes the verdict for r. It does not modify r. A non-nil error
// is returned only when the record cannot be trusted at all, i.e. its own
// CIGAR or its SA CIGAR uses an unsupported op (errors.NotSupported).
// Problems with the SA tag itself only show up as Verdict.Reject.
func (c *Classifier) Classify(r *sam.Record) (Verdict, error) {
	var v Verdict
	if !c.opts.IncludeDuplicates && gbam.IsDuplicate(r) {
		v.Duplicate = true
		return v, nil
	}
	v.Discordant = c.IsDiscordant(r)

	if err := CheckCigar(r.Cigar); err != nil {
		return v, errors.E(err, r.Name)
	}
	v.Primary = CigarExtent(Orient(r.Cigar, gbam.IsReverse(r)))

	n, err := CountSupplementary(r)
	if err != nil {
		log.Debug.Printf("%s: skip split evaluation: %v", r.Name, err)
		v.Reject = RejectMalformed
		return v, nil
	}
	if n > c.opts.MaxSupplementary {
		v.Reject = RejectTooMany
		return v, nil
	}
	sa, err := FirstSupplementary(r)
	switch {
	case err == nil:
	case errors.Is(errors.NotSupported, err):
		return v, err
	case errors.Is(errors.NotExist, err):
		v.Reject = RejectMissing
		return v, nil
	default:
		log.Debug.Printf("%s: skip split evaluation: %v", r.Name, err)
		v.Reject = RejectMalformed
		return v, nil
	}
	v.Supplementary = CigarExtent(sa.Cigar)
	if MinNonOverlap(v.Primary, v.Supplementary) < c.opts.MinNonOverlap {
		v.Reject = RejectOverlap
		return v, nil
	}
	v.Split = true
	return v, nil
}

// FragmentSideSuffix returns "_1" for the first segment of a template and
// "_2" otherwise.
func FragmentSideSuffix(r *sam.Record) string {
	if gbam.IsRead1(r) {
		return "_1"
	}
	return "_2"
}
