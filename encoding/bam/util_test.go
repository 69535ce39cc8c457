package bam

import (
	"reflect"
	"runtime"
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
)

// getFunctionName returns the runtime function name.
func getFunctionName(i interface{}) string {
	return runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
}

func TestFlagParser(t *testing.T) {
	// Define tests.
	tests := []struct {
		flag sam.Flags
		f    func(record *sam.Record) bool
		want bool
	}{
		// Test true behavior.
		{sam.Paired, IsPaired, true},
		{sam.ProperPair, IsProperPair, true},
		{sam.Unmapped, IsUnmapped, true},
		{sam.MateUnmapped, IsMateUnmapped, true},
		{sam.Reverse, IsReverse, true},
		{sam.MateReverse, IsMateReverse, true},
		{sam.Read1, IsRead1, true},
		{sam.Read2, IsRead2, true},
		{sam.Secondary, IsSecondary, true},
		{sam.QCFail, IsQCFail, true},
		{sam.Duplicate, IsDuplicate, true},
		{sam.Supplementary, IsSupplementary, true},
		{sam.Paired, IsPrimary, true},
		// Test false behavior.
		{sam.Supplementary, IsPaired, false},
		{sam.Duplicate, IsProperPair, false},
		{sam.QCFail, IsUnmapped, false},
		{sam.Secondary, IsMateUnmapped, false},
		{sam.Read2, IsReverse, false},
		{sam.Read1, IsMateReverse, false},
		{sam.MateReverse, IsRead1, false},
		{sam.Reverse, IsRead2, false},
		{sam.MateUnmapped, IsSecondary, false},
		{sam.Unmapped, IsQCFail, false},
		{sam.ProperPair, IsDuplicate, false},
		{sam.Paired, IsSupplementary, false},
		{sam.Secondary | sam.Supplementary, IsPrimary, false},
	}

	ref, err := sam.NewReference("chrTest", "", "", 1000, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, test := range tests {
		// Make sam.Record.
		myRecord := sam.Record{
			Name: "TestRead",
			Ref:  ref,
			Pos:  0,
			MapQ: 0,
			Cigar: []sam.CigarOp{
				sam.NewCigarOp(sam.CigarMatch, 5),
			},
			Flags:   sam.Flags(test.flag),
			MateRef: ref,
			MatePos: 0,
			TempLen: 0,
			Seq:     sam.NewSeq([]byte{}),
			Qual:    []byte{},
		}

		got := test.f(&myRecord)

		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("for flag %v and test %v: got %v, want %v", test.flag, getFunctionName(test.f), got, test.want)
		}
	}
}

func TestHasAnyFlag(t *testing.T) {
	r := &sam.Record{Flags: sam.Paired | sam.Read1}
	assert.True(t, HasAnyFlag(r, sam.Read1|sam.Duplicate))
	assert.False(t, HasAnyFlag(r, sam.ProperPair|sam.Secondary|sam.Supplementary))
	assert.False(t, HasAnyFlag(r, 0))
	assert.True(t, HasNoMappedMate(&sam.Record{Flags: sam.Read1}))
	assert.True(t, HasNoMappedMate(&sam.Record{Flags: sam.Paired | sam.MateUnmapped}))
	assert.False(t, HasNoMappedMate(r))
}
