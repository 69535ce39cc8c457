package bamprovider_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/svevidence/encoding/bamprovider"
	"github.com/grailbio/svevidence/encoding/bamsink"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	status := m.Run()
	shutdown()
	os.Exit(status)
}

func newTestRecords(t *testing.T) (*sam.Header, []*sam.Record) {
	chr1, err := sam.NewReference("chr1", "", "", 10000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1})
	require.NoError(t, err)

	var recs []*sam.Record
	for i := 0; i < 5; i++ {
		cigar := []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 10)}
		seq := []byte("ACGTACGTAC")
		qual := []byte("IIIIIIIIII")
		r, err := sam.NewRecord(fmt.Sprintf("read%d", i), chr1, chr1, 100*i, 100*i+300, 310, 60, cigar, seq, qual, nil)
		require.NoError(t, err)
		r.Flags = sam.Paired | sam.ProperPair | sam.Read1
		recs = append(recs, r)
	}
	return header, recs
}

func writeFile(t *testing.T, path string, header *sam.Header, recs []*sam.Record) {
	s, err := bamsink.Create(vcontext.Background(), path, header, bamsink.DefaultOpts)
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, s.Write(r))
	}
	require.NoError(t, s.Close())
}

func doRead(t *testing.T, p bamprovider.Provider) []string {
	var names []string
	// Repeat to check that every iterator starts from the beginning.
	for i := 0; i < 2; i++ {
		names = []string{}
		iter := p.NewIterator()
		for iter.Scan() {
			names = append(names, iter.Record().Name)
		}
		require.NoError(t, iter.Err())
		require.NoError(t, iter.Close())
	}
	return names
}

func TestReadFile(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	header, recs := newTestRecords(t)

	for _, name := range []string{"test.bam", "test.sam"} {
		path := filepath.Join(tmpDir, name)
		writeFile(t, path, header, recs)

		p := bamprovider.NewProvider(path, bamprovider.ProviderOpts{Parallelism: 2})
		h, err := p.GetHeader()
		require.NoError(t, err)
		expect.EQ(t, len(h.Refs()), 1, name)
		expect.EQ(t, h.Refs()[0].Name(), "chr1", name)
		expect.EQ(t, doRead(t, p), []string{"read0", "read1", "read2", "read3", "read4"}, name)
		require.NoError(t, p.Close())
	}
}

func TestMissingFile(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	p := bamprovider.NewProvider(filepath.Join(tmpDir, "nonexistent.bam"))
	_, err := p.GetHeader()
	require.Error(t, err)

	iter := p.NewIterator()
	assert.False(t, iter.Scan())
	require.Error(t, iter.Err())
	require.Error(t, iter.Close())
	require.Error(t, p.Close())
}

func TestGuessFileType(t *testing.T) {
	expect.EQ(t, bamprovider.GuessFileType("foo.bam"), bamprovider.BAM)
	expect.EQ(t, bamprovider.GuessFileType("s3://bucket/dir/foo.sam"), bamprovider.SAM)
	expect.EQ(t, bamprovider.GuessFileType("foo.cram"), bamprovider.Unknown)
	expect.EQ(t, bamprovider.GuessFileType("foo"), bamprovider.Unknown)

	expect.EQ(t, bamprovider.ParseFileType("bam"), bamprovider.BAM)
	expect.EQ(t, bamprovider.ParseFileType("sam"), bamprovider.SAM)
	expect.EQ(t, bamprovider.ParseFileType("pam"), bamprovider.Unknown)
}

func TestUnknownSuffixReadsBAM(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	header, recs := newTestRecords(t)
	path := filepath.Join(tmpDir, "input.dat")
	writeFile(t, path, header, recs)

	p := bamprovider.NewProvider(path)
	_, ok := p.(*bamprovider.BAMProvider)
	assert.True(t, ok)
	expect.EQ(t, len(doRead(t, p)), len(recs))
	require.NoError(t, p.Close())
}

func TestFakeProvider(t *testing.T) {
	header, recs := newTestRecords(t)
	p := bamprovider.NewFakeProvider(header, recs)
	h, err := p.GetHeader()
	require.NoError(t, err)
	assert.True(t, h == header)

	iter := p.NewIterator()
	require.True(t, iter.Scan())
	r := iter.Record()
	r.Name = "modified"
	require.NoError(t, iter.Close())
	expect.EQ(t, recs[0].Name, "read0")
	expect.EQ(t, doRead(t, p), []string{"read0", "read1", "read2", "read3", "read4"})
	require.NoError(t, p.Close())
}

func TestErrorIterator(t *testing.T) {
	err := fmt.Errorf("synthetic error")
	iter := bamprovider.NewErrorIterator(err)
	assert.False(t, iter.Scan())
	expect.EQ(t, iter.Err(), err)
	expect.EQ(t, iter.Close(), err)
}
