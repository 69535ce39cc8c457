package svevidence

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

func cigar(s string) sam.Cigar {
	c, err := sam.ParseCigar([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("bad cigar %q: %v", s, err))
	}
	return c
}

func newAux(name string, val interface{}) sam.Aux {
	aux, err := sam.NewAux(sam.NewTag(name), val)
	if err != nil {
		panic(fmt.Sprintf("error creating %s %v tag: %v", name, val, err))
	}
	return aux
}

// newRecord creates a record with the given SA tag. An empty sa means no tag.
func newRecord(name string, flags sam.Flags, c string, sa string) *sam.Record {
	r := sam.GetFromFreePool()
	r.Name = name
	r.Flags = flags
	r.Cigar = cigar(c)
	r.AuxFields = nil
	if sa != "" {
		r.AuxFields = append(r.AuxFields, newAux("SA", sa))
	}
	return r
}

type memSink struct {
	recs []*sam.Record
	err  error
}

func (s *memSink) Write(r *sam.Record) error {
	if s.err != nil {
		return s.err
	}
	copy := *r
	s.recs = append(s.recs, &copy)
	return nil
}

func (s *memSink) Close() error { return nil }

func (s *memSink) names() []string {
	names := []string{}
	for _, r := range s.recs {
		names = append(names, r.Name)
	}
	return names
}
