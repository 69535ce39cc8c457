package svevidence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

var saTag = sam.Tag{'S', 'A'}

// Supplementary is one entry of an SA:Z tag, "rname,pos,strand,CIGAR,mapQ,NM".
type Supplementary struct {
	// Ref is the reference name.
	Ref string
	// Pos is the 0-based alignment start. The tag stores it 1-based.
	Pos int
	// Reverse is true for strand '-'.
	Reverse bool
	// Cigar is already in fragment orientation, i.e. reversed if Reverse.
	Cigar sam.Cigar
	// MapQ and NM are -1 if the entry omits them.
	MapQ int
	NM   int
}

// saValue returns the SA tag value, and false if the tag is absent.
func saValue(r *sam.Record) (string, bool, error) {
	aux := r.AuxFields.Get(saTag)
	if aux == nil {
		return "", false, nil
	}
	v, ok := aux.Value().(string)
	if !ok {
		return "", true, errors.E(errors.Invalid,
			fmt.Sprintf("%s: SA tag has type %c, expect Z", r.Name, aux.Type()))
	}
	return v, true, nil
}

// CountSupplementary returns the number of supplementary alignments listed in
// the SA tag of r, or 0 if the tag is absent. Entries are ';'-separated; a
// terminating ';' does not start a new entry, so "a;b;" and "a;b" both count
// as two. It returns an errors.Invalid error if the tag is not a string.
func CountSupplementary(r *sam.Record) (int, error) {
	v, found, err := saValue(r)
	if err != nil || !found {
		return 0, err
	}
	n := strings.Count(v, ";")
	if v != "" && !strings.HasSuffix(v, ";") {
		n++
	}
	return n, nil
}

// FirstSupplementary parses the first entry of the SA tag of r. It returns an
// errors.NotExist error if r has no SA tag, errors.Invalid if the entry is
// malformed, and errors.NotSupported if its CIGAR has an op this package
// does not understand.
func FirstSupplementary(r *sam.Record) (Supplementary, error) {
	v, found, err := saValue(r)
	if err != nil {
		return Supplementary{}, err
	}
	if !found {
		return Supplementary{}, errors.E(errors.NotExist, fmt.Sprintf("%s: no SA tag", r.Name))
	}
	entry := v
	if i := strings.IndexByte(v, ';'); i >= 0 {
		entry = v[:i]
	}
	sa, err := ParseSupplementary(entry)
	if err != nil {
		return Supplementary{}, errors.E(err, r.Name)
	}
	return sa, nil
}

// ParseSupplementary parses a single SA entry without the trailing ';'. The
// first four fields are required; mapQ and NM are optional.
func ParseSupplementary(entry string) (Supplementary, error) {
	fields := strings.Split(entry, ",")
	if len(fields) < 4 {
		return Supplementary{}, errors.E(errors.Invalid,
			fmt.Sprintf("SA entry %q: found %d fields, expect at least 4", entry, len(fields)))
	}
	sa := Supplementary{Ref: fields[0], MapQ: -1, NM: -1}
	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 1 {
		return Supplementary{}, errors.E(errors.Invalid, fmt.Sprintf("SA entry %q: bad position", entry))
	}
	sa.Pos = pos - 1
	switch fields[2] {
	case "+":
	case "-":
		sa.Reverse = true
	default:
		return Supplementary{}, errors.E(errors.Invalid,
			fmt.Sprintf("SA entry %q: strand must be + or -, found %q", entry, fields[2]))
	}
	cigar, err := sam.ParseCigar([]byte(fields[3]))
	if err != nil {
		return Supplementary{}, errors.E(errors.Invalid, err, fmt.Sprintf("SA entry %q: bad cigar", entry))
	}
	if err := CheckCigar(cigar); err != nil {
		return Supplementary{}, err
	}
	sa.Cigar = Orient(cigar, sa.Reverse)
	for i, dst := range []*int{&sa.MapQ, &sa.NM} {
		if len(fields) <= 4+i {
			break
		}
		if *dst, err = strconv.Atoi(fields[4+i]); err != nil {
			return Supplementary{}, errors.E(errors.Invalid, err, fmt.Sprintf("SA entry %q: bad field %d", entry, 5+i))
		}
	}
	return sa, nil
}
