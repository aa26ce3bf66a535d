// Package fmt6 parses BLAST+ tabular output (-outfmt 6) into an ordered,
// per-subject grouping of HSPs for a single query.
package fmt6

import (
	"github.com/biogo/biogo/feat"
)

// Standard -outfmt 6 column positions.
const (
	ColQuerySeqID = iota
	ColSubjectSeqID
	ColPercentIdentity
	ColLength
	ColMismatch
	ColGapOpen
	ColQueryStart
	ColQueryEnd
	ColSubjectStart
	ColSubjectEnd
	ColEValue
	ColBitScore

	// NumColumns is the column count of an uncustomized -outfmt 6 line.
	NumColumns
)

// minFields is the number of fields a line needs for every consumed column.
const minFields = ColSubjectEnd + 1

// Hit is one HSP line of a tabular BLAST report.
type Hit struct {
	QueryID         string
	SubjectID       string
	PercentIdentity float64
	QueryStart      int
	QueryEnd        int
	SubjectStart    int
	SubjectEnd      int

	// Optional columns. Zero when absent or unparseable.
	Length   int
	Mismatch int
	GapOpen  int
	EValue   float64
	BitScore float64

	// Line is the 1-based input line the hit was read from.
	Line int
}

// Strand returns the orientation of the subject alignment relative to the
// query: forward if SubjectStart < SubjectEnd, reverse otherwise.
func (h *Hit) Strand() Strand {
	if h.SubjectStart < h.SubjectEnd {
		return Strand(feat.Forward)
	}
	return Strand(feat.Reverse)
}

// QuerySpan returns the number of query residues covered by the HSP.
func (h *Hit) QuerySpan() int {
	if h.QueryEnd >= h.QueryStart {
		return h.QueryEnd - h.QueryStart + 1
	}
	return h.QueryStart - h.QueryEnd + 1
}

// Strand is a subject orientation.
type Strand feat.Orientation

// Symbol returns "+" for forward and "-" for reverse.
func (s Strand) Symbol() string {
	switch feat.Orientation(s) {
	case feat.Forward:
		return "+"
	case feat.Reverse:
		return "-"
	}
	return "."
}

func (s Strand) String() string {
	return feat.Orientation(s).String()
}

// Forward and Reverse are the two strands a Hit can report.
var (
	Forward = Strand(feat.Forward)
	Reverse = Strand(feat.Reverse)
)
