// Package summary reports per-subject statistics of an AlignmentSet.
package summary

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/inodb/blast-imager/internal/fmt6"
)

// SubjectSummary aggregates the HSPs of one subject.
type SubjectSummary struct {
	SubjectID string
	HSPs      int
	// AlignedLength is the summed query span of all HSPs.
	AlignedLength int
	MeanIdentity  float64
	// StdDevIdentity is 0 for a single HSP.
	StdDevIdentity float64
	MinIdentity    float64
	MaxIdentity    float64
	MaxBitScore    float64
	Forward        int
	Reverse        int
}

// Strands returns "+", "-" or "+/-" depending on the strands seen.
func (s *SubjectSummary) Strands() string {
	switch {
	case s.Forward > 0 && s.Reverse > 0:
		return "+/-"
	case s.Reverse > 0:
		return "-"
	}
	return "+"
}

// Summarize returns one summary per subject, in subject order.
func Summarize(set *fmt6.AlignmentSet) []*SubjectSummary {
	out := make([]*SubjectSummary, 0, set.SubjectCount())
	for _, sid := range set.Subjects() {
		hits := set.HSPs(sid)
		ids := make([]float64, len(hits))
		bits := make([]float64, len(hits))

		s := &SubjectSummary{SubjectID: sid, HSPs: len(hits)}
		for i, h := range hits {
			ids[i] = h.PercentIdentity
			bits[i] = h.BitScore
			s.AlignedLength += h.QuerySpan()
			if h.Strand() == fmt6.Forward {
				s.Forward++
			} else {
				s.Reverse++
			}
		}

		if len(ids) > 1 {
			s.MeanIdentity, s.StdDevIdentity = stat.MeanStdDev(ids, nil)
		} else {
			s.MeanIdentity = ids[0]
		}
		s.MinIdentity = floats.Min(ids)
		s.MaxIdentity = floats.Max(ids)
		s.MaxBitScore = floats.Max(bits)

		out = append(out, s)
	}
	return out
}
