package summary

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// TabWriter writes subject summaries in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	queryID string
	columns []string
}

// NewTabWriter creates a new tab-delimited writer for one query.
func NewTabWriter(w io.Writer, queryID string) *TabWriter {
	return &TabWriter{
		w:       bufio.NewWriter(w),
		queryID: queryID,
		columns: []string{
			"#qseqid",
			"sseqid",
			"hsps",
			"aligned_length",
			"mean_pident",
			"sd_pident",
			"min_pident",
			"max_pident",
			"max_bitscore",
			"strand",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single subject summary.
func (tw *TabWriter) Write(s *SubjectSummary) error {
	values := []string{
		tw.queryID,
		s.SubjectID,
		strconv.Itoa(s.HSPs),
		strconv.Itoa(s.AlignedLength),
		formatFloat(s.MeanIdentity, 2),
		formatFloat(s.StdDevIdentity, 2),
		formatFloat(s.MinIdentity, 2),
		formatFloat(s.MaxIdentity, 2),
		formatFloat(s.MaxBitScore, 1),
		s.Strands(),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header followed by every summary and flushes.
func (tw *TabWriter) WriteAll(rows []*SubjectSummary) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, s := range rows {
		if err := tw.Write(s); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
