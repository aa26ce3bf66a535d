package summary

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/blast-imager/internal/fmt6"
)

const report = "Q1\tS1\t100.0\t50\t0\t0\t10\t60\t5\t55\t1e-10\t99\n" +
	"Q1\tS2\t87.5\t40\t5\t0\t30\t69\t100\t61\t1e-5\t60.2\n" +
	"Q1\tS1\t90.0\t20\t1\t0\t70\t89\t79\t60\t2e-3\t35.0\n"

func parse(t *testing.T, input string) *fmt6.AlignmentSet {
	t.Helper()
	set, err := fmt6.Parse(strings.NewReader(input), fmt6.Options{})
	require.NoError(t, err)
	return set
}

func TestSummarize(t *testing.T) {
	rows := Summarize(parse(t, report))
	require.Len(t, rows, 2)

	s1 := rows[0]
	assert.Equal(t, "S1", s1.SubjectID)
	assert.Equal(t, 2, s1.HSPs)
	assert.Equal(t, 51+20, s1.AlignedLength)
	assert.InDelta(t, 95.0, s1.MeanIdentity, 1e-9)
	// sample standard deviation of {100, 90}
	assert.InDelta(t, 7.0710678, s1.StdDevIdentity, 1e-6)
	assert.Equal(t, 90.0, s1.MinIdentity)
	assert.Equal(t, 100.0, s1.MaxIdentity)
	assert.Equal(t, 99.0, s1.MaxBitScore)
	assert.Equal(t, "+/-", s1.Strands())

	s2 := rows[1]
	assert.Equal(t, "S2", s2.SubjectID)
	assert.Equal(t, 1, s2.HSPs)
	assert.Equal(t, 87.5, s2.MeanIdentity)
	assert.Equal(t, 0.0, s2.StdDevIdentity)
	assert.Equal(t, "-", s2.Strands())
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(parse(t, "")))
}

func TestTabWriter(t *testing.T) {
	set := parse(t, report)

	var buf bytes.Buffer
	w := NewTabWriter(&buf, set.QueryID)
	require.NoError(t, w.WriteAll(Summarize(set)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#qseqid\tsseqid\thsps"))
	assert.Equal(t, "Q1\tS1\t2\t71\t95.00\t7.07\t90.00\t100.00\t99.0\t+/-", lines[1])
	assert.Equal(t, "Q1\tS2\t1\t40\t87.50\t0.00\t87.50\t87.50\t60.2\t-", lines[2])
}
