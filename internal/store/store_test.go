package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/blast-imager/internal/fmt6"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const multiQuery = "Q1\tS1\t100.0\t50\t0\t0\t10\t60\t5\t55\t1e-10\t99\n" +
	"Q1\tS2\t87.5\t40\t5\t0\t30\t69\t100\t61\t1e-5\t60.2\n" +
	"Q2\tS9\t70.0\t30\t9\t1\t1\t30\t1\t30\t1e-2\t20\n" +
	"Q1\tS1\t92.1\t20\t1\t0\t70\t89\t60\t79\t2e-3\t35.0\n"

func importString(t *testing.T, s *Store, input string) int {
	t.Helper()
	p, err := fmt6.NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)
	stats, err := s.Import(p)
	require.NoError(t, err)
	return stats.Hits
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestImportAndQueries(t *testing.T) {
	s := openInMemory(t)

	assert.Equal(t, 4, importString(t, s, multiQuery))

	qs, err := s.Queries()
	require.NoError(t, err)
	assert.Equal(t, []QuerySummary{{"Q1", 3}, {"Q2", 1}}, qs)
}

func TestLoadAlignmentSet(t *testing.T) {
	s := openInMemory(t)
	importString(t, s, multiQuery)

	set, err := s.LoadAlignmentSet("Q1")
	require.NoError(t, err)

	assert.Equal(t, "Q1", set.QueryID)
	assert.Equal(t, 3, set.HitCount())
	assert.Equal(t, []string{"S1", "S2"}, set.Subjects())

	s1 := set.HSPs("S1")
	require.Len(t, s1, 2)
	assert.Equal(t, 10, s1[0].QueryStart)
	assert.Equal(t, 70, s1[1].QueryStart)
	assert.Equal(t, 4, s1[1].Line)
	assert.InDelta(t, 92.1, s1[1].PercentIdentity, 1e-9)
	assert.Equal(t, fmt6.Reverse, set.HSPs("S2")[0].Strand())

	min, max, ok := set.Bounds()
	require.True(t, ok)
	assert.Equal(t, 10, min)
	assert.Equal(t, 89, max)
}

func TestLoadAlignmentSet_NotFound(t *testing.T) {
	s := openInMemory(t)
	importString(t, s, multiQuery)

	_, err := s.LoadAlignmentSet("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryNotFound))
}

func TestWriteHits_AppendsAfterExisting(t *testing.T) {
	s := openInMemory(t)
	importString(t, s, "Q1\tS1\t90\t10\t0\t0\t1\t10\t1\t10\t0\t1\n")
	require.NoError(t, s.WriteHits([]*fmt6.Hit{
		{QueryID: "Q1", SubjectID: "S0", PercentIdentity: 90, QueryStart: 5, QueryEnd: 50, SubjectStart: 1, SubjectEnd: 10},
	}))

	set, err := s.LoadAlignmentSet("Q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S0"}, set.Subjects())
}

func TestImport_ReplacesStoredQuery(t *testing.T) {
	s := openInMemory(t)
	importString(t, s, multiQuery)

	p, err := fmt6.NewParserFromReader(strings.NewReader(multiQuery))
	require.NoError(t, err)
	stats, err := s.Import(p)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Hits: 4, Replaced: 4}, stats)

	qs, err := s.Queries()
	require.NoError(t, err)
	assert.Equal(t, []QuerySummary{{"Q1", 3}, {"Q2", 1}}, qs)

	set, err := s.LoadAlignmentSet("Q1")
	require.NoError(t, err)
	assert.Equal(t, 3, set.HitCount())
	assert.Len(t, set.HSPs("S1"), 2)
}

func TestImport_KeepsOtherQueries(t *testing.T) {
	s := openInMemory(t)
	importString(t, s, multiQuery)

	p, err := fmt6.NewParserFromReader(strings.NewReader("Q2\tS7\t99.0\t10\t0\t0\t5\t14\t1\t10\t1e-3\t20\n"))
	require.NoError(t, err)
	stats, err := s.Import(p)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Hits: 1, Replaced: 1}, stats)

	qs, err := s.Queries()
	require.NoError(t, err)
	assert.Equal(t, []QuerySummary{{"Q1", 3}, {"Q2", 1}}, qs)

	set, err := s.LoadAlignmentSet("Q2")
	require.NoError(t, err)
	assert.Equal(t, []string{"S7"}, set.Subjects())
}

func TestDeleteQueries_Empty(t *testing.T) {
	s := openInMemory(t)
	n, err := s.DeleteQueries(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriteHits_Empty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteHits(nil))

	qs, err := s.Queries()
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestImport_ParseErrorWritesNothing(t *testing.T) {
	s := openInMemory(t)
	p, err := fmt6.NewParserFromReader(strings.NewReader("Q1\tS1\t90\t10\t0\t0\t1\t10\t1\t10\t0\t1\nQ1\tS1\tbad\n"))
	require.NoError(t, err)

	_, err = s.Import(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fmt6.ErrMalformedRecord))

	qs, err := s.Queries()
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestClear(t *testing.T) {
	s := openInMemory(t)
	importString(t, s, multiQuery)
	require.NoError(t, s.Clear())

	qs, err := s.Queries()
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "hits.duckdb")

	s, err := Open(path)
	require.NoError(t, err)
	importString(t, s, multiQuery)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	qs, err := s.Queries()
	require.NoError(t, err)
	assert.Len(t, qs, 2)
}
