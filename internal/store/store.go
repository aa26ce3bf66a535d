// Package store keeps parsed BLAST hits in a DuckDB database so that a
// report covering several queries can be imported once and diagrammed one
// query at a time.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/blast-imager/internal/fmt6"
)

// ErrQueryNotFound is returned when a query id has no stored hits.
var ErrQueryNotFound = errors.New("query not found")

// hspColumns are the hsps table columns in append order.
var hspColumns = []string{
	"ordinal", "query_id", "subject_id", "pident", "length", "mismatch", "gapopen",
	"qstart", "qend", "sstart", "send", "evalue", "bitscore", "line",
}

// Store manages a DuckDB connection holding imported hits.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS hsps (
		ordinal BIGINT PRIMARY KEY,
		query_id VARCHAR,
		subject_id VARCHAR,
		pident DOUBLE,
		length BIGINT,
		mismatch BIGINT,
		gapopen BIGINT,
		qstart BIGINT,
		qend BIGINT,
		sstart BIGINT,
		send BIGINT,
		evalue DOUBLE,
		bitscore DOUBLE,
		line BIGINT
	)`)
	return err
}

// WriteHits batch-inserts hits using the Appender API. Hits keep the order
// they are given in, after any hits already stored.
func (s *Store) WriteHits(hits []*fmt6.Hit) error {
	if len(hits) == 0 {
		return nil
	}

	var next int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(ordinal) + 1, 0) FROM hsps").Scan(&next); err != nil {
		return fmt.Errorf("read next ordinal: %w", err)
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "hsps")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i, h := range hits {
		if err := appender.AppendRow(
			next+int64(i), h.QueryID, h.SubjectID, h.PercentIdentity,
			int64(h.Length), int64(h.Mismatch), int64(h.GapOpen),
			int64(h.QueryStart), int64(h.QueryEnd), int64(h.SubjectStart), int64(h.SubjectEnd),
			h.EValue, h.BitScore, int64(h.Line),
		); err != nil {
			return fmt.Errorf("append hit: %w", err)
		}
	}

	return appender.Flush()
}

// ImportStats reports what an Import changed.
type ImportStats struct {
	// Hits is the number of hits written.
	Hits int
	// Replaced is the number of previously stored hits removed because
	// their query id appears in the imported report.
	Replaced int
}

// Import reads every hit from r and stores it. Hits already stored under a
// query id present in r are replaced, so importing a report twice keeps one
// copy. Nothing is written if r fails.
func (s *Store) Import(r fmt6.HitReader) (ImportStats, error) {
	var (
		batch []*fmt6.Hit
		ids   []string
		seen  = make(map[string]bool)
	)
	for {
		h, err := r.Next()
		if err != nil {
			return ImportStats{}, err
		}
		if h == nil {
			break
		}
		if !seen[h.QueryID] {
			seen[h.QueryID] = true
			ids = append(ids, h.QueryID)
		}
		batch = append(batch, h)
	}

	replaced, err := s.DeleteQueries(ids)
	if err != nil {
		return ImportStats{}, err
	}
	if err := s.WriteHits(batch); err != nil {
		return ImportStats{}, err
	}
	return ImportStats{Hits: len(batch), Replaced: int(replaced)}, nil
}

// DeleteQueries removes the stored hits of the given query ids and returns
// the number of rows removed.
func (s *Store) DeleteQueries(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sq.Delete("hsps").
		Where(sq.Eq{"query_id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete queries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted hits: %w", err)
	}
	return n, nil
}

// QuerySummary is a stored query id and its hit count.
type QuerySummary struct {
	QueryID string
	Hits    int
}

// Queries lists stored query ids in import order.
func (s *Store) Queries() ([]QuerySummary, error) {
	query, args, err := sq.Select("query_id", "COUNT(*)").
		From("hsps").
		GroupBy("query_id").
		OrderBy("MIN(ordinal)").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var out []QuerySummary
	for rows.Next() {
		var q QuerySummary
		if err := rows.Scan(&q.QueryID, &q.Hits); err != nil {
			return nil, fmt.Errorf("scan query id: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query ids: %w", err)
	}
	return out, nil
}

// Hits returns the stored hits of one query in import order.
func (s *Store) Hits(queryID string) ([]*fmt6.Hit, error) {
	query, args, err := sq.Select(hspColumns[1:]...).
		From("hsps").
		Where(sq.Eq{"query_id": queryID}).
		OrderBy("ordinal").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hits: %w", err)
	}
	defer rows.Close()

	var hits []*fmt6.Hit
	for rows.Next() {
		var h fmt6.Hit
		var length, mismatch, gapopen, qstart, qend, sstart, send, line int64
		if err := rows.Scan(
			&h.QueryID, &h.SubjectID, &h.PercentIdentity,
			&length, &mismatch, &gapopen,
			&qstart, &qend, &sstart, &send,
			&h.EValue, &h.BitScore, &line,
		); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		h.Length, h.Mismatch, h.GapOpen = int(length), int(mismatch), int(gapopen)
		h.QueryStart, h.QueryEnd = int(qstart), int(qend)
		h.SubjectStart, h.SubjectEnd = int(sstart), int(send)
		h.Line = int(line)
		hits = append(hits, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hits: %w", err)
	}
	return hits, nil
}

// LoadAlignmentSet rebuilds the AlignmentSet of one stored query.
func (s *Store) LoadAlignmentSet(queryID string) (*fmt6.AlignmentSet, error) {
	hits, err := s.Hits(queryID)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrQueryNotFound, queryID)
	}
	return fmt6.ReadAlignmentSet(&sliceReader{hits: hits}, fmt6.Options{})
}

// Clear removes all stored hits.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM hsps")
	return err
}

// sliceReader replays stored hits as a fmt6.HitReader.
type sliceReader struct {
	hits []*fmt6.Hit
	pos  int
}

func (r *sliceReader) Next() (*fmt6.Hit, error) {
	if r.pos >= len(r.hits) {
		return nil, nil
	}
	h := r.hits[r.pos]
	r.pos++
	return h, nil
}
