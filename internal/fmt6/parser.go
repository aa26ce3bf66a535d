package fmt6

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
)

// Error kinds wrapped by ParseError.
var (
	// ErrMalformedRecord means a line has too few columns.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidField means a consumed column is not a valid number.
	ErrInvalidField = errors.New("invalid field")
	// ErrMultipleQueries means the report mixes more than one query id.
	ErrMultipleQueries = errors.New("multiple query ids")
)

// ParseError reports a bad input line with its position and content.
type ParseError struct {
	Line    int
	Content string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fmt6 parse error at line %d: %s: %s (%q)", e.Line, e.Err, e.Message, e.Content)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser reads hits from a tabular BLAST report.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *pgzip.Reader
	lineNumber int
}

// NewParser creates a parser for the given file. Gzipped reports are
// detected by their magic bytes. A path of "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fmt6 file: %w", err)
	}

	p := &Parser{file: file}

	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read fmt6 header: %w", err)
	}

	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		p.gzipReader, err = pgzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = br
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	return &Parser{reader: bufio.NewReader(r)}, nil
}

// Next reads the next hit. Returns nil, nil when there are no more hits.
func (p *Parser) Next() (*Hit, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read hit line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, " \t\r\n")

		// Blank lines and -outfmt 7 comment lines carry no hits.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		return p.parseLine(line)
	}
}

func (p *Parser) parseLine(line string) (*Hit, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Content: line,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minFields, len(fields)),
			Err:     ErrMalformedRecord,
		}
	}

	h := &Hit{
		QueryID:   fields[ColQuerySeqID],
		SubjectID: fields[ColSubjectSeqID],
		Line:      p.lineNumber,
	}

	pident, err := strconv.ParseFloat(fields[ColPercentIdentity], 64)
	if err != nil || math.IsNaN(pident) || pident < 0 || pident > 100 {
		return nil, p.invalid(line, "pident", fields[ColPercentIdentity])
	}
	h.PercentIdentity = pident

	coords := []struct {
		name string
		col  int
		dst  *int
	}{
		{"qstart", ColQueryStart, &h.QueryStart},
		{"qend", ColQueryEnd, &h.QueryEnd},
		{"sstart", ColSubjectStart, &h.SubjectStart},
		{"send", ColSubjectEnd, &h.SubjectEnd},
	}
	for _, c := range coords {
		v, err := strconv.Atoi(fields[c.col])
		if err != nil || v < 0 {
			return nil, p.invalid(line, c.name, fields[c.col])
		}
		*c.dst = v
	}

	// The remaining columns are informational only.
	h.Length = optionalInt(fields, ColLength)
	h.Mismatch = optionalInt(fields, ColMismatch)
	h.GapOpen = optionalInt(fields, ColGapOpen)
	h.EValue = optionalFloat(fields, ColEValue)
	h.BitScore = optionalFloat(fields, ColBitScore)

	return h, nil
}

func (p *Parser) invalid(line, column, value string) error {
	return &ParseError{
		Line:    p.lineNumber,
		Content: line,
		Message: fmt.Sprintf("invalid %s: %q", column, value),
		Err:     ErrInvalidField,
	}
}

func optionalInt(fields []string, col int) int {
	if col >= len(fields) {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(fields[col]))
	if err != nil {
		return 0
	}
	return v
}

func optionalFloat(fields []string, col int) float64 {
	if col >= len(fields) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[col]), 64)
	if err != nil {
		return 0
	}
	return v
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// Options controls how hits are collected into an AlignmentSet.
type Options struct {
	// AllowMixedQueries pools hits from several query ids into one set
	// instead of failing. The last query id read names the set.
	AllowMixedQueries bool

	Logger *zap.Logger
}

// HitReader is implemented by Parser and by anything else that yields hits.
type HitReader interface {
	// Next returns nil, nil when there are no more hits.
	Next() (*Hit, error)
}

// ReadAlignmentSet drains r into an AlignmentSet. Any parse error aborts
// the read; a partially read set is never returned.
func ReadAlignmentSet(r HitReader, opts Options) (*AlignmentSet, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	set := NewAlignmentSet()
	warned := false
	for {
		h, err := r.Next()
		if err != nil {
			return nil, err
		}
		if h == nil {
			break
		}

		if !set.Empty() && !contains(set.QueryIDs(), h.QueryID) {
			if !opts.AllowMixedQueries {
				return nil, &ParseError{
					Line:    h.Line,
					Content: h.QueryID,
					Message: fmt.Sprintf("query %q follows query %q", h.QueryID, set.QueryID),
					Err:     ErrMultipleQueries,
				}
			}
			if !warned {
				logger.Warn("report mixes several queries; pooling hits into one diagram",
					zap.String("first", set.QueryIDs()[0]),
					zap.String("next", h.QueryID),
					zap.Int("line", h.Line))
				warned = true
			}
		}

		set.Add(h)
	}

	return set, nil
}

// Parse reads a whole report from r.
func Parse(r io.Reader, opts Options) (*AlignmentSet, error) {
	p, err := NewParserFromReader(r)
	if err != nil {
		return nil, err
	}
	return ReadAlignmentSet(p, opts)
}

// ParseFile reads a whole report from path.
func ParseFile(path string, opts Options) (*AlignmentSet, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return ReadAlignmentSet(p, opts)
}
