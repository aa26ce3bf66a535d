package fmt6

// SubjectMap groups hits by subject id, remembering the order in which
// subjects were first seen.
type SubjectMap struct {
	order []string
	hits  map[string][]*Hit
}

// NewSubjectMap returns an empty SubjectMap.
func NewSubjectMap() *SubjectMap {
	return &SubjectMap{hits: make(map[string][]*Hit)}
}

// Append adds h to its subject's list, registering the subject on first use.
func (m *SubjectMap) Append(h *Hit) {
	if _, ok := m.hits[h.SubjectID]; !ok {
		m.order = append(m.order, h.SubjectID)
	}
	m.hits[h.SubjectID] = append(m.hits[h.SubjectID], h)
}

// Keys returns subject ids in first-seen order.
func (m *SubjectMap) Keys() []string {
	return m.order
}

// Get returns the hits of a subject in insertion order.
func (m *SubjectMap) Get(subject string) []*Hit {
	return m.hits[subject]
}

// Len returns the number of distinct subjects.
func (m *SubjectMap) Len() int {
	return len(m.order)
}

// bounds tracks the query coordinate range. It is unset until the first
// observation.
type bounds struct {
	min, max int
	set      bool
}

func (b *bounds) observe(start, end int) {
	if !b.set {
		b.min, b.max, b.set = start, end, true
		return
	}
	if start < b.min {
		b.min = start
	}
	if end > b.max {
		b.max = end
	}
}

// AlignmentSet is the parsed content of a tabular report for one query.
// It is built once and read-only afterward.
type AlignmentSet struct {
	QueryID string

	subjects *SubjectMap
	queryIDs []string
	hitCount int
	bounds   bounds
}

// NewAlignmentSet returns an empty set.
func NewAlignmentSet() *AlignmentSet {
	return &AlignmentSet{subjects: NewSubjectMap()}
}

// Add appends a hit. QueryID always follows the latest hit.
func (s *AlignmentSet) Add(h *Hit) {
	if !contains(s.queryIDs, h.QueryID) {
		s.queryIDs = append(s.queryIDs, h.QueryID)
	}
	s.QueryID = h.QueryID
	s.subjects.Append(h)
	s.hitCount++
	s.bounds.observe(h.QueryStart, h.QueryEnd)
}

// Subjects returns subject ids in first-seen order.
func (s *AlignmentSet) Subjects() []string {
	return s.subjects.Keys()
}

// HSPs returns the hits for a subject in file order.
func (s *AlignmentSet) HSPs(subject string) []*Hit {
	return s.subjects.Get(subject)
}

// SubjectCount returns the number of distinct subjects.
func (s *AlignmentSet) SubjectCount() int {
	return s.subjects.Len()
}

// HitCount returns the total number of hits.
func (s *AlignmentSet) HitCount() int {
	return s.hitCount
}

// QueryIDs returns every distinct query id seen, in first-seen order.
func (s *AlignmentSet) QueryIDs() []string {
	return s.queryIDs
}

// Bounds returns the smallest query start and the largest query end over
// all hits. ok is false for an empty set.
func (s *AlignmentSet) Bounds() (min, max int, ok bool) {
	return s.bounds.min, s.bounds.max, s.bounds.set
}

// Empty reports whether the set holds no hits.
func (s *AlignmentSet) Empty() bool {
	return s.hitCount == 0
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
