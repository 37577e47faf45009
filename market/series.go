package market

import "sort"

// Series is an ordered bar sequence plus the set of named fields its rows
// actually carry. Field presence is tracked explicitly so a consumer asking
// for an absent field gets a MissingFieldError instead of silent zeros.
type Series struct {
	Bars []Bar

	fields map[string]bool
}

// NewSeries builds a series over bars carrying the given fields.
func NewSeries(bars []Bar, fields ...string) *Series {
	s := &Series{Bars: bars, fields: make(map[string]bool, len(fields))}
	for _, f := range fields {
		s.fields[f] = true
	}
	return s
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Has reports whether the series rows carry the named field.
func (s *Series) Has(field string) bool { return s.fields[field] }

// MarkField records that the named field is now populated on every bar.
func (s *Series) MarkField(field string) {
	if s.fields == nil {
		s.fields = make(map[string]bool)
	}
	s.fields[field] = true
}

// Fields returns the carried field names in sorted order.
func (s *Series) Fields() []string {
	out := make([]string, 0, len(s.fields))
	for f := range s.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy. Mutating the copy's bars (for example attaching
// a different signal column) leaves the original untouched.
func (s *Series) Clone() *Series {
	bars := make([]Bar, len(s.Bars))
	copy(bars, s.Bars)
	c := &Series{Bars: bars, fields: make(map[string]bool, len(s.fields))}
	for f := range s.fields {
		c.fields[f] = true
	}
	return c
}

// Slice returns a shallow-fielded copy over bars[from:to]. The bar backing
// array is copied so slices can be mutated independently.
func (s *Series) Slice(from, to int) *Series {
	bars := make([]Bar, to-from)
	copy(bars, s.Bars[from:to])
	c := &Series{Bars: bars, fields: make(map[string]bool, len(s.fields))}
	for f := range s.fields {
		c.fields[f] = true
	}
	return c
}

// SortByTime orders bars ascending by timestamp, preserving the relative
// order of equal timestamps.
func (s *Series) SortByTime() {
	sort.SliceStable(s.Bars, func(i, j int) bool {
		return s.Bars[i].Time.Before(s.Bars[j].Time)
	})
}
