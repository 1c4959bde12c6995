package db

import "fmt"

// Condition is a single search clause, ANDed with its siblings: either an
// exact TAG match or a NUMERIC range on an aliased index field.
type Condition struct {
	Field string
	Match string // TAG exact match when non-empty
	Range *Range // NUMERIC range otherwise
}

// Range is a numeric range with optional inclusive boundaries.
type Range struct {
	GTE *float64
	LTE *float64
}

// Validate checks that the condition is exactly one of match or range.
func (c Condition) Validate() error {
	if c.Field == "" {
		return fmt.Errorf("condition field is required")
	}
	hasMatch := c.Match != ""
	hasRange := c.Range != nil
	if hasMatch == hasRange {
		return fmt.Errorf("condition on %q must set exactly one of match or range", c.Field)
	}
	if hasRange && c.Range.GTE == nil && c.Range.LTE == nil {
		return fmt.Errorf("range on %q needs at least one boundary", c.Field)
	}
	return nil
}

// MatchCondition creates an exact tag match condition.
func MatchCondition(field, value string) Condition {
	return Condition{Field: field, Match: value}
}

// RangeCondition creates a numeric range condition.
func RangeCondition(field string, gte, lte *float64) Condition {
	return Condition{Field: field, Range: &Range{GTE: gte, LTE: lte}}
}

// Query is the input for a filtered FT.SEARCH.
type Query struct {
	IndexName    string
	Conditions   []Condition // empty means match-all
	SortBy       string      // sortable field alias, empty for engine order
	SortDesc     bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// Validate checks the query shape.
func (q *Query) Validate() error {
	if q.IndexName == "" {
		return fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset must be non-negative")
	}
	for _, c := range q.Conditions {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
