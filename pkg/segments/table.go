package segments

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transitrecon/pkg/diagnostics"
)

var ErrUnknownPolicy = errors.New("unknown conflict policy")

// ConflictPolicy decides which segment owns a canonical id that several rows share
type ConflictPolicy string

const (
	KeepFirst ConflictPolicy = "keep-first"
	KeepLast  ConflictPolicy = "keep-last"
	// Reject drops every row of a duplicated id so it never resolves
	Reject ConflictPolicy = "reject"
)

const DefaultConflictPolicy = KeepLast

func ParseConflictPolicy(value string) (ConflictPolicy, error) {
	switch ConflictPolicy(value) {
	case KeepFirst, KeepLast, Reject:
		return ConflictPolicy(value), nil
	case "":
		return DefaultConflictPolicy, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
}

// SegmentLookup resolves canonical ids to segments
type SegmentLookup interface {
	Lookup(canonicalID string) (*RoadSegment, bool)
}

// Table is an immutable index of loaded rows by canonical id
type Table struct {
	rows     []*RoadSegment
	index    map[string]*RoadSegment
	rejected map[string]int
	policy   ConflictPolicy
}

func NewTable(rows []*RoadSegment, policy ConflictPolicy) (*Table, diagnostics.List, error) {
	if _, err := ParseConflictPolicy(string(policy)); err != nil {
		return nil, nil, err
	}
	if policy == "" {
		policy = DefaultConflictPolicy
	}

	table := &Table{
		rows:     rows,
		index:    map[string]*RoadSegment{},
		rejected: map[string]int{},
		policy:   policy,
	}
	var issues diagnostics.List

	counts := map[string]int{}
	for _, row := range rows {
		if !row.HasCanonicalID() {
			issues = append(issues, diagnostics.Diagnostic{
				Stage:   stage,
				Kind:    diagnostics.KindSkippedFeature,
				Entity:  fmt.Sprintf("feature %d", row.SourceIndex),
				Source:  row.SourceFile,
				Message: "segment has no usable identifier",
			})
			continue
		}
		counts[row.CanonicalID]++

		if _, exists := table.index[row.CanonicalID]; !exists || policy == KeepLast {
			table.index[row.CanonicalID] = row
		}
	}

	if policy == Reject {
		for _, row := range rows {
			id := row.CanonicalID
			count := counts[id]
			if count < 2 {
				continue
			}
			if _, done := table.rejected[id]; done {
				continue
			}

			delete(table.index, id)
			table.rejected[id] = count

			log.Warn().Str("id", id).Int("rows", count).Msg("Rejected duplicated segment identifier")
			issues = append(issues, diagnostics.Diagnostic{
				Stage:   stage,
				Kind:    diagnostics.KindConflict,
				Entity:  id,
				Message: fmt.Sprintf("%d segments share this identifier, none kept", count),
			})
		}
	}

	log.Debug().Str("policy", string(policy)).Int("ids", len(table.index)).Int("rows", len(rows)).Msg("Indexed segments")

	return table, issues, nil
}

func (t *Table) Lookup(canonicalID string) (*RoadSegment, bool) {
	segment, exists := t.index[canonicalID]
	return segment, exists
}

// Rows are every loaded row in load order, duplicates included
func (t *Table) Rows() []*RoadSegment {
	return t.rows
}

func (t *Table) Len() int {
	return len(t.index)
}

func (t *Table) Policy() ConflictPolicy {
	return t.policy
}

func (t *Table) Rejected(canonicalID string) bool {
	_, rejected := t.rejected[canonicalID]
	return rejected
}

// Resolved lists the indexed segments in load order
func (t *Table) Resolved() []*RoadSegment {
	var resolved []*RoadSegment
	for _, row := range t.rows {
		if segment, exists := t.index[row.CanonicalID]; exists && segment == row {
			resolved = append(resolved, row)
		}
	}

	return resolved
}
