// Package models defines the canonical coverage table and the approved
// alias snapshot the resolver works against.
package models

import (
	"sort"
	"strings"

	"coverscope/pkg/domain"
)

// CanonicalCoverage is one row of the canonical table. The code is the
// only legitimate identity for a coverage concept anywhere in the
// system; the table is maintained by an external administrative process
// and read-only here.
type CanonicalCoverage struct {
	Code         domain.CoverageCode
	OfficialName string
}

// CoverageAlias maps a normalized alias expression to a canonical code.
// Insurer is empty for insurer-agnostic aliases. Only approved rows are
// usable for resolution; unapproved rows exist in storage but never
// reach a snapshot.
type CoverageAlias struct {
	AliasNormalized string
	CanonicalCode   domain.CoverageCode
	Insurer         domain.Insurer // empty = insurer-agnostic
	Approved        bool
	Confidence      float64
}

// ResolveScope records which lookup stage produced a resolution.
type ResolveScope string

const (
	ScopeGlobal  ResolveScope = "global"
	ScopeInsurer ResolveScope = "insurer"
)

// ResolveResult is the successful outcome of canonical resolution.
type ResolveResult struct {
	CanonicalCode domain.CoverageCode `json:"canonical_code"`
	CanonicalName string              `json:"canonical_name"`
	MatchedAlias  string              `json:"matched_alias"`
	Scope         ResolveScope        `json:"scope"`
	Confidence    float64             `json:"confidence"`
}

// Normalize applies the only transformation resolution permits:
// case-folding and whitespace collapsing. No fuzzy matching, ever.
func Normalize(expression string) string {
	folded := strings.ToLower(strings.TrimSpace(expression))
	return strings.Join(strings.Fields(folded), " ")
}

// AliasSnapshot is an explicit, versioned, immutable view of the
// canonical table plus the approved aliases. It is built once and
// passed into every resolve call; resolution never touches mutable
// shared state.
type AliasSnapshot struct {
	version string
	names   map[domain.CoverageCode]string
	global  map[string][]CoverageAlias
	scoped  map[scopedKey][]CoverageAlias
}

type scopedKey struct {
	alias   string
	insurer domain.Insurer
}

// NewSnapshot builds a snapshot. Unapproved aliases are discarded here
// so they are invisible to every consumer. Alias lists are ordered by
// confidence descending with the input order breaking ties, which makes
// "first hit wins" deterministic.
func NewSnapshot(version string, coverages []CanonicalCoverage, aliases []CoverageAlias) *AliasSnapshot {
	s := &AliasSnapshot{
		version: version,
		names:   make(map[domain.CoverageCode]string, len(coverages)),
		global:  make(map[string][]CoverageAlias),
		scoped:  make(map[scopedKey][]CoverageAlias),
	}
	for _, c := range coverages {
		s.names[c.Code] = c.OfficialName
	}
	for _, a := range aliases {
		if !a.Approved {
			continue
		}
		if _, known := s.names[a.CanonicalCode]; !known {
			// Aliases pointing outside the canonical table are
			// administrative drift; they never resolve.
			continue
		}
		if a.Insurer == "" {
			s.global[a.AliasNormalized] = append(s.global[a.AliasNormalized], a)
		} else {
			key := scopedKey{alias: a.AliasNormalized, insurer: a.Insurer}
			s.scoped[key] = append(s.scoped[key], a)
		}
	}
	for _, list := range s.global {
		sortByConfidence(list)
	}
	for _, list := range s.scoped {
		sortByConfidence(list)
	}
	return s
}

func sortByConfidence(list []CoverageAlias) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Confidence > list[j].Confidence
	})
}

// Version identifies the administrative revision this snapshot was
// built from. Cache keys embed it so stale entries die with their
// snapshot.
func (s *AliasSnapshot) Version() string { return s.version }

// CanonicalName looks a code up in the canonical table.
func (s *AliasSnapshot) CanonicalName(code domain.CoverageCode) (string, bool) {
	name, ok := s.names[code]
	return name, ok
}

// LookupGlobal returns the insurer-agnostic aliases for a normalized
// expression, strongest first.
func (s *AliasSnapshot) LookupGlobal(normalized string) []CoverageAlias {
	return s.global[normalized]
}

// LookupInsurer returns the aliases scoped to one insurer, strongest
// first.
func (s *AliasSnapshot) LookupInsurer(normalized string, insurer domain.Insurer) []CoverageAlias {
	return s.scoped[scopedKey{alias: normalized, insurer: insurer}]
}
