package utils

import (
	"sort"
	"strings"
)

// courtAliases maps every accepted spoken reference to a canonical court ID.
// Ordinals and the Spanish names come from the club's signage; the English
// names are accepted as synonyms.
var courtAliases = map[string]string{
	"1":       "court-1",
	"central": "court-1",

	"2":     "court-2",
	"norte": "court-2",
	"north": "court-2",

	"3":     "court-3",
	"sur":   "court-3",
	"south": "court-3",

	"4":    "court-4",
	"este": "court-4",
	"east": "court-4",
}

// NormalizeCourtToken lower-cases and trims a court reference token
func NormalizeCourtToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// ResolveCourtAlias returns the canonical court ID for a token such as "2",
// "Central" or "sur". ok is false for anything not in the table.
func ResolveCourtAlias(token string) (courtID string, ok bool) {
	courtID, ok = courtAliases[NormalizeCourtToken(token)]
	return courtID, ok
}

// CourtAliases returns all accepted aliases, sorted
func CourtAliases() []string {
	out := make([]string, 0, len(courtAliases))
	for alias := range courtAliases {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// CourtAliasPattern returns a regexp alternation of the non-numeric aliases,
// longest first.
func CourtAliasPattern() string {
	var names []string
	for alias := range courtAliases {
		if alias[0] >= '0' && alias[0] <= '9' {
			continue
		}
		names = append(names, alias)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return strings.Join(names, "|")
}

// AliasesFor lists the aliases that resolve to courtID, sorted
func AliasesFor(courtID string) []string {
	var out []string
	for alias, id := range courtAliases {
		if id == courtID {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}
