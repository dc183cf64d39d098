// Package query provides read-only filtered and aggregated views over the
// client collection. Nothing here mutates its input.
package query

import (
	"strings"

	"kukacrm/internal/logging"
	"kukacrm/internal/types"
)

// Filter constrains FilterClients. An empty field imposes no constraint.
type Filter struct {
	SearchTerm   string
	Neighborhood string
	ClientType   types.ClientType
	ClientSize   types.ClientSize
}

// IsEmpty reports whether f matches every client.
func (f Filter) IsEmpty() bool {
	return f.SearchTerm == "" && f.Neighborhood == "" && f.ClientType == "" && f.ClientSize == ""
}

// Matches reports whether c satisfies every non-empty constraint in f.
// SearchTerm matches the name case-insensitively, or the phone or id as a raw
// substring.
func (f Filter) Matches(c types.Client) bool {
	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		if !strings.Contains(strings.ToLower(c.Name), term) &&
			!strings.Contains(c.Phone, f.SearchTerm) &&
			!strings.Contains(c.ID, f.SearchTerm) {
			return false
		}
	}
	if f.Neighborhood != "" && c.Neighborhood != f.Neighborhood {
		return false
	}
	if f.ClientType != "" && c.ClientType != f.ClientType {
		return false
	}
	if f.ClientSize != "" && c.ClientSize != f.ClientSize {
		return false
	}
	return true
}

// FilterClients returns the clients matching f in input order.
func FilterClients(clients []types.Client, f Filter) []types.Client {
	out := make([]types.Client, 0, len(clients))
	for _, c := range clients {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	logging.QueryDebug("FilterClients %+v: %d of %d", f, len(out), len(clients))
	return out
}
