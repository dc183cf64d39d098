package query

import (
	"sort"

	"kukacrm/internal/types"
)

// TopNeighborhoods caps the neighborhood aggregation.
const TopNeighborhoods = 8

// Dimension is a client field that Aggregate can group by.
type Dimension string

const (
	DimensionStatus       Dimension = "status"
	DimensionSize         Dimension = "size"
	DimensionType         Dimension = "type"
	DimensionNeighborhood Dimension = "neighborhood"
)

// Dimensions returns every Dimension in declaration order.
func Dimensions() []Dimension {
	return []Dimension{DimensionStatus, DimensionSize, DimensionType, DimensionNeighborhood}
}

// ParseDimension converts a flag value into a Dimension.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimensionStatus, DimensionSize, DimensionType, DimensionNeighborhood:
		return d, nil
	}
	return "", &types.ValidationError{Field: "dimension", Reason: "dimensão desconhecida: " + s}
}

// Bucket is one group of an aggregation.
type Bucket struct {
	Key   string
	Count int
}

// Aggregate counts clients per value of d.
//
// Enum dimensions list every declared value in declaration order, including
// zero counts. Values outside the enum are not counted. Neighborhood lists
// observed values only, sorted by count descending (ties keep first-seen
// order) and truncated to TopNeighborhoods.
func Aggregate(clients []types.Client, d Dimension) ([]Bucket, error) {
	switch d {
	case DimensionStatus:
		keys := make([]string, 0, 3)
		for _, s := range types.ClientStatuses() {
			keys = append(keys, string(s))
		}
		return count(clients, keys, false, func(c types.Client) string { return string(c.Status) }), nil
	case DimensionSize:
		keys := make([]string, 0, 3)
		for _, s := range types.ClientSizes() {
			keys = append(keys, string(s))
		}
		return count(clients, keys, false, func(c types.Client) string { return string(c.ClientSize) }), nil
	case DimensionType:
		keys := make([]string, 0, 5)
		for _, t := range types.ClientTypes() {
			keys = append(keys, string(t))
		}
		return count(clients, keys, false, func(c types.Client) string { return string(c.ClientType) }), nil
	case DimensionNeighborhood:
		buckets := observed(clients, func(c types.Client) string { return c.Neighborhood })
		sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Count > buckets[j].Count })
		if len(buckets) > TopNeighborhoods {
			buckets = buckets[:TopNeighborhoods]
		}
		return buckets, nil
	}
	return nil, &types.ValidationError{Field: "dimension", Reason: "dimensão desconhecida: " + string(d)}
}

// count groups clients by field. keys seeds the buckets in order; observed
// values outside keys get a new bucket only when extend is set.
func count(clients []types.Client, keys []string, extend bool, field func(types.Client) string) []Bucket {
	buckets := make([]Bucket, len(keys))
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		buckets[i] = Bucket{Key: k}
		index[k] = i
	}
	for _, c := range clients {
		v := field(c)
		i, ok := index[v]
		if !ok {
			if !extend {
				continue
			}
			i = len(buckets)
			index[v] = i
			buckets = append(buckets, Bucket{Key: v})
		}
		buckets[i].Count++
	}
	return buckets
}

func observed(clients []types.Client, field func(types.Client) string) []Bucket {
	return count(clients, nil, true, field)
}

// Summary holds the dashboard counters.
type Summary struct {
	Total     int
	Active    int
	Potential int
	Inactive  int
}

// Summarize counts clients per status.
func Summarize(clients []types.Client) Summary {
	s := Summary{Total: len(clients)}
	for _, c := range clients {
		switch c.Status {
		case types.ClientStatusAtivo:
			s.Active++
		case types.ClientStatusPotencial:
			s.Potential++
		case types.ClientStatusInativo:
			s.Inactive++
		}
	}
	return s
}
