package vocab

// Stats holds per-table row counts for health checks and build reporting.
type Stats struct {
	Concepts      int64 `json:"concepts"`
	Synonyms      int64 `json:"synonyms"`
	SearchEntries int64 `json:"search_entries"`
	MapsToEdges   int64 `json:"maps_to_edges"`
}
