package search

// Document is a single searchable location.
type Document struct {
	// Key is unique across levels, e.g. "district:47".
	Key    string `json:"-"`
	Level  string `json:"level"`
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	BnName string `json:"bn_name"`
}

// SearchOptions contains parameters for search operations
type SearchOptions struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	// Level restricts results to one level of the hierarchy.
	Level string `json:"level,omitempty"`
	Fuzzy bool   `json:"fuzzy"`
}

// SearchResult represents a single search result
type SearchResult struct {
	Level  string  `json:"level"`
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	BnName string  `json:"bn_name"`
	Score  float64 `json:"score"`
}

// SearchResults contains search results with metadata
type SearchResults struct {
	Results    []SearchResult `json:"results"`
	Count      int            `json:"count"`
	Total      uint64         `json:"total"`
	Query      string         `json:"query"`
	SearchTime string         `json:"searchTime"`
}
