package bleve

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bdgeo/location-api/pkg/logger"
	"github.com/bdgeo/location-api/pkg/search"
	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

var storedFields = []string{"name", "bn_name", "level"}

// indexedDoc is what bleve stores for each location.
type indexedDoc struct {
	Name   string `json:"name"`
	BnName string `json:"bn_name"`
	Level  string `json:"level"`
}

// Index is an in-memory full-text index of locations.
type Index struct {
	index bleve.Index
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	// Names are analyzed text, the level is matched exactly
	mapping := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false

	textFieldMapping := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("bn_name", textFieldMapping)
	docMapping.AddFieldMappingsAt("level", bleve.NewKeywordFieldMapping())

	mapping.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &Index{index: index}, nil
}

// Add indexes docs in a single batch.
func (i *Index) Add(docs []search.Document) error {
	batch := i.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.Key, indexedDoc{Name: doc.Name, BnName: doc.BnName, Level: doc.Level}); err != nil {
			return fmt.Errorf("failed to index %s: %w", doc.Key, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply batch: %w", err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}

// Search performs a search on the index
func (i *Index) Search(ctx context.Context, opts search.SearchOptions) (search.SearchResults, error) {
	startTime := time.Now()

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	searchRequest := bleve.NewSearchRequestOptions(buildQuery(opts), limit, 0, false)
	searchRequest.Fields = storedFields

	searchResults, err := i.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return search.SearchResults{}, fmt.Errorf("search failed: %w", err)
	}

	results := make([]search.SearchResult, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		level, id, ok := parseDocID(hit.ID)
		if !ok {
			logger.Log(logger.LevelWarn, map[string]string{"docID": hit.ID}, nil, "skipping malformed search hit")
			continue
		}
		name, _ := hit.Fields["name"].(string)
		bnName, _ := hit.Fields["bn_name"].(string)
		results = append(results, search.SearchResult{
			Level:  level,
			ID:     id,
			Name:   name,
			BnName: bnName,
			Score:  hit.Score,
		})
	}

	return search.SearchResults{
		Results:    results,
		Count:      len(results),
		Total:      searchResults.Total,
		Query:      opts.Query,
		SearchTime: time.Since(startTime).String(),
	}, nil
}

// buildQuery requires every term to match a name, either as a prefix or
// as a (optionally fuzzy) word, in English or Bangla.
func buildQuery(opts search.SearchOptions) bleveQuery.Query {
	queries := []bleveQuery.Query{}

	for _, term := range strings.Fields(strings.ToLower(opts.Query)) {
		alternatives := make([]bleveQuery.Query, 0, 4)
		for _, field := range []string{"name", "bn_name"} {
			matchQuery := bleveQuery.NewMatchQuery(term)
			matchQuery.SetField(field)
			if opts.Fuzzy {
				matchQuery.SetFuzziness(1)
			}
			prefixQuery := bleveQuery.NewPrefixQuery(term)
			prefixQuery.SetField(field)
			alternatives = append(alternatives, matchQuery, prefixQuery)
		}
		queries = append(queries, bleveQuery.NewDisjunctionQuery(alternatives))
	}

	if len(queries) == 0 {
		return bleveQuery.NewMatchNoneQuery()
	}

	if opts.Level != "" {
		termQuery := bleveQuery.NewTermQuery(opts.Level)
		termQuery.SetField("level")
		queries = append(queries, termQuery)
	}

	if len(queries) == 1 {
		return queries[0]
	}
	return bleveQuery.NewConjunctionQuery(queries)
}

// parseDocID splits a "{level}:{id}" document ID.
func parseDocID(docID string) (string, int64, bool) {
	level, rawID, ok := strings.Cut(docID, ":")
	if !ok {
		return "", 0, false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return level, id, true
}
