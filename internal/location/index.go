package location

import (
	"context"

	"github.com/bdgeo/location-api/pkg/search"
	"github.com/pkg/errors"
)

// Indexer receives documents for full-text search.
type Indexer interface {
	Add(docs []search.Document) error
}

// BuildIndex feeds every location of every level into idx and returns
// the number of documents added.
func BuildIndex(ctx context.Context, repo *Repository, idx Indexer) (int, error) {
	total := 0
	flush := func(docs []search.Document) error {
		if len(docs) == 0 {
			return nil
		}
		total += len(docs)
		return idx.Add(docs)
	}

	steps := []struct {
		level Level
		each  func(context.Context, func(Ref) error) error
	}{
		{LevelDivision, eachRef(repo.Divisions)},
		{LevelDistrict, eachRef(repo.Districts)},
		{LevelUpazila, eachRef(repo.Upazilas)},
		{LevelUnion, eachRef(repo.Unions)},
	}

	for _, step := range steps {
		docs := make([]search.Document, 0, batchSize)
		err := step.each(ctx, func(ref Ref) error {
			docs = append(docs, Document(ref))
			if len(docs) == batchSize {
				if err := flush(docs); err != nil {
					return err
				}
				docs = docs[:0]
			}
			return nil
		})
		if err == nil {
			err = flush(docs)
		}
		if err != nil {
			return total, errors.Wrapf(err, "indexing %ss", step.level)
		}
	}
	return total, nil
}

// Document converts a location reference to a search document.
func Document(ref Ref) search.Document {
	return search.Document{
		Key:    ref.Key(),
		Level:  string(ref.Level),
		ID:     ref.ID,
		Name:   ref.Name,
		BnName: ref.BnName,
	}
}

func eachRef[T Entity](t Table[T]) func(context.Context, func(Ref) error) error {
	return func(ctx context.Context, fn func(Ref) error) error {
		return t.Each(ctx, func(item T) error { return fn(item.Ref()) })
	}
}
