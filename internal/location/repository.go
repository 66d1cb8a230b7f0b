package location

import (
	"context"
	errs "errors"
	"strings"

	"github.com/bdgeo/location-api/pkg/store"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const batchSize = 500

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ListOptions narrows a listing. Zero values disable a filter.
type ListOptions struct {
	// ParentID restricts rows to children of one parent.
	ParentID int64
	// Search is a case-insensitive substring of name or bn_name.
	Search string
}

// Table gives read access to one level of the hierarchy.
type Table[T Entity] struct {
	db           *gorm.DB
	parentColumn string
}

// Repository exposes all four levels.
type Repository struct {
	Divisions Table[Division]
	Districts Table[District]
	Upazilas  Table[Upazila]
	Unions    Table[Union]
}

// NewRepository creates a repository over db.
func NewRepository(db *store.DB) *Repository {
	g := db.Gorm()
	return &Repository{
		Divisions: Table[Division]{db: g},
		Districts: Table[District]{db: g, parentColumn: "division_id"},
		Upazilas:  Table[Upazila]{db: g, parentColumn: "district_id"},
		Unions:    Table[Union]{db: g, parentColumn: "upazila_id"},
	}
}

// Count returns the number of rows matching opts.
func (t Table[T]) Count(ctx context.Context, opts ListOptions) (int64, error) {
	var total int64
	err := t.db.WithContext(ctx).Model(new(T)).Scopes(t.filter(opts)).Count(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "counting rows")
	}
	return total, nil
}

// List returns up to limit rows matching opts, ordered by id.
func (t Table[T]) List(ctx context.Context, opts ListOptions, offset, limit int) ([]T, error) {
	items := make([]T, 0, limit)
	err := t.db.WithContext(ctx).
		Scopes(t.filter(opts)).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing rows")
	}
	return items, nil
}

// Get returns the row with the given id or ErrNotFound.
func (t Table[T]) Get(ctx context.Context, id int64) (T, error) {
	var item T
	err := t.db.WithContext(ctx).Where("id = ?", id).Take(&item).Error
	if errs.Is(err, gorm.ErrRecordNotFound) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, errors.Wrapf(err, "fetching id %d", id)
	}
	return item, nil
}

// Each calls fn for every row in id order, loading them in batches.
func (t Table[T]) Each(ctx context.Context, fn func(T) error) error {
	var batch []T
	result := t.db.WithContext(ctx).Order("id").FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		for _, item := range batch {
			if err := fn(item); err != nil {
				return err
			}
		}
		return nil
	})
	return result.Error
}

func (t Table[T]) filter(opts ListOptions) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if opts.ParentID != 0 && t.parentColumn != "" {
			tx = tx.Where(t.parentColumn+" = ?", opts.ParentID)
		}
		if s := strings.TrimSpace(opts.Search); s != "" {
			s = likeEscaper.Replace(s)
			tx = tx.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR bn_name LIKE ? ESCAPE '\')`,
				"%"+strings.ToLower(s)+"%", "%"+s+"%")
		}
		return tx
	}
}
