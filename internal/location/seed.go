package location

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bdgeo/location-api/pkg/store"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed data/locations.json
var defaultDataset []byte

var validate = validator.New()

// Dataset is a full or partial snapshot of the hierarchy.
type Dataset struct {
	Divisions []Division `json:"divisions"`
	Districts []District `json:"districts"`
	Upazilas  []Upazila  `json:"upazilas"`
	Unions    []Union    `json:"unions"`
}

// SeedResult counts the rows written per level.
type SeedResult struct {
	Divisions int `json:"divisions"`
	Districts int `json:"districts"`
	Upazilas  int `json:"upazilas"`
	Unions    int `json:"unions"`
}

// LoadDataset decodes a JSON dataset and validates it.
func LoadDataset(r io.Reader) (Dataset, error) {
	var d Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return Dataset{}, errors.Wrap(err, "decoding dataset")
	}
	if err := d.Validate(); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

// DefaultDataset returns the dataset bundled with the binary.
func DefaultDataset() (Dataset, error) {
	return LoadDataset(bytes.NewReader(defaultDataset))
}

// Validate checks every row and reports all problems at once.
func (d Dataset) Validate() error {
	var result *multierror.Error
	check := func(level Level, i int, v interface{}) {
		if err := validate.Struct(v); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s #%d: %w", level, i, err))
		}
	}
	for i, v := range d.Divisions {
		check(LevelDivision, i, v)
	}
	for i, v := range d.Districts {
		check(LevelDistrict, i, v)
	}
	for i, v := range d.Upazilas {
		check(LevelUpazila, i, v)
	}
	for i, v := range d.Unions {
		check(LevelUnion, i, v)
	}

	result = multierror.Append(result, duplicates(LevelDivision, d.Divisions)...)
	result = multierror.Append(result, duplicates(LevelDistrict, d.Districts)...)
	result = multierror.Append(result, duplicates(LevelUpazila, d.Upazilas)...)
	result = multierror.Append(result, duplicates(LevelUnion, d.Unions)...)
	return result.ErrorOrNil()
}

// Seed upserts the dataset, parents before children, in one transaction.
func Seed(ctx context.Context, db *store.DB, d Dataset) (SeedResult, error) {
	if err := d.Validate(); err != nil {
		return SeedResult{}, err
	}

	res := SeedResult{
		Divisions: len(d.Divisions),
		Districts: len(d.Districts),
		Upazilas:  len(d.Upazilas),
		Unions:    len(d.Unions),
	}
	err := db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := upsert(tx, d.Divisions); err != nil {
			return errors.Wrap(err, "seeding divisions")
		}
		if err := upsert(tx, d.Districts); err != nil {
			return errors.Wrap(err, "seeding districts")
		}
		if err := upsert(tx, d.Upazilas); err != nil {
			return errors.Wrap(err, "seeding upazilas")
		}
		if err := upsert(tx, d.Unions); err != nil {
			return errors.Wrap(err, "seeding unions")
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}

func upsert[T Entity](tx *gorm.DB, items []T) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&items, batchSize).Error
}

func duplicates[T Entity](level Level, items []T) []error {
	seen := make(map[int64]struct{}, len(items))
	var out []error
	for _, item := range items {
		id := item.Ref().ID
		if _, ok := seen[id]; ok {
			out = append(out, fmt.Errorf("%s: duplicate id %d", level, id))
			continue
		}
		seen[id] = struct{}{}
	}
	return out
}
