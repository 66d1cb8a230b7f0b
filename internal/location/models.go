// Package location holds the administrative hierarchy of Bangladesh:
// divisions contain districts, districts contain upazilas and upazilas
// contain unions.
package location

import (
	"errors"
	"strconv"
)

// Level names one tier of the hierarchy.
type Level string

const (
	LevelDivision Level = "division"
	LevelDistrict Level = "district"
	LevelUpazila  Level = "upazila"
	LevelUnion    Level = "union"
)

// Levels lists the hierarchy from the top down.
var Levels = []Level{LevelDivision, LevelDistrict, LevelUpazila, LevelUnion}

// ErrNotFound is returned when no row has the requested id.
var ErrNotFound = errors.New("not found")

// Ref identifies any location regardless of its level.
type Ref struct {
	Level  Level  `json:"level"`
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	BnName string `json:"bn_name"`
}

// Key is the unique identifier of the location across levels.
func (r Ref) Key() string {
	return string(r.Level) + ":" + strconv.FormatInt(r.ID, 10)
}

// Entity is implemented by every level's model.
type Entity interface {
	Ref() Ref
}

type Division struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement:false" validate:"required,min=1"`
	Name   string `json:"name" validate:"required,max=100"`
	BnName string `json:"bn_name" validate:"max=100"`
	URL    string `json:"url" gorm:"column:url" validate:"max=255"`
}

func (Division) TableName() string { return "divisions" }

func (d Division) Ref() Ref {
	return Ref{Level: LevelDivision, ID: d.ID, Name: d.Name, BnName: d.BnName}
}

type District struct {
	ID         int64   `json:"id" gorm:"primaryKey;autoIncrement:false" validate:"required,min=1"`
	DivisionID int64   `json:"division_id" validate:"required,min=1"`
	Name       string  `json:"name" validate:"required,max=100"`
	BnName     string  `json:"bn_name" validate:"max=100"`
	Lat        float64 `json:"lat" validate:"min=-90,max=90"`
	Lon        float64 `json:"lon" validate:"min=-180,max=180"`
	URL        string  `json:"url" gorm:"column:url" validate:"max=255"`
}

func (District) TableName() string { return "districts" }

func (d District) Ref() Ref {
	return Ref{Level: LevelDistrict, ID: d.ID, Name: d.Name, BnName: d.BnName}
}

type Upazila struct {
	ID         int64  `json:"id" gorm:"primaryKey;autoIncrement:false" validate:"required,min=1"`
	DistrictID int64  `json:"district_id" validate:"required,min=1"`
	Name       string `json:"name" validate:"required,max=100"`
	BnName     string `json:"bn_name" validate:"max=100"`
	URL        string `json:"url" gorm:"column:url" validate:"max=255"`
}

func (Upazila) TableName() string { return "upazilas" }

func (u Upazila) Ref() Ref {
	return Ref{Level: LevelUpazila, ID: u.ID, Name: u.Name, BnName: u.BnName}
}

type Union struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement:false" validate:"required,min=1"`
	UpazilaID int64  `json:"upazila_id" validate:"required,min=1"`
	Name      string `json:"name" validate:"required,max=100"`
	BnName    string `json:"bn_name" validate:"max=100"`
	URL       string `json:"url" gorm:"column:url" validate:"max=255"`
}

func (Union) TableName() string { return "unions" }

func (u Union) Ref() Ref {
	return Ref{Level: LevelUnion, ID: u.ID, Name: u.Name, BnName: u.BnName}
}
