package store

import (
	"context"
	"errors"

	"cgpa-backend/internal/model"
)

var (
	ErrNotFound  = errors.New("student record not found")
	ErrDuplicate = errors.New("student record already exists")
)

// Store persists student records keyed by roll key.
type Store interface {
	// FindByRollKey returns ErrNotFound when no record has the key.
	FindByRollKey(ctx context.Context, rollKey string) (*model.StudentRecord, error)
	// Create returns ErrDuplicate when the key is already taken.
	Create(ctx context.Context, rec *model.StudentRecord) error
	// Update overwrites the mutable fields of the record with rec.RollKey.
	Update(ctx context.Context, rec *model.StudentRecord) error
	List(ctx context.Context, q ListQuery) ([]model.StudentRecord, int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Sortable columns for List.
var sortColumns = map[string]string{
	"name":       "name",
	"roll_key":   "roll_key",
	"semester":   "semester",
	"cgpa":       "cgpa",
	"created_at": "created_at",
}

// ListQuery filters and pages a record listing. Limit 0 returns everything.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Name      string
	Semester  int
	CGPAMin   float64
	CGPAMax   float64
}

// Normalize fills defaults and drops unknown sort keys.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		q.SortBy = "name"
	}
	if q.SortOrder != "desc" {
		q.SortOrder = "asc"
	}
	return q
}

func (q ListQuery) offset() int {
	if q.Limit == 0 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
