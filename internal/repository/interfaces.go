package repository

import (
	"time"

	"camshare/internal/model"
)

// ActivityRepository persists the access-control audit trail.
type ActivityRepository interface {
	// Create operations
	Insert(a *model.Activity) error
	InsertBatch(activities []model.Activity) error

	// Read operations
	List(filter *model.ActivityFilter) ([]model.Activity, error)
	Count(filter *model.ActivityFilter) (int, error)

	// Delete operations
	DeleteBefore(cutoff time.Time) (int64, error)
}
