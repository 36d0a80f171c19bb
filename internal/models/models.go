package models

import (
	"time"
)

// Model is implemented by every persisted entity.
//
// Sequence is a per-table counter assigned on insert; it gives runs their "#N" label.
type Model interface {
	ID() string
	Sequence() int
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the CRUD surface provided for each model.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

// TrackStore adds path lookups to a track repository. A file path identifies at most one track.
type TrackStore interface {
	Repository[*Track]
	GetByPath(path string) (*Track, error)
	Save(track *Track) error
	CountByStatus() (map[TrackStatus]int, error)
}

var (
	_ Model = (*Track)(nil)
	_ Model = (*TagRun)(nil)
)
