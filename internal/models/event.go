package models

import "time"

// Event is a single calendar entry. The owning week is derived from the
// date of StartTime, never stored as a foreign key, so moving an event
// in time can re-home it to a different week.
type Event struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description string  `db:"description" json:"description"`
	Draft       bool    `db:"draft" json:"draft"`
	Location    string  `db:"location" json:"location"`
	LocationURL *string `db:"location_url" json:"location_url,omitempty"`
	Icon        *string `db:"icon" json:"icon,omitempty"`
	Colour      *string `db:"colour" json:"colour,omitempty"`

	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   *time.Time `db:"end_time" json:"end_time,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Week and Tags are attached by the repository, not stored on the
	// events row.
	Week *Week    `db:"-" json:"date,omitempty"`
	Tags []string `db:"-" json:"tags"`
}

// EventFilter narrows down event listings.
type EventFilter struct {
	AcademicYear  int
	Term          *int
	Week          *int
	IncludeDrafts bool
}
