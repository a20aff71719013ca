package models

// Tag labels events for filtering and search. Names are unique and
// always lowercase; tags with no remaining events are garbage-collected.
type Tag struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
