package dto

// Wire formats for event times and durations. Times carry no zone; they
// are interpreted in the service's configured civil timezone.
const (
	TimeLayout = "2006-01-02T15:04"
	DateLayout = "2006-01-02"
)

// CreateEventRequest is the create payload. Either end_time or duration
// may be supplied; when both are present they must agree.
type CreateEventRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Draft       bool     `json:"draft"`
	Location    string   `json:"location" validate:"required"`
	LocationURL *string  `json:"location_url"`
	Icon        *string  `json:"icon"`
	Colour      *string  `json:"colour"`
	StartTime   string   `json:"start_time" validate:"required"`
	EndTime     string   `json:"end_time"`
	Duration    string   `json:"duration"`
	Tags        []string `json:"tags"`
}

// BatchCreateEventRequest creates one event per start time, sharing all
// other fields. Any failure rolls back every event in the batch.
type BatchCreateEventRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Draft       bool     `json:"draft"`
	Location    string   `json:"location" validate:"required"`
	LocationURL *string  `json:"location_url"`
	Icon        *string  `json:"icon"`
	Colour      *string  `json:"colour"`
	StartTimes  []string `json:"start_times" validate:"required,min=1"`
	EndTimes    []string `json:"end_times"`
	Duration    string   `json:"duration"`
	Tags        []string `json:"tags"`
}

// UpdateEventRequest is the partial-update payload. Absent fields keep
// their stored value; nullable fields accept an explicit null to clear.
type UpdateEventRequest struct {
	Name        Optional[string]   `json:"name"`
	Description Optional[string]   `json:"description"`
	Draft       Optional[bool]     `json:"draft"`
	Location    Optional[string]   `json:"location"`
	LocationURL Optional[string]   `json:"location_url"`
	Icon        Optional[string]   `json:"icon"`
	Colour      Optional[string]   `json:"colour"`
	StartTime   Optional[string]   `json:"start_time"`
	EndTime     Optional[string]   `json:"end_time"`
	Duration    Optional[string]   `json:"duration"`
	Tags        Optional[[]string] `json:"tags"`
}
