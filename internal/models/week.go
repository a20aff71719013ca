package models

import "time"

// Week is one 7-day row of the academic calendar. Weeks are created
// lazily the first time an event lands on an uncovered date and removed
// again once no event references them.
//
// Week numbering follows the institution's own convention: "Week 0" is
// the welcome/induction week and pre-term weeks can be negative. The
// numbering is preserved as published, never normalised to 1-indexing.
type Week struct {
	ID string `db:"id" json:"-"`

	// AcademicYear is the year the autumn term starts in, e.g. 2022
	// for 2022-2023.
	AcademicYear int `db:"academic_year" json:"year"`
	Term         int `db:"term" json:"term"`
	Week         int `db:"week" json:"week"`

	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// NewWeek builds an unpersisted week; the end date is always six days
// after the start.
func NewWeek(academicYear, term, week int, startDate time.Time) *Week {
	return &Week{
		AcademicYear: academicYear,
		Term:         term,
		Week:         week,
		StartDate:    startDate,
		EndDate:      startDate.AddDate(0, 0, 6),
	}
}

// Covers reports whether the given date falls inside the week,
// boundaries included.
func (w *Week) Covers(date time.Time) bool {
	d := civilDate(date)
	return !d.Before(civilDate(w.StartDate)) && !d.After(civilDate(w.EndDate))
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
