package termdates

import "time"

// HistoricalEntry records the published start date of one term from the
// years before the term-dates API has data.
type HistoricalEntry struct {
	AcademicYear int
	Term         int
	Date         time.Time
}

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// historicalTable lists term start dates in chronological order. Term 1
// dates are the Monday of welcome week (week 0). Hand-maintained; only
// dates before the API cutoff are ever consulted.
var historicalTable = []HistoricalEntry{
	{1995, 1, d(1995, time.September, 25)},
	{1995, 2, d(1996, time.January, 8)},
	{1995, 3, d(1996, time.April, 22)},
	{1996, 1, d(1996, time.September, 23)},
	{1996, 2, d(1997, time.January, 13)},
	{1996, 3, d(1997, time.April, 21)},
	{1997, 1, d(1997, time.September, 22)},
	{1997, 2, d(1998, time.January, 12)},
	{1997, 3, d(1998, time.April, 27)},
	{1998, 1, d(1998, time.September, 28)},
	{1998, 2, d(1999, time.January, 11)},
	{1998, 3, d(1999, time.April, 26)},
	{1999, 1, d(1999, time.September, 27)},
	{1999, 2, d(2000, time.January, 10)},
	{1999, 3, d(2000, time.April, 24)},
	{2000, 1, d(2000, time.September, 25)},
	{2000, 2, d(2001, time.January, 8)},
	{2000, 3, d(2001, time.April, 23)},
	{2001, 1, d(2001, time.September, 24)},
	{2001, 2, d(2002, time.January, 14)},
	{2001, 3, d(2002, time.April, 22)},
	{2002, 1, d(2002, time.September, 23)},
	{2002, 2, d(2003, time.January, 13)},
	{2002, 3, d(2003, time.April, 21)},
	{2003, 1, d(2003, time.September, 22)},
	{2003, 2, d(2004, time.January, 12)},
	{2003, 3, d(2004, time.April, 26)},
	{2004, 1, d(2004, time.September, 27)},
	{2004, 2, d(2005, time.January, 10)},
	{2004, 3, d(2005, time.April, 25)},
	{2005, 1, d(2005, time.September, 26)},
	{2005, 2, d(2006, time.January, 9)},
	{2005, 3, d(2006, time.April, 24)},
}

// HistoricalTable returns the fallback term-start table in
// chronological order.
func HistoricalTable() []HistoricalEntry {
	out := make([]HistoricalEntry, len(historicalTable))
	copy(out, historicalTable)
	return out
}
