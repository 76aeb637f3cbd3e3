package domain

import "time"

// Workout represents a single workout scraped from running-log.com.
// It is the canonical representation after parsing, before export.
type Workout struct {
	// WID is the site-wide workout identifier. Stable across runs.
	WID int64

	// AthleteID identifies the athlete the workout belongs to.
	AthleteID int64

	// Title is the workout title, or empty if the athlete gave none.
	Title string

	// Date is the workout date. The site only records a time of day
	// (Morning/Afternoon/Night), mapped to a representative hour.
	Date time.Time

	// ExerciseType is the activity type (e.g. "Running", "Biking").
	ExerciseType string

	// Weather holds the weather note, if any.
	Weather string

	// Comments holds the athlete's comments, if any.
	Comments string

	// Segments are the rows of the workout table. A workout with no
	// parseable rows still carries one zero-distance segment so it
	// appears in exports.
	Segments []Segment
}

// Segment is one row of a workout: a distance covered in a duration.
type Segment struct {
	// DistanceMiles is the distance in miles. The site may record
	// metres or kilometres; parsing converts to miles.
	DistanceMiles float64

	// DurationSeconds is the elapsed time in seconds.
	DurationSeconds int

	// IntervalType is the interval label, if any (e.g. "Warmup").
	IntervalType string

	// Shoes is the shoe name recorded for the row, if any.
	Shoes string
}

// TotalDistanceMiles sums the distance over all segments.
func (w *Workout) TotalDistanceMiles() float64 {
	var total float64
	for _, s := range w.Segments {
		total += s.DistanceMiles
	}
	return total
}

// TotalDurationSeconds sums the duration over all segments.
func (w *Workout) TotalDurationSeconds() int {
	var total int
	for _, s := range w.Segments {
		total += s.DurationSeconds
	}
	return total
}

// Empty reports whether every segment is zero distance and zero time.
func (w *Workout) Empty() bool {
	for _, s := range w.Segments {
		if s.DistanceMiles != 0 || s.DurationSeconds != 0 {
			return false
		}
	}
	return true
}
