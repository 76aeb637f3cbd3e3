package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkout_TotalDistanceMiles(t *testing.T) {
	w := Workout{
		WID:  12345,
		Date: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		Segments: []Segment{
			{DistanceMiles: 3.1, DurationSeconds: 1500},
			{DistanceMiles: 0.9, DurationSeconds: 420},
		},
	}

	assert.InDelta(t, 4.0, w.TotalDistanceMiles(), 0.0001)
	assert.Equal(t, 1920, w.TotalDurationSeconds())
}

func TestWorkout_Empty(t *testing.T) {
	empty := Workout{Segments: []Segment{{DistanceMiles: 0, DurationSeconds: 0}}}
	assert.True(t, empty.Empty())

	nonEmpty := Workout{Segments: []Segment{{DistanceMiles: 0, DurationSeconds: 60}}}
	assert.False(t, nonEmpty.Empty())
}

func TestWorkout_NoSegments(t *testing.T) {
	w := Workout{WID: 1}
	assert.Zero(t, w.TotalDistanceMiles())
	assert.Zero(t, w.TotalDurationSeconds())
	assert.True(t, w.Empty())
}
