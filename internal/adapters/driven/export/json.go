package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
)

var _ driven.ArtifactWriter = (*JSONWriter)(nil)

// artifactNamePattern matches artifact filenames, capturing the
// workout ID.
var artifactNamePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_wid(\d+)\.json$`)

// workoutFile is the on-disk artifact shape.
type workoutFile struct {
	Title                string        `json:"title"`
	Date                 time.Time     `json:"date"`
	ExerciseType         string        `json:"exercise_type"`
	Weather              string        `json:"weather"`
	Comments             string        `json:"comments"`
	TotalDistanceMiles   float64       `json:"total_distance_miles"`
	TotalDurationSeconds int           `json:"total_duration_seconds"`
	Segments             []segmentFile `json:"segments"`
	ExportedFrom         string        `json:"exported_from"`
}

type segmentFile struct {
	DistanceMiles   float64 `json:"distance_miles"`
	DurationSeconds int     `json:"duration_seconds"`
	IntervalType    string  `json:"interval_type"`
	Shoes           string  `json:"shoes"`
	Pace            string  `json:"pace"`
}

// JSONWriter persists one JSON artifact per workout, named
// YYYY-MM-DD_wid<ID>.json after the workout's date and ID.
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates a writer rooted at dir. The directory is
// created on first write.
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

// Dir returns the artifact directory.
func (w *JSONWriter) Dir() string { return w.dir }

// Write serializes the workout and returns the artifact path. An
// existing artifact for the same workout is overwritten, so refreshed
// exports replace stale files in place. Disk failures are transient:
// pressure and permission problems clear up, so the retry policy gets
// a say before the workout is written off.
func (w *JSONWriter) Write(ctx context.Context, workout *domain.Workout) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w: %w", domain.ErrTransient, err)
	}

	data, err := json.MarshalIndent(toWorkoutFile(workout), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode workout %d: %w: %w", workout.WID, domain.ErrPermanent, err)
	}

	path := filepath.Join(w.dir, ArtifactName(workout))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write workout %d: %w: %w", workout.WID, domain.ErrTransient, err)
	}
	return path, nil
}

// ArtifactName returns the canonical artifact filename for a workout.
func ArtifactName(workout *domain.Workout) string {
	return fmt.Sprintf("%s_wid%d.json", workout.Date.Format("2006-01-02"), workout.WID)
}

func toWorkoutFile(workout *domain.Workout) workoutFile {
	file := workoutFile{
		Title:                workout.Title,
		Date:                 workout.Date,
		ExerciseType:         workout.ExerciseType,
		Weather:              workout.Weather,
		Comments:             workout.Comments,
		TotalDistanceMiles:   workout.TotalDistanceMiles(),
		TotalDurationSeconds: workout.TotalDurationSeconds(),
		Segments:             make([]segmentFile, 0, len(workout.Segments)),
		ExportedFrom:         "running-log",
	}
	for _, seg := range workout.Segments {
		file.Segments = append(file.Segments, segmentFile{
			DistanceMiles:   seg.DistanceMiles,
			DurationSeconds: seg.DurationSeconds,
			IntervalType:    seg.IntervalType,
			Shoes:           seg.Shoes,
			Pace:            FormatPace(seg.DurationSeconds, seg.DistanceMiles),
		})
	}
	return file
}

// ReadArtifacts loads every workout artifact under dir, sorted by date
// then workout ID. A missing directory is an empty export, not an
// error. Files that are not artifacts are ignored.
func ReadArtifacts(dir string) ([]*domain.Workout, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read artifact dir: %w", err)
	}

	var workouts []*domain.Workout
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := artifactNamePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		wid, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read artifact %s: %w", entry.Name(), err)
		}
		var file workoutFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse artifact %s: %w", entry.Name(), err)
		}
		workouts = append(workouts, fromWorkoutFile(wid, &file))
	}

	sort.Slice(workouts, func(i, j int) bool {
		if !workouts[i].Date.Equal(workouts[j].Date) {
			return workouts[i].Date.Before(workouts[j].Date)
		}
		return workouts[i].WID < workouts[j].WID
	})
	return workouts, nil
}

func fromWorkoutFile(wid int64, file *workoutFile) *domain.Workout {
	workout := &domain.Workout{
		WID:          wid,
		Title:        file.Title,
		Date:         file.Date,
		ExerciseType: file.ExerciseType,
		Weather:      file.Weather,
		Comments:     file.Comments,
		Segments:     make([]domain.Segment, 0, len(file.Segments)),
	}
	for _, seg := range file.Segments {
		workout.Segments = append(workout.Segments, domain.Segment{
			DistanceMiles:   seg.DistanceMiles,
			DurationSeconds: seg.DurationSeconds,
			IntervalType:    seg.IntervalType,
			Shoes:           seg.Shoes,
		})
	}
	return workout
}
