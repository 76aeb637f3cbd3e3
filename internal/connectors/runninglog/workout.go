package runninglog

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
	"github.com/runninglog/runlog-cli/internal/logger"
)

var _ driven.WorkoutFetcher = (*Fetcher)(nil)

const (
	metersPerMile = 1609.34
	kmPerMile     = 1.60934
)

// datePattern matches the site's workout header date, for example
// "March 4, 2019 (Morning)".
var datePattern = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{1,2}),\s*(\d{4})\s*\((Morning|Afternoon|Night)\)`)

// timeOfDayHours places a workout within its day. The site only
// records a coarse slot, so each slot maps to a representative hour.
var timeOfDayHours = map[string]int{
	"Morning":   8,
	"Afternoon": 14,
	"Night":     20,
}

var (
	siteZoneOnce sync.Once
	siteZone     *time.Location
)

// siteLocation returns the timezone workout dates are recorded in.
// The site is US-based and presents local wall-clock times.
func siteLocation() *time.Location {
	siteZoneOnce.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			logger.Warn("Timezone database unavailable, recording dates in UTC: %v", err)
			loc = time.UTC
		}
		siteZone = loc
	})
	return siteZone
}

// Fetcher retrieves and parses individual workout detail pages.
type Fetcher struct {
	client *Client
}

// NewFetcher creates a workout fetcher over the shared HTTP client.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchWorkout downloads the detail page for one workout and parses it
// into the domain model. Pages that download but do not parse are
// permanent failures; retrying will not change the HTML.
func (f *Fetcher) FetchWorkout(ctx context.Context, athleteID, wid int64) (*domain.Workout, error) {
	body, err := f.client.get(ctx, f.client.workoutURL(athleteID, wid))
	if err != nil {
		return nil, err
	}
	workout, err := parseWorkoutPage(body, athleteID, wid)
	if err != nil {
		return nil, fmt.Errorf("%w: workout %d: %w", domain.ErrPermanent, wid, err)
	}
	return workout, nil
}

// parseWorkoutPage extracts a Workout from a detail page's HTML.
func parseWorkoutPage(body string, athleteID, wid int64) (*domain.Workout, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	date, err := parseWorkoutDate(doc)
	if err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		WID:       wid,
		AthleteID: athleteID,
		Title:     parseTitle(doc),
		Date:      date,
	}
	workout.ExerciseType = paragraphAfterPrefix(doc, "Exercise Type:")
	workout.Weather = paragraphAfterPrefix(doc, "Weather:")
	workout.Comments = paragraphAfterPrefix(doc, "Comments:")

	segments, err := parseSegments(doc)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		// A rest day or unstructured entry still exports as a
		// workout with a single empty segment.
		segments = []domain.Segment{{}}
	}
	workout.Segments = segments
	return workout, nil
}

// parseTitle prefers the edit form's title field, which carries the
// exact stored value, over the display header.
func parseTitle(doc *goquery.Document) string {
	if v, ok := doc.Find("input#workout_title").Attr("value"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(doc.Find("h3").First().Text())
}

// parseWorkoutDate reads the date line following the page header.
func parseWorkoutDate(doc *goquery.Document) (time.Time, error) {
	var raw string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if datePattern.MatchString(text) {
			raw = text
			return false
		}
		return true
	})
	if raw == "" {
		return time.Time{}, fmt.Errorf("no date line found")
	}

	m := datePattern.FindStringSubmatch(raw)
	month, err := monthByName(m[1])
	if err != nil {
		return time.Time{}, err
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour := timeOfDayHours[m[4]]
	return time.Date(year, month, day, hour, 0, 0, 0, siteLocation()), nil
}

func monthByName(name string) (time.Month, error) {
	t, err := time.Parse("January", name)
	if err != nil {
		return 0, fmt.Errorf("unknown month %q", name)
	}
	return t.Month(), nil
}

// paragraphAfterPrefix returns the text of the first <p> starting with
// the given label, with the label stripped. Missing labels are empty
// strings, not errors; most workouts omit weather and comments.
func paragraphAfterPrefix(doc *goquery.Document, prefix string) string {
	var value string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if strings.HasPrefix(text, prefix) {
			value = strings.TrimSpace(strings.TrimPrefix(text, prefix))
			return false
		}
		return true
	})
	return value
}

// parseSegments reads the interval rows from the workout's content
// table. Header and footer rows are skipped, as are all-zero filler
// rows the site pads short tables with.
func parseSegments(doc *goquery.Document) ([]domain.Segment, error) {
	var segments []domain.Segment
	var parseErr error

	doc.Find("table.content tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if row.Find("th").Length() > 0 || row.ParentsFiltered("tfoot").Length() > 0 {
			return true
		}
		cols := row.Find("td")
		if cols.Length() < 2 {
			return true
		}

		distText := cellText(cols.Eq(0))
		durText := cellText(cols.Eq(1))
		if distText == "" && durText == "" {
			return true
		}

		distance, err := parseDistanceMiles(distText)
		if err != nil {
			parseErr = err
			return false
		}
		duration, err := parseDurationSeconds(durText)
		if err != nil {
			parseErr = err
			return false
		}
		if distance == 0 && duration == 0 {
			return true
		}

		seg := domain.Segment{
			DistanceMiles:   distance,
			DurationSeconds: duration,
		}
		if cols.Length() > 3 {
			seg.IntervalType = cellText(cols.Eq(3))
		}
		if cols.Length() > 4 {
			seg.Shoes = cellText(cols.Eq(4))
		}
		segments = append(segments, seg)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return segments, nil
}

// cellText normalizes a table cell, collapsing the non-breaking
// spaces the site uses as padding.
func cellText(sel *goquery.Selection) string {
	text := strings.ReplaceAll(sel.Text(), " ", " ")
	return strings.TrimSpace(text)
}

// parseDistanceMiles converts a "12.5 miles" style cell to miles.
// Kilometers are matched before meters: "kilometer" contains the
// substring "meter", so the order matters.
func parseDistanceMiles(text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	fields := strings.Fields(text)
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("bad distance %q", text)
	}
	unit := ""
	if len(fields) > 1 {
		unit = strings.ToLower(fields[1])
	}
	switch {
	case strings.Contains(unit, "kilometer"), unit == "km":
		return value / kmPerMile, nil
	case strings.Contains(unit, "meter"), unit == "m":
		return value / metersPerMile, nil
	default:
		return value, nil
	}
}

// parseDurationSeconds converts "HH:MM:SS" or "MM:SS" to seconds.
func parseDurationSeconds(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	parts := strings.Split(text, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("bad duration %q", text)
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("bad duration %q", text)
		}
		total = total*60 + n
	}
	return total, nil
}
