package runninglog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
	"github.com/runninglog/runlog-cli/internal/logger"
	"github.com/runninglog/runlog-cli/internal/ratelimit"
)

// Ensure Discoverer implements the interface.
var _ driven.Discoverer = (*Discoverer)(nil)

// widPattern pulls the workout ID out of a detail page link.
var widPattern = regexp.MustCompile(`/workouts/(\d+)(?:[?#&]|$)`)

// pagePattern pulls the page number out of a pagination link.
var pagePattern = regexp.MustCompile(`page=(\d+)`)

// Discoverer enumerates workout IDs by walking the paginated workout
// list. Pages already recorded in the state store are skipped, so an
// interrupted discovery resumes where it left off. Page 1 is always
// rescraped: new workouts appear there.
type Discoverer struct {
	client  *Client
	store   driven.StateStore
	limiter *ratelimit.Limiter

	// maxPagesPerRun caps list pages fetched in one run, so a first
	// run against a huge log stays interruptible. Zero means no cap.
	maxPagesPerRun int
}

// NewDiscoverer creates a discoverer sharing the run's admission gate.
func NewDiscoverer(client *Client, store driven.StateStore, limiter *ratelimit.Limiter, maxPagesPerRun int) *Discoverer {
	return &Discoverer{
		client:         client,
		store:          store,
		limiter:        limiter,
		maxPagesPerRun: maxPagesPerRun,
	}
}

// ListWorkoutIDs returns every workout ID known for the athlete: the
// union of previously discovered IDs and those found on list pages not
// yet processed. Page 1 being unreachable fails the whole discovery.
func (d *Discoverer) ListWorkoutIDs(ctx context.Context, athleteID int64) ([]int64, error) {
	firstURL := d.client.listURL(athleteID, 1)
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := d.client.get(ctx, firstURL)
	if err != nil {
		return nil, fmt.Errorf("%w: first workout list page: %w", domain.ErrDiscovery, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse first workout list page: %w", domain.ErrDiscovery, err)
	}

	maxPage := maxPageNumber(doc)
	logger.Info("Athlete %d has %d workout list page(s)", athleteID, maxPage)

	if err := d.recordPage(ctx, doc, 1); err != nil {
		return nil, err
	}

	state, err := d.store.State(ctx)
	if err != nil {
		return nil, err
	}

	fetched := 0
	for page := 2; page <= maxPage; page++ {
		if _, done := state.ProcessedPages[page]; done {
			continue
		}
		if d.maxPagesPerRun > 0 && fetched >= d.maxPagesPerRun {
			logger.Warn("Discovery paused after %d pages this run; rerun to continue", fetched)
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		pageBody, err := d.client.get(ctx, d.client.listURL(athleteID, page))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Info("Page %d not found, assuming end of workout list", page)
				break
			}
			// A mid-walk failure is not total unreachability; stop
			// here and export what is known. The missing pages stay
			// unprocessed and the next run retries them.
			logger.Warn("Stopping discovery at page %d: %v", page, err)
			break
		}
		pageDoc, err := goquery.NewDocumentFromReader(strings.NewReader(pageBody))
		if err != nil {
			logger.Warn("Stopping discovery at page %d: %v", page, err)
			break
		}
		if err := d.recordPage(ctx, pageDoc, page); err != nil {
			return nil, err
		}
		fetched++
	}

	state, err = d.store.State(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(state.DiscoveredIDs))
	for wid := range state.DiscoveredIDs {
		ids = append(ids, wid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids, nil
}

// recordPage extracts the page's workout IDs into the state store and
// marks the page processed.
func (d *Discoverer) recordPage(ctx context.Context, doc *goquery.Document, page int) error {
	wids := extractWorkoutIDs(doc)
	logger.Debug("Page %d: %d workout link(s)", page, len(wids))
	if len(wids) > 0 {
		if err := d.store.AddDiscovered(ctx, wids); err != nil {
			return err
		}
	}
	return d.store.MarkPageProcessed(ctx, page)
}

// extractWorkoutIDs collects workout IDs linked from the content
// table, ignoring pagination controls and the new/edit actions.
func extractWorkoutIDs(doc *goquery.Document) []int64 {
	seen := make(map[int64]struct{})
	doc.Find("table.content a[href*='/workouts/']").Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered("div.pagination").Length() > 0 {
			return
		}
		href, ok := sel.Attr("href")
		if !ok || strings.Contains(href, "/new") || strings.Contains(href, "/edit") {
			return
		}
		m := widPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		wid, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return
		}
		seen[wid] = struct{}{}
	})

	wids := make([]int64, 0, len(seen))
	for wid := range seen {
		wids = append(wids, wid)
	}
	sort.Slice(wids, func(i, j int) bool { return wids[i] < wids[j] })
	return wids
}

// maxPageNumber reads the highest page number off the pagination
// controls. A page with no controls is a single-page log.
func maxPageNumber(doc *goquery.Document) int {
	maxPage := 1
	doc.Find("div.pagination a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		m := pagePattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxPage {
			maxPage = n
		}
	})
	return maxPage
}
