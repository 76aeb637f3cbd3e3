// Package runninglog talks to running-log.com. It implements the
// Discoverer and WorkoutFetcher ports by scraping the site's workout
// list and workout detail pages.
//
// The site has no API and no hard rate limit, but degrades to 429s
// under load, so every request goes through the shared admission gate
// and failures carry their retry classification.
package runninglog
