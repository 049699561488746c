// Package datasource fetches supporting context for the daily report:
// Federal Reserve press release feeds and the FRED data release
// calendar. All of it is best effort; a failed source is skipped, not
// fatal.
package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/macrolens/liquiditylens/internal/infra"
	"github.com/macrolens/liquiditylens/pkg/models"
)

// ReleaseSource is one RSS/Atom feed of data-release announcements.
type ReleaseSource struct {
	Name    string
	FeedURL string
}

// DefaultReleaseFeeds lists the monitored release announcement feeds.
var DefaultReleaseFeeds = []ReleaseSource{
	{
		Name:    "Federal Reserve Board",
		FeedURL: "https://www.federalreserve.gov/feeds/press_all.xml",
	},
	{
		Name:    "FRED Blog",
		FeedURL: "https://fredblog.stlouisfed.org/feed/",
	},
}

const defaultCalendarURL = "https://fred.stlouisfed.org/releases/calendar"

// Releases fetches release announcements and the release calendar.
type Releases struct {
	feeds       []ReleaseSource
	calendarURL string
	cache       *infra.Cache
	limiter     *infra.RateLimiter
	parser      *gofeed.Parser
}

// NewReleases creates a release source with the default feeds.
func NewReleases() *Releases {
	return &Releases{
		feeds:       DefaultReleaseFeeds,
		calendarURL: defaultCalendarURL,
		cache:       infra.NewCache(30 * time.Minute),
		limiter:     infra.NewRateLimiter(2, time.Second),
		parser:      gofeed.NewParser(),
	}
}

// NewReleasesWithSources creates a release source with custom feeds
// and calendar URL. Used in tests.
func NewReleasesWithSources(feeds []ReleaseSource, calendarURL string) *Releases {
	r := NewReleases()
	r.feeds = feeds
	r.calendarURL = calendarURL
	return r
}

// Recent returns the latest release announcements across all feeds,
// newest first. Feeds that fail to parse are skipped.
func (r *Releases) Recent(ctx context.Context, limit int) ([]models.ReleaseEvent, error) {
	cacheKey := fmt.Sprintf("releases:recent:%d", limit)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.([]models.ReleaseEvent), nil
	}

	var events []models.ReleaseEvent
	for _, src := range r.feeds {
		items, err := r.fetchFeed(ctx, src)
		if err != nil {
			continue
		}
		events = append(events, items...)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no release feed could be fetched")
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Published.After(events[j].Published)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	r.cache.Set(cacheKey, events)
	return events, nil
}

func (r *Releases) fetchFeed(ctx context.Context, src ReleaseSource) ([]models.ReleaseEvent, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := r.parser.ParseURLWithContext(src.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	events := make([]models.ReleaseEvent, 0, len(feed.Items))
	for _, item := range feed.Items {
		ev := models.ReleaseEvent{
			Title:  cleanHTML(item.Title),
			Link:   item.Link,
			Source: src.Name,
		}
		if item.PublishedParsed != nil {
			ev.Published = *item.PublishedParsed
		}
		events = append(events, ev)
	}
	return events, nil
}

// Calendar scrapes the FRED release calendar page and returns the
// listed releases.
func (r *Releases) Calendar(ctx context.Context) ([]models.ReleaseEvent, error) {
	if cached, ok := r.cache.Get("releases:calendar"); ok {
		return cached.([]models.ReleaseEvent), nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := infra.DoGet(ctx, r.calendarURL, map[string]string{
		"Accept": "text/html,application/xhtml+xml",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch release calendar: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse release calendar: %w", err)
	}

	var events []models.ReleaseEvent
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		dateText := strings.TrimSpace(cells.Eq(0).Text())
		link := cells.Eq(1).Find("a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			title = strings.TrimSpace(cells.Eq(1).Text())
		}
		if title == "" {
			return
		}

		ev := models.ReleaseEvent{
			Title:  title,
			Source: "FRED release calendar",
		}
		if href, ok := link.Attr("href"); ok {
			ev.Link = href
		}
		if t, err := parseCalendarDate(dateText); err == nil {
			ev.Published = t
		}
		events = append(events, ev)
	})

	if len(events) == 0 {
		return nil, fmt.Errorf("release calendar: no entries found")
	}

	r.cache.Set("releases:calendar", events)
	return events, nil
}

// parseCalendarDate handles the date formats the calendar page uses.
func parseCalendarDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
