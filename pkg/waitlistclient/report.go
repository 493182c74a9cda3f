package waitlistclient

import (
	"cmp"
	"encoding/csv"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/akeren/multiverse-waitlist/pkg/constants"
)

const (
	day      = 24 * time.Hour
	topLimit = 5
)

type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Stats struct {
	Total        int     `json:"total"`
	Today        int     `json:"today"`
	ThisWeek     int     `json:"this_week"`
	ThisMonth    int     `json:"this_month"`
	GrowthRate   float64 `json:"growth_rate"`
	TopSources   []Count `json:"top_sources"`
	TopCountries []Count `json:"top_countries"`
}

// ComputeStats summarizes entries relative to now. Day boundaries use now's location.
// GrowthRate compares the last 7 days with the 7 before, as a percentage with one decimal.
func ComputeStats(entries []Entry, now time.Time) Stats {
	today := startOfDay(now)
	weekAgo := today.Add(-7 * day)
	twoWeeksAgo := today.Add(-14 * day)
	monthAgo := today.Add(-30 * day)

	stats := Stats{Total: len(entries)}
	var lastWeek int
	sources := map[string]int{}
	countries := map[string]int{}

	for _, e := range entries {
		created := e.CreatedAt
		if !created.Before(today) {
			stats.Today++
		}
		if !created.Before(weekAgo) {
			stats.ThisWeek++
		}
		if !created.Before(monthAgo) {
			stats.ThisMonth++
		}
		if !created.Before(twoWeeksAgo) && created.Before(weekAgo) {
			lastWeek++
		}

		sources[sourceOf(e)]++
		if e.Country != "" {
			countries[e.Country]++
		}
	}

	if lastWeek > 0 {
		rate := float64(stats.ThisWeek-lastWeek) / float64(lastWeek) * 100
		stats.GrowthRate = math.Round(rate*10) / 10
	}

	stats.TopSources = top(sources, topLimit)
	stats.TopCountries = top(countries, topLimit)
	return stats
}

// sourceOf attributes an entry to its campaign source, then its capture point.
func sourceOf(e Entry) string {
	switch {
	case e.UTMSource != "":
		return e.UTMSource
	case e.Source != "":
		return e.Source
	default:
		return "direct"
	}
}

func top(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for name, count := range counts {
		out = append(out, Count{Name: name, Count: count})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
)

// FilterEntries keeps entries in the period whose email, country or UTM source
// contains search, ignoring case. An empty search matches everything.
func FilterEntries(entries []Entry, period Period, search string, now time.Time) []Entry {
	needle := strings.ToLower(strings.TrimSpace(search))
	y, m, d := now.Date()
	weekAgo := now.Add(-7 * day)

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		switch period {
		case PeriodToday:
			ey, em, ed := e.CreatedAt.In(now.Location()).Date()
			if ey != y || em != m || ed != d {
				continue
			}
		case PeriodWeek:
			if e.CreatedAt.Before(weekAgo) {
				continue
			}
		}

		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Email), needle) &&
			!strings.Contains(strings.ToLower(e.Country), needle) &&
			!strings.Contains(strings.ToLower(e.UTMSource), needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByEmail     SortField = "email"
)

// SortEntries sorts in place and returns entries for chaining.
func SortEntries(entries []Entry, field SortField, ascending bool) []Entry {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		var c int
		if field == SortByEmail {
			c = cmp.Compare(a.Email, b.Email)
		} else {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if !ascending {
			c = -c
		}
		return c
	})
	return entries
}

var csvHeader = []string{"Email", "Date", "Source", "UTM Source", "UTM Medium", "UTM Campaign", "Country", "City", "Status"}

// WriteCSV writes one row per entry under a fixed header. Dates are UTC calendar days.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			csvCell(e.Email),
			e.CreatedAt.UTC().Format(time.DateOnly),
			csvCell(cmp.Or(e.Source, constants.DefaultWaitlistSource)),
			csvCell(e.UTMSource),
			csvCell(e.UTMMedium),
			csvCell(e.UTMCampaign),
			csvCell(e.Country),
			csvCell(e.City),
			csvCell(cmp.Or(e.Status, constants.DefaultWaitlistStatus)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// csvCell quotes submitter-controlled text that a spreadsheet would evaluate as a formula.
func csvCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func ExportFilename(now time.Time) string {
	return "qsv-waitlist-" + now.UTC().Format(time.DateOnly) + ".csv"
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
