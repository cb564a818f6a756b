package clerk

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zulandar/shopclerk/internal/order"
)

// DailyReport holds order metrics for a 24-hour period.
type DailyReport struct {
	PeriodStart  time.Time
	PeriodEnd    time.Time
	OrdersPlaced int
	ByProduct    []ProductDigest
}

// ProductDigest holds per-product order counts for digest reports.
type ProductDigest struct {
	Name  string
	Count int
}

// BuildDailyDigest reads the order store and returns the digest text for
// the last 24 hours. Returns empty string when there were no orders —
// the digest is suppressed rather than posting noise.
func BuildDailyDigest(store order.Store, now time.Time) (string, error) {
	since := now.Add(-24 * time.Hour)

	report, err := buildDailyReport(store, since, now)
	if err != nil {
		return "", fmt.Errorf("clerk: daily digest: %w", err)
	}
	if report.OrdersPlaced == 0 {
		return "", nil
	}
	return formatDaily(report), nil
}

// buildDailyReport counts orders whose timestamps fall in [since, until).
// Orders with unparseable timestamps are skipped.
func buildDailyReport(store order.Store, since, until time.Time) (*DailyReport, error) {
	orders, err := store.LoadAll()
	if err != nil {
		return nil, err
	}

	report := &DailyReport{PeriodStart: since, PeriodEnd: until}
	counts := make(map[string]int)
	for _, o := range orders {
		ts, err := time.ParseInLocation(order.TimestampLayout, o.Timestamp, time.Local)
		if err != nil {
			continue
		}
		if ts.Before(since) || !ts.Before(until) {
			continue
		}
		report.OrdersPlaced++
		counts[o.ProductName]++
	}

	for name, count := range counts {
		report.ByProduct = append(report.ByProduct, ProductDigest{Name: name, Count: count})
	}
	// Busiest products first, name as tiebreaker for stable output.
	sort.Slice(report.ByProduct, func(i, j int) bool {
		if report.ByProduct[i].Count != report.ByProduct[j].Count {
			return report.ByProduct[i].Count > report.ByProduct[j].Count
		}
		return report.ByProduct[i].Name < report.ByProduct[j].Name
	})

	return report, nil
}

// formatDaily renders a daily report as digest text.
func formatDaily(report *DailyReport) string {
	var lines []string
	lines = append(lines, "Daily order digest")
	lines = append(lines, fmt.Sprintf("Period: %s – %s",
		report.PeriodStart.Format("Jan 2 15:04"),
		report.PeriodEnd.Format("Jan 2 15:04")))
	lines = append(lines, fmt.Sprintf("Orders placed: %d", report.OrdersPlaced))

	if len(report.ByProduct) > 0 {
		lines = append(lines, "")
		lines = append(lines, "Per product:")
		for _, pd := range report.ByProduct {
			lines = append(lines, fmt.Sprintf("  %s: %d", pd.Name, pd.Count))
		}
	}
	return strings.Join(lines, "\n")
}
