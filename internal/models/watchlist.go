package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultWatchlistName is the singleton watchlist scanned by the
// scheduler.
const DefaultWatchlistName = "default"

// Watchlist is a named, deduplicated, alphabetically sorted ticker set.
type Watchlist struct {
	ID         uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	Name       string     `db:"name" json:"name" validate:"required"`
	Tickers    []string   `db:"tickers" json:"tickers"`
	LastScanAt *time.Time `db:"last_scan_at" json:"last_scan_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// NormalizeTickers trims, uppercases, drops empties, dedupes and sorts
// a raw ticker list into canonical watchlist form.
func NormalizeTickers(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether ticker is on the watchlist. The argument is
// normalized before comparison.
func (w *Watchlist) Contains(ticker string) bool {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, t := range w.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}
