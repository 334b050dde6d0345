package repository

import (
	"fmt"

	"github.com/yourusername/stock-scout/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Memo         MemoRepository
	Investment   InvestmentRepository
	AnalystStats AnalystStatsRepository
	Watchlist    WatchlistRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Memo:         NewPostgresMemoRepository(db),
		Investment:   NewPostgresInvestmentRepository(db),
		AnalystStats: NewPostgresAnalystStatsRepository(db),
		Watchlist:    NewPostgresWatchlistRepository(db),
	}, nil
}
