package core

import (
	"context"
	"sync/atomic"
	"time"

	"market-board/internal/leaderboard"
	"market-board/internal/logging"
	"market-board/internal/news"
	"market-board/internal/page"
)

// Refresher performs one page load: the sheet first, then the news
// fallback sequence. Overlapping runs are skipped.
type Refresher struct {
	loader *leaderboard.Loader
	news   *news.Aggregator
	state  *page.State
	logger *logging.Logger

	running atomic.Bool
	missed  atomic.Int64
}

func NewRefresher(loader *leaderboard.Loader, agg *news.Aggregator, state *page.State, logger *logging.Logger) *Refresher {
	return &Refresher{
		loader: loader,
		news:   agg,
		state:  state,
		logger: logger,
	}
}

func (r *Refresher) Refresh(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		r.missed.Add(1)
		r.logger.Warn("refresh skipped", logging.Field{Key: "missed", Val: r.missed.Load()})
		return page.ErrRefreshRunning
	}
	defer r.running.Store(false)

	start := time.Now()
	r.state.SetBoard(r.loader.Load(ctx))

	if r.news != nil {
		ticker, err := r.news.Fetch(ctx)
		if err != nil {
			r.logger.Warn("news fallback exhausted", logging.Field{Key: "err", Val: err})
		}
		r.state.SetTicker(ticker)
	}

	r.logger.Info("refresh done", logging.Field{Key: "elapsed_ms", Val: time.Since(start).Milliseconds()})
	return nil
}

func (r *Refresher) Missed() int64 {
	return r.missed.Load()
}
