package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"market-board/internal/config"
	"market-board/internal/fetcher"
	"market-board/internal/leaderboard"
	"market-board/internal/logging"
	"market-board/internal/news"
	"market-board/internal/page"
	"market-board/internal/web"
)

// Manager owns the current page load and swaps it on config reload.
type Manager struct {
	cfgPath string
	logger  *logging.Logger

	mu  sync.RWMutex
	cur *pageLoad
}

type pageLoad struct {
	state     *page.State
	dates     news.DateFormatter
	refresher *Refresher
	cron      *cron.Cron
}

func NewManager(cfgPath string, logger *logging.Logger) *Manager {
	return &Manager{cfgPath: cfgPath, logger: logger}
}

func (m *Manager) Start(ctx context.Context) error {
	cfg, err := config.Load(m.cfgPath)
	if err != nil {
		return err
	}
	m.applyRuntime(cfg)
	if err := m.runWithConfig(ctx, cfg); err != nil {
		return err
	}
	m.handleSignals(ctx)

	srv := web.NewServer(ctx, cfg.Server, m, m.logger)
	err = srv.Run(ctx)
	m.stopCron()
	return err
}

func Build(cfg config.Config, logger *logging.Logger) (*page.State, *Refresher, news.DateFormatter, error) {
	dates, err := news.NewDateFormatter(cfg.Runtime.Timezone, time.Duration(cfg.News.DateShiftMinutes)*time.Minute)
	if err != nil {
		return nil, nil, news.DateFormatter{}, fmt.Errorf("invalid timezone: %w", err)
	}
	client := fetcher.New(time.Duration(cfg.Network.TimeoutMS)*time.Millisecond, cfg.Network.UserAgent).
		WithMaxBodyBytes(cfg.Network.MaxBodyBytes)
	schema := leaderboard.NewSchema(cfg.Sheet.NumericColumns, cfg.Sheet.PercentColumns)
	loader := leaderboard.NewLoader(cfg.Sheet.CSVURL, client, schema, logger)

	var agg *news.Aggregator
	if cfg.NewsEnabled() {
		agg = news.NewAggregator(cfg.Providers(), client, cfg.News.MaxItems, logger)
	}
	state := page.NewState(schema, cfg.Sheet.Columns, cfg.Sheet.SortableColumns, cfg.NewsEnabled())
	return state, NewRefresher(loader, agg, state, logger), dates, nil
}

func (m *Manager) runWithConfig(ctx context.Context, cfg config.Config) error {
	state, refresher, dates, err := Build(cfg, m.logger)
	if err != nil {
		return err
	}
	load := &pageLoad{state: state, dates: dates, refresher: refresher}

	if cfg.Schedule.RefreshCron != "" {
		c := cron.New(cron.WithSeconds(), cron.WithLocation(dates.Location))
		if _, err := c.AddFunc(cfg.Schedule.RefreshCron, func() { _ = refresher.Refresh(ctx) }); err != nil {
			return fmt.Errorf("register refresh schedule: %w", err)
		}
		load.cron = c
	}

	m.mu.Lock()
	prev := m.cur
	m.cur = load
	m.mu.Unlock()
	if prev != nil && prev.cron != nil {
		prev.cron.Stop()
	}
	if load.cron != nil {
		load.cron.Start()
	}

	go func() { _ = refresher.Refresh(ctx) }()
	m.logger.Info("page load started",
		logging.Field{Key: "sheet", Val: cfg.Sheet.CSVURL != ""},
		logging.Field{Key: "providers", Val: len(cfg.News.Providers)},
		logging.Field{Key: "schedule", Val: cfg.Schedule.RefreshCron},
	)
	return nil
}

func (m *Manager) State() *page.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur.state
}

func (m *Manager) Dates() news.DateFormatter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur.dates
}

func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.RLock()
	r := m.cur.refresher
	m.mu.RUnlock()
	return r.Refresh(ctx)
}

func (m *Manager) stopCron() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur != nil && m.cur.cron != nil {
		<-m.cur.cron.Stop().Done()
	}
}

func (m *Manager) handleSignals(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				m.reload(ctx, "signal")
			}
		}
	}()
}

// reload rebuilds the page load. The listen address is fixed for the
// process lifetime.
func (m *Manager) reload(ctx context.Context, reason string) {
	cfg, err := config.Load(m.cfgPath)
	if err != nil {
		m.logger.Error("reload failed", logging.Field{Key: "err", Val: err})
		return
	}
	m.applyRuntime(cfg)
	m.logger.Info("reloading", logging.Field{Key: "reason", Val: reason})
	if err := m.runWithConfig(ctx, cfg); err != nil {
		m.logger.Error("reload failed", logging.Field{Key: "err", Val: err})
	}
}

func (m *Manager) applyRuntime(cfg config.Config) {
	m.logger.SetJSON(cfg.Logging.JSON)
	m.logger.SetLevel(logging.ParseLevel(cfg.Logging.Level))
}
