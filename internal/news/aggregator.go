package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-board/internal/logging"
	"market-board/internal/model"
	"market-board/internal/parser"
)

var ErrAllProvidersFailed = errors.New("all news providers failed")

type State string

const (
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

type Ticker struct {
	State     State
	Provider  string
	Items     []model.NewsItem
	UpdatedAt time.Time
}

func Loading() Ticker {
	return Ticker{State: StateLoading}
}

type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Aggregator struct {
	providers []model.Provider
	client    Getter
	maxItems  int
	logger    *logging.Logger
	now       func() time.Time
}

func NewAggregator(providers []model.Provider, client Getter, maxItems int, logger *logging.Logger) *Aggregator {
	if maxItems <= 0 {
		maxItems = 6
	}
	return &Aggregator{
		providers: providers,
		client:    client,
		maxItems:  maxItems,
		logger:    logger,
		now:       time.Now,
	}
}

// Fetch tries providers strictly in order and returns the first non-empty
// result. Provider N+1 is only contacted after provider N has failed.
func (a *Aggregator) Fetch(ctx context.Context) (Ticker, error) {
	for _, p := range a.providers {
		if err := ctx.Err(); err != nil {
			return Ticker{State: StateFailed, UpdatedAt: a.now()}, err
		}
		items, err := a.fetchProvider(ctx, p)
		if err != nil {
			a.logger.Warn("news provider failed", logging.Field{Key: "provider", Val: p.Name}, logging.Field{Key: "err", Val: err})
			continue
		}
		if len(items) > a.maxItems {
			items = items[:a.maxItems]
		}
		a.logger.Info("news loaded", logging.Field{Key: "provider", Val: p.Name}, logging.Field{Key: "count", Val: len(items)})
		return Ticker{State: StateLoaded, Provider: p.Name, Items: items, UpdatedAt: a.now()}, nil
	}
	a.logger.Error("news unavailable", logging.Field{Key: "providers", Val: len(a.providers)})
	return Ticker{State: StateFailed, UpdatedAt: a.now()}, ErrAllProvidersFailed
}

func (a *Aggregator) fetchProvider(ctx context.Context, p model.Provider) ([]model.NewsItem, error) {
	body, err := a.client.Get(ctx, p.URL)
	if err != nil {
		return nil, fmt.Errorf("%s fetch: %w", p.Name, err)
	}
	items, err := parser.ParseItems(p.Kind, body)
	if err != nil {
		return nil, fmt.Errorf("%s parse: %w", p.Name, err)
	}
	items = Dedupe(items)
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", p.Name, parser.ErrNoItems)
	}
	return items, nil
}
