package leaderboard

import (
	"context"
	"strings"
	"time"

	"market-board/internal/logging"
	"market-board/internal/model"
	"market-board/internal/parser"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing"
	StatusError   Status = "error"
)

const (
	MissingURLMessage = "Missing Google Sheet CSV URL."
	LoadErrorMessage  = "Error loading leaderboard."
)

type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Board is one loaded snapshot of the sheet.
type Board struct {
	Status      Status
	Message     string
	Columns     []string
	Base        []model.Record // sheet order, used as the input to header sorts
	Rows        []model.Record // default order
	RefreshedAt time.Time
}

type Loader struct {
	url    string
	client Getter
	schema Schema
	logger *logging.Logger
	now    func() time.Time
}

func NewLoader(url string, client Getter, schema Schema, logger *logging.Logger) *Loader {
	return &Loader{
		url:    strings.TrimSpace(url),
		client: client,
		schema: schema,
		logger: logger,
		now:    time.Now,
	}
}

func (l *Loader) Schema() Schema {
	return l.schema
}

// Load never returns an error: failures become a board carrying a static
// message.
func (l *Loader) Load(ctx context.Context) Board {
	if l.url == "" {
		l.logger.Warn("sheet url not configured")
		return Board{Status: StatusMissing, Message: MissingURLMessage}
	}

	body, err := l.client.Get(ctx, l.url)
	if err != nil {
		l.logger.Error("sheet fetch failed", logging.Field{Key: "err", Val: err})
		return Board{Status: StatusError, Message: LoadErrorMessage}
	}
	table, err := parser.ParseCSV(body)
	if err != nil {
		l.logger.Error("sheet parse failed", logging.Field{Key: "err", Val: err})
		return Board{Status: StatusError, Message: LoadErrorMessage}
	}

	l.logger.Info("sheet loaded", logging.Field{Key: "rows", Val: len(table.Rows)}, logging.Field{Key: "columns", Val: len(table.Columns)})
	return Board{
		Status:      StatusOK,
		Columns:     table.Columns,
		Base:        table.Rows,
		Rows:        l.schema.DefaultOrder(table),
		RefreshedAt: l.now(),
	}
}
