package page

import (
	"errors"
	"sync"
	"time"

	"market-board/internal/leaderboard"
	"market-board/internal/model"
	"market-board/internal/news"
)

var ErrRefreshRunning = errors.New("refresh already running")

// State is everything one page load produces. A refresh replaces the board
// and its header sort state together, so toggles start over like a reload.
type State struct {
	mu          sync.RWMutex
	schema      leaderboard.Schema
	columns     []string
	sortable    map[string]bool
	newsEnabled bool
	board       leaderboard.Board
	sorter      *leaderboard.Sorter
	ticker      news.Ticker
}

// NewState builds an empty page. columns fixes the rendered columns and
// their order; when empty the sheet header is used.
func NewState(schema leaderboard.Schema, columns, sortable []string, newsEnabled bool) *State {
	s := &State{
		schema:      schema,
		columns:     columns,
		newsEnabled: newsEnabled,
		ticker:      news.Loading(),
	}
	if len(sortable) > 0 {
		s.sortable = map[string]bool{}
		for _, c := range sortable {
			s.sortable[c] = true
		}
	}
	return s
}

func (s *State) SetBoard(b leaderboard.Board) {
	sorter := leaderboard.NewSorter(s.schema, b.Base, b.Rows)
	s.mu.Lock()
	s.board = b
	s.sorter = sorter
	s.mu.Unlock()
}

func (s *State) SetTicker(t news.Ticker) {
	s.mu.Lock()
	s.ticker = t
	s.mu.Unlock()
}

func (s *State) Sortable(column string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortableLocked(column)
}

func (s *State) sortableLocked(column string) bool {
	if s.sortable != nil {
		return s.sortable[column]
	}
	for _, c := range s.columnsLocked() {
		if c == column {
			return true
		}
	}
	return false
}

func (s *State) columnsLocked() []string {
	if len(s.columns) > 0 {
		return s.columns
	}
	return s.board.Columns
}

// Click applies a header click. It returns false when nothing is loaded or
// the column is not sortable.
func (s *State) Click(column string) bool {
	s.mu.RLock()
	sorter := s.sorter
	ok := sorter != nil && s.board.Status == leaderboard.StatusOK && s.sortableLocked(column)
	s.mu.RUnlock()
	if !ok {
		return false
	}
	sorter.Click(column)
	return true
}

type Header struct {
	Key      string
	Sortable bool
	Active   bool
	NextAsc  bool
}

type Snapshot struct {
	Status      leaderboard.Status
	Message     string
	Headers     []Header
	Rows        []model.Record
	RefreshedAt time.Time
	NewsEnabled bool
	Ticker      news.Ticker
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Status:      s.board.Status,
		Message:     s.board.Message,
		RefreshedAt: s.board.RefreshedAt,
		NewsEnabled: s.newsEnabled,
		Ticker:      s.ticker,
	}
	if s.sorter == nil {
		return snap
	}
	active, nextAsc := s.sorter.Active()
	for _, c := range s.columnsLocked() {
		snap.Headers = append(snap.Headers, Header{
			Key:      c,
			Sortable: s.sortableLocked(c),
			Active:   c == active,
			NextAsc:  c == active && nextAsc,
		})
	}
	snap.Rows = s.sorter.View()
	return snap
}
