package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"market-board/internal/leaderboard"
	"market-board/internal/logging"
	"market-board/internal/news"
	"market-board/internal/page"
)

type newsView struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date"`
	When  string `json:"when,omitempty"`
}

type pageView struct {
	Title       string
	Status      leaderboard.Status
	Message     string
	Colspan     int
	Headers     []page.Header
	Rows        [][]string
	Refreshed   string
	NewsEnabled bool
	NewsState   news.State
	News        []newsView
}

type leaderboardResponse struct {
	Status      leaderboard.Status  `json:"status"`
	Message     string              `json:"message,omitempty"`
	Columns     []string            `json:"columns"`
	Rows        []map[string]string `json:"rows"`
	RefreshedAt *time.Time          `json:"refreshed_at,omitempty"`
}

type newsResponse struct {
	State    news.State `json:"state"`
	Provider string     `json:"provider,omitempty"`
	Items    []newsView `json:"items"`
}

func (s *Server) index(c *gin.Context) {
	snap := s.backend.State().Snapshot()
	dates := s.backend.Dates()

	view := pageView{
		Title:       s.cfg.Title,
		Status:      snap.Status,
		Message:     snap.Message,
		Colspan:     len(snap.Headers),
		Headers:     snap.Headers,
		NewsEnabled: snap.NewsEnabled,
		NewsState:   snap.Ticker.State,
		News:        newsViews(snap.Ticker, dates),
	}
	if view.Colspan == 0 {
		view.Colspan = 1
	}
	if snap.Status == "" {
		view.Message = "Loading leaderboard…"
	}
	if !snap.RefreshedAt.IsZero() {
		view.Refreshed = dates.FormatTime(snap.RefreshedAt)
	}
	for _, r := range snap.Rows {
		cells := make([]string, len(snap.Headers))
		for i, h := range snap.Headers {
			cells[i] = r[h.Key]
		}
		view.Rows = append(view.Rows, cells)
	}
	c.HTML(http.StatusOK, "index.html", view)
}

func (s *Server) sort(c *gin.Context) {
	key := c.PostForm("key")
	if !s.backend.State().Click(key) {
		s.logger.Debug("sort ignored", logging.Field{Key: "key", Val: key})
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) refresh(c *gin.Context) {
	if !s.rate.Allow() {
		s.logger.Warn("refresh rate limited")
		c.String(http.StatusTooManyRequests, "too many refreshes, try again shortly")
		return
	}
	// the refresh outlives a client that hangs up
	ctx := context.WithoutCancel(c.Request.Context())
	if err := s.backend.Refresh(ctx); err != nil && !errors.Is(err, page.ErrRefreshRunning) {
		s.logger.Error("refresh failed", logging.Field{Key: "err", Val: err})
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) apiLeaderboard(c *gin.Context) {
	snap := s.backend.State().Snapshot()
	resp := leaderboardResponse{
		Status:  snap.Status,
		Message: snap.Message,
		Columns: []string{},
		Rows:    []map[string]string{},
	}
	for _, h := range snap.Headers {
		resp.Columns = append(resp.Columns, h.Key)
	}
	for _, r := range snap.Rows {
		resp.Rows = append(resp.Rows, r)
	}
	if !snap.RefreshedAt.IsZero() {
		t := snap.RefreshedAt
		resp.RefreshedAt = &t
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) apiNews(c *gin.Context) {
	snap := s.backend.State().Snapshot()
	c.JSON(http.StatusOK, newsResponse{
		State:    snap.Ticker.State,
		Provider: snap.Ticker.Provider,
		Items:    newsViews(snap.Ticker, s.backend.Dates()),
	})
}

func newsViews(t news.Ticker, dates news.DateFormatter) []newsView {
	out := []newsView{}
	if t.State != news.StateLoaded {
		return out
	}
	for _, it := range t.Items {
		out = append(out, newsView{
			Title: it.Title,
			Link:  it.Link,
			Date:  it.Date,
			When:  dates.FormatItem(it),
		})
	}
	return out
}
