package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"

	"market-board/internal/config"
	"market-board/internal/leaderboard"
	"market-board/internal/logging"
	"market-board/internal/news"
	"market-board/internal/page"
)

const feedXML = `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>
<item><title>One</title><link>https://news.example/1</link><pubDate>Mon, 12 Oct 2026 20:15:00 GMT</pubDate></item>
<item><title>Two</title><link>https://news.example/2</link></item>
</channel></rss>`

func testConfig(sheetURL, proxyURL string) config.Config {
	cfg := config.Config{
		Sheet: config.SheetConfig{CSVURL: sheetURL},
		News: config.NewsConfig{Providers: []config.ProviderConfig{
			{Name: "rss2json", Kind: "json_items", Endpoint: proxyURL + "/rss2json?rss_url={url}", FeedURL: "https://feeds.example/top"},
			{Name: "allorigins", Kind: "json_contents", Endpoint: proxyURL + "/allorigins?url={url}", FeedURL: "https://feeds.example/top"},
		}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestRefreshLoadsBoardAndNews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sheet.csv", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Rank,Name (ID),Return %\n2,bob,1%\n1,alice,2%\n")
	})
	mux.HandleFunc("/rss2json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusUnprocessableEntity)
	})
	var gotFeed string
	mux.HandleFunc("/allorigins", func(w http.ResponseWriter, r *http.Request) {
		gotFeed = r.URL.Query().Get("url")
		json.NewEncoder(w).Encode(map[string]string{"contents": feedXML})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	state, refresher, _, err := Build(testConfig(srv.URL+"/sheet.csv", srv.URL), logging.NewWithWriter(io.Discard, false))
	assert.Equal(t, nil, err)

	assert.Equal(t, nil, refresher.Refresh(context.Background()))

	snap := state.Snapshot()
	assert.Equal(t, leaderboard.StatusOK, snap.Status)
	assert.Equal(t, "alice", snap.Rows[0]["Name (ID)"])
	assert.Equal(t, news.StateLoaded, snap.Ticker.State)
	assert.Equal(t, "allorigins", snap.Ticker.Provider)
	assert.Equal(t, 2, len(snap.Ticker.Items))
	assert.Equal(t, "https://feeds.example/top", gotFeed)
}

func TestRefreshWithoutSheetURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	state, refresher, _, err := Build(testConfig("", srv.URL), logging.NewWithWriter(io.Discard, false))
	assert.Equal(t, nil, err)

	assert.Equal(t, nil, refresher.Refresh(context.Background()))

	snap := state.Snapshot()
	assert.Equal(t, leaderboard.StatusMissing, snap.Status)
	assert.Equal(t, leaderboard.MissingURLMessage, snap.Message)
	assert.Equal(t, news.StateFailed, snap.Ticker.State)
	assert.Equal(t, 0, len(snap.Ticker.Items))
}

func TestOverlappingRefreshIsSkipped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		io.WriteString(w, "Name\nalice\n")
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, srv.URL)
	disabled := false
	cfg.News.Enabled = &disabled
	_, refresher, _, err := Build(cfg, logging.NewWithWriter(io.Discard, false))
	assert.Equal(t, nil, err)

	done := make(chan error, 1)
	go func() { done <- refresher.Refresh(context.Background()) }()
	<-entered

	err = refresher.Refresh(context.Background())
	assert.Equal(t, true, errors.Is(err, page.ErrRefreshRunning))
	assert.Equal(t, int64(1), refresher.Missed())

	close(release)
	assert.Equal(t, nil, <-done)
}

func TestBuildRejectsBadTimezone(t *testing.T) {
	cfg := testConfig("", "http://127.0.0.1:1")
	cfg.Runtime.Timezone = "Nowhere/Special"

	_, _, _, err := Build(cfg, logging.NewWithWriter(io.Discard, false))

	assert.NotEqual(t, nil, err)
}
