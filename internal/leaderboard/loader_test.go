package leaderboard

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"market-board/internal/fetcher"
	"market-board/internal/logging"
)

const sheetCSV = "Rank,Name (ID),Region Rank,Return %,Total Equity\n" +
	"2,bob (b2),1,8.1%,\"$108,100.00\"\n" +
	" , , , , \n" +
	"1,alice (a1),2,12.3%,\"$112,300.00\"\n"

func quietLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, false)
}

func TestLoadSheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, sheetCSV)
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, fetcher.New(time.Second, ""), DefaultSchema(), quietLogger())
	board := l.Load(context.Background())

	assert.Equal(t, StatusOK, board.Status)
	assert.Equal(t, 5, len(board.Columns))
	assert.Equal(t, 2, len(board.Rows))
	assert.Equal(t, "alice (a1)", board.Rows[0]["Name (ID)"])
	assert.Equal(t, "$112,300.00", board.Rows[0]["Total Equity"])
	assert.Equal(t, "bob (b2)", board.Base[0]["Name (ID)"])
	assert.Equal(t, false, board.RefreshedAt.IsZero())
}

func TestLoadMissingURL(t *testing.T) {
	l := NewLoader("  ", fetcher.New(time.Second, ""), DefaultSchema(), quietLogger())
	board := l.Load(context.Background())

	assert.Equal(t, StatusMissing, board.Status)
	assert.Equal(t, MissingURLMessage, board.Message)
	assert.Equal(t, 0, len(board.Rows))
}

func TestLoadFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, fetcher.New(time.Second, ""), DefaultSchema(), quietLogger())
	board := l.Load(context.Background())

	assert.Equal(t, StatusError, board.Status)
	assert.Equal(t, LoadErrorMessage, board.Message)
}

func TestLoadEmptySheetBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	l := NewLoader(srv.URL, fetcher.New(time.Second, ""), DefaultSchema(), quietLogger())
	board := l.Load(context.Background())

	assert.Equal(t, StatusError, board.Status)
}

func TestLoadHeaderOnlyIsEmptyTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Name,Return %\n,\n")
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, fetcher.New(time.Second, ""), DefaultSchema(), quietLogger())
	board := l.Load(context.Background())

	assert.Equal(t, StatusOK, board.Status)
	assert.Equal(t, 0, len(board.Rows))
}
