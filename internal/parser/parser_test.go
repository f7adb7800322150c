package parser

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"market-board/internal/model"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Top Stories</title>
  <item>
    <title>Stocks close &lt;b&gt;higher&lt;/b&gt; as tech rallies</title>
    <link>https://example.com/a</link>
    <pubDate>Mon, 12 Oct 2026 20:15:00 GMT</pubDate>
  </item>
  <item>
    <link>https://example.com/b</link>
  </item>
  <item>
    <title>Oil slips</title>
  </item>
</channel>
</rss>`

func TestParseRSS(t *testing.T) {
	items, err := ParseRSS([]byte(sampleRSS))

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(items))
	assert.Equal(t, "Stocks close higher as tech rallies", items[0].Title)
	assert.Equal(t, "https://example.com/a", items[0].Link)
	assert.Equal(t, "Mon, 12 Oct 2026 20:15:00 GMT", items[0].Date)
	assert.Equal(t, "Untitled", items[1].Title)
	assert.Equal(t, "", items[1].Date)
	assert.Equal(t, "#", items[2].Link)
}

func TestParseRSSKeepsParsedTime(t *testing.T) {
	items, err := ParseRSS([]byte(sampleRSS))

	assert.Equal(t, nil, err)
	assert.Equal(t, true, items[0].Published.Equal(time.Date(2026, 10, 12, 20, 15, 0, 0, time.UTC)))
	assert.Equal(t, true, items[1].Published.IsZero())
}

func TestParseRSSEmptyChannel(t *testing.T) {
	_, err := ParseRSS([]byte(`<rss version="2.0"><channel><title>x</title></channel></rss>`))

	assert.Equal(t, true, errors.Is(err, ErrNoItems))
}

func TestParseRSSNotAFeed(t *testing.T) {
	_, err := ParseRSS([]byte(`<html><body>blocked</body></html>`))

	assert.NotEqual(t, nil, err)
}

func TestParseJSONItems(t *testing.T) {
	body := []byte(`{"status":"ok","items":[
		{"title":"Fed holds rates","link":"https://example.com/fed","pubDate":"2026-10-12 18:00:00"},
		{"title":"","link":"","pubDate":""},
		"not-an-object"
	]}`)

	items, err := ParseJSONItems(body)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(items))
	assert.Equal(t, model.NewsItem{Title: "Fed holds rates", Link: "https://example.com/fed", Date: "2026-10-12 18:00:00"}, items[0])
	assert.Equal(t, model.NewsItem{Title: "Untitled", Link: "#", Date: ""}, items[1])
}

func TestParseJSONItemsBadPayload(t *testing.T) {
	_, err := ParseJSONItems([]byte(`{"status":"error","message":"rate limited"}`))
	assert.Equal(t, true, errors.Is(err, ErrBadPayload))

	_, err = ParseJSONItems([]byte(`not json`))
	assert.Equal(t, true, errors.Is(err, ErrBadPayload))

	_, err = ParseJSONItems([]byte(`{"items":[]}`))
	assert.Equal(t, true, errors.Is(err, ErrNoItems))
}

func TestParseJSONContents(t *testing.T) {
	env, _ := json.Marshal(map[string]any{
		"contents": sampleRSS,
		"status":   map[string]any{"http_code": 200},
	})

	items, err := ParseJSONContents(env)

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(items))
	assert.Equal(t, "https://example.com/a", items[0].Link)
}

func TestParseJSONContentsMissing(t *testing.T) {
	_, err := ParseJSONContents([]byte(`{"status":{"http_code":403}}`))

	assert.Equal(t, true, errors.Is(err, ErrBadPayload))
}

func TestParseItemsDispatch(t *testing.T) {
	items, err := ParseItems(model.KindXML, []byte(sampleRSS))
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(items))

	_, err = ParseItems(model.ResponseKind("yaml"), nil)
	assert.NotEqual(t, nil, err)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "AT&T beats estimates", CleanText("AT&amp;T <em>beats</em> estimates"))
	assert.Equal(t, "plain title", CleanText("  plain \n title "))
	assert.Equal(t, "", CleanText(""))
}
