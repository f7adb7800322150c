package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"market-board/internal/model"
)

var (
	ErrNoItems    = errors.New("no items")
	ErrBadPayload = errors.New("bad payload")
)

const (
	untitled    = "Untitled"
	placeholder = "#"
)

func ParseItems(kind model.ResponseKind, body []byte) ([]model.NewsItem, error) {
	switch kind {
	case model.KindJSONItems:
		return ParseJSONItems(body)
	case model.KindJSONContents:
		return ParseJSONContents(body)
	case model.KindXML:
		return ParseRSS(body)
	default:
		return nil, fmt.Errorf("unsupported response kind %q", kind)
	}
}

func ParseRSS(body []byte) ([]model.NewsItem, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseString(string(body))
	if err != nil {
		return nil, err
	}
	items := make([]model.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, model.NewsItem{
			Title:     orDefault(CleanText(item.Title), untitled),
			Link:      orDefault(strings.TrimSpace(item.Link), placeholder),
			Date:      strings.TrimSpace(firstNonEmpty(item.Published, item.Updated)),
			Published: parsedTime(item.PublishedParsed, item.UpdatedParsed),
		})
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

// ParseJSONItems reads an rss2json style envelope: {"items":[{title, link, pubDate}]}.
func ParseJSONItems(body []byte) ([]model.NewsItem, error) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	list := findByPath(data, "items")
	if list == nil {
		return nil, fmt.Errorf("%w: items is not a list", ErrBadPayload)
	}
	items := make([]model.NewsItem, 0, len(list))
	for _, raw := range list {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, model.NewsItem{
			Title: orDefault(CleanText(firstNonEmpty(getString(obj, "title"), getString(obj, "headline"))), untitled),
			Link:  orDefault(firstNonEmpty(getString(obj, "link"), getString(obj, "url")), placeholder),
			Date: firstNonEmpty(
				getString(obj, "pubDate"),
				getString(obj, "published"),
				getString(obj, "published_at"),
			),
		})
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

// ParseJSONContents reads an allorigins style envelope whose contents field
// carries the feed XML as a string.
func ParseJSONContents(body []byte) ([]model.NewsItem, error) {
	var env struct {
		Contents *string `json:"contents"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if env.Contents == nil || strings.TrimSpace(*env.Contents) == "" {
		return nil, fmt.Errorf("%w: empty contents", ErrBadPayload)
	}
	return ParseRSS([]byte(*env.Contents))
}

func parsedTime(candidates ...*time.Time) time.Time {
	for _, t := range candidates {
		if t != nil && !t.IsZero() {
			return *t
		}
	}
	return time.Time{}
}

func findByPath(data any, path string) []any {
	parts := strings.Split(path, ".")
	cur := data
	for _, p := range parts {
		if p == "" {
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[p]
	}
	if arr, ok := cur.([]any); ok {
		return arr
	}
	return nil
}

func getString(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
