package model

import "time"

// Record is one CSV row keyed by header name.
type Record map[string]string

// Table keeps the header order next to the rows so columns render stably.
type Table struct {
	Columns []string
	Rows    []Record
}

func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

type NewsItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date"`
	// Published is set when the feed parser could read Date itself.
	Published time.Time `json:"-"`
}

type ResponseKind string

const (
	KindJSONItems    ResponseKind = "json_items"
	KindJSONContents ResponseKind = "json_contents"
	KindXML          ResponseKind = "xml"
)

type Provider struct {
	Name string
	URL  string
	Kind ResponseKind
}
