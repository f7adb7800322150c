package news

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/araddon/dateparse"

	"market-board/internal/model"
)

const displayLayout = "Jan 2, 2006, 3:04 PM"

// Go reads an unknown zone abbreviation as a zero offset.
var zoneOffsets = map[string]string{
	"UT":   "+0000",
	"EST":  "-0500",
	"EDT":  "-0400",
	"CST":  "-0600",
	"CDT":  "-0500",
	"MST":  "-0700",
	"MDT":  "-0600",
	"PST":  "-0800",
	"PDT":  "-0700",
	"AKST": "-0900",
	"AKDT": "-0800",
	"HST":  "-1000",
	"BST":  "+0100",
	"CET":  "+0100",
	"CEST": "+0200",
}

// DateFormatter renders raw feed dates for display in one time zone.
type DateFormatter struct {
	Location *time.Location
	Shift    time.Duration
	Label    string
}

func NewDateFormatter(tz string, shift time.Duration) (DateFormatter, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return DateFormatter{}, err
	}
	return DateFormatter{Location: loc, Shift: shift, Label: zoneLabel(tz)}, nil
}

// FormatItem prefers the raw date and falls back to the time the feed
// parser recovered from it. It returns "" when neither is usable.
func (f DateFormatter) FormatItem(it model.NewsItem) string {
	if t, ok := ParseFeedDate(it.Date); ok {
		return f.FormatTime(t.Add(f.Shift))
	}
	if !it.Published.IsZero() {
		return f.FormatTime(it.Published.Add(f.Shift))
	}
	return ""
}

func (f DateFormatter) FormatTime(t time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	out := t.In(loc).Format(displayLayout)
	if f.Label != "" {
		out += " " + f.Label
	}
	return out
}

// ParseFeedDate reads RSS, Atom and rss2json date shapes. Zone-less values
// are UTC.
func ParseFeedDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		if off, ok := zoneOffsets[strings.ToUpper(s[i+1:])]; ok {
			s = s[:i+1] + off
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func zoneLabel(tz string) string {
	switch tz {
	case "America/Los_Angeles":
		return "PT"
	case "America/New_York":
		return "ET"
	case "America/Chicago":
		return "CT"
	case "America/Denver":
		return "MT"
	case "UTC", "Etc/UTC":
		return "UTC"
	}
	return tz
}
