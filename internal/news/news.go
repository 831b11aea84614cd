// Package news implements the news-risk window gate: a schedule of
// high-impact events that suspends entries for a symbol in the minutes
// surrounding each one.
package news

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
	"time"
)

var lettersOnly = regexp.MustCompile(`[^A-Za-z]`)

// NormalizeSymbol strips non-letters and upper-cases the result, then
// takes the leading six letters if at least that many are present. For
// already-six-letter tickers (including metals like XAUUSD/XAGUSD) this
// is the identity transform.
func NormalizeSymbol(symbol string) string {
	letters := strings.ToUpper(lettersOnly.ReplaceAllString(symbol, ""))
	if len(letters) >= 6 {
		return letters[:6]
	}
	return letters
}

// Event is one scheduled high-impact news item.
type Event struct {
	Time    time.Time
	Impact  string
	Symbols []string
	Title   string
}

type scheduleFile struct {
	Events []struct {
		Time    string   `json:"time"`
		Impact  string   `json:"impact"`
		Symbols []string `json:"symbols"`
		Title   string   `json:"title"`
	} `json:"events"`
}

// Filter tracks a news schedule and reports whether a given instant falls
// inside the configured pre/post window of any applicable event.
type Filter struct {
	windowPre  time.Duration
	windowPost time.Duration
	events     []Event
}

// NewFilter builds a Filter with the given pre/post window in minutes.
func NewFilter(preMinutes, postMinutes int) *Filter {
	return &Filter{
		windowPre:  time.Duration(preMinutes) * time.Minute,
		windowPost: time.Duration(postMinutes) * time.Minute,
	}
}

// LoadSchedule reads a JSON news schedule from path. A missing path or
// file is treated as "no events" rather than an error, matching the
// reference loader's tolerant behavior.
func (f *Filter) LoadSchedule(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var payload scheduleFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	events := make([]Event, 0, len(payload.Events))
	for _, e := range payload.Events {
		if e.Time == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, e.Time)
		if err != nil {
			continue
		}
		symbols := make([]string, len(e.Symbols))
		for i, s := range e.Symbols {
			symbols[i] = NormalizeSymbol(s)
		}
		impact := e.Impact
		if impact == "" {
			impact = "high"
		}
		events = append(events, Event{Time: ts, Impact: impact, Symbols: symbols, Title: e.Title})
	}
	f.events = events
	return nil
}

// InRiskWindow reports whether now falls within the pre/post window of
// any event matching symbol and sensitivity. Events with no symbol list
// apply globally; with sensitivity "high", only high-impact events are
// considered.
func (f *Filter) InRiskWindow(now time.Time, symbol, sensitivity string) bool {
	base := NormalizeSymbol(symbol)
	for _, e := range f.events {
		if e.Impact != "high" && sensitivity == "high" {
			continue
		}
		windowStart := e.Time.Add(-f.windowPre)
		windowEnd := e.Time.Add(f.windowPost)
		if now.Before(windowStart) || now.After(windowEnd) {
			continue
		}
		if len(e.Symbols) == 0 {
			return true
		}
		for _, s := range e.Symbols {
			if s == base {
				return true
			}
		}
	}
	return false
}
