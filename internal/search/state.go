// Package search holds the filter and paging state of the customer list and keeps it
// in sync with the URL query string.
package search

import (
	"html"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Well-known state keys.
const (
	KeyMode    = "mode"
	KeyPage    = "curPage"
	KeyResults = "results"
	KeyArea    = "gebiet"
	KeySearch  = "search"
	KeyColor   = "farbcode"
)

// View modes.
const (
	ModeList = "list"
	ModeMap  = "map"
)

// DefaultResults is the page size used when the state does not name one.
const DefaultResults = 50

// Upper bounds for the page number and the page size.
const (
	MaxPage    = 100000
	MaxResults = 100000
)

// State is an insertion-ordered set of key/value pairs. The zero value is an empty
// state in list mode.
type State struct {
	keys   []string
	values map[string]string
}

// New returns an empty state.
func New() State {
	return State{values: make(map[string]string)}
}

// Parse builds a state from a raw URL query. Pairs without a key are ignored and
// later duplicates overwrite earlier values while keeping the first position.
func Parse(rawQuery string) State {
	state := New()
	for _, pair := range strings.Split(strings.TrimPrefix(rawQuery, "?"), "&") {
		key, value, _ := strings.Cut(pair, "=")
		key, errKey := url.QueryUnescape(key)
		if errKey != nil || key == "" {
			continue
		}
		if unescaped, err := url.QueryUnescape(value); err == nil {
			value = unescaped
		}
		state.Set(key, value)
	}

	return state
}

// Clone returns an independent copy.
func (s State) Clone() State {
	out := New()
	for _, key := range s.keys {
		out.Set(key, s.values[key])
	}

	return out
}

// Get returns the value of key, or "" when it is not set.
func (s State) Get(key string) string {
	return s.values[key]
}

// Set stores value under key.
func (s *State) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Apply merges submitted form values into the state. Values are escaped and trimmed
// before they are stored.
func (s *State) Apply(updates map[string]string) {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		s.Set(key, Sanitize(updates[key]))
	}
}

// Keys returns the keys in insertion order.
func (s State) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Encode renders the state as a URL query in insertion order.
func (s State) Encode() string {
	parts := make([]string, 0, len(s.keys))
	for _, key := range s.keys {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(s.values[key]))
	}

	return strings.Join(parts, "&")
}

// Mode returns the view mode, defaulting to list mode.
func (s State) Mode() string {
	if s.Get(KeyMode) == ModeMap {
		return ModeMap
	}

	return ModeList
}

// Page returns the current page, between 1 and MaxPage.
func (s State) Page() int {
	page, err := strconv.Atoi(s.Get(KeyPage))
	if err != nil || page < 1 {
		return 1
	}

	return min(page, MaxPage)
}

// Results returns the page size, at most MaxResults.
func (s State) Results() int {
	results, err := strconv.Atoi(s.Get(KeyResults))
	if err != nil || results < 1 {
		return DefaultResults
	}

	return min(results, MaxResults)
}

// SetPage moves the state to page.
func (s *State) SetPage(page int) {
	s.Set(KeyPage, strconv.Itoa(page))
}

// SetResults changes the page size.
func (s *State) SetResults(results int) {
	s.Set(KeyResults, strconv.Itoa(results))
}

// ResetPage jumps back to the first page, as happens on every new search.
func (s *State) ResetPage() {
	s.SetPage(1)
}

// JumpTo moves to page, never past lastPage.
func (s *State) JumpTo(page, lastPage int) {
	if lastPage > 0 && page > lastPage {
		page = lastPage
	}
	if page < 1 {
		page = 1
	}
	s.SetPage(page)
}

// Sanitize escapes markup in a submitted value and trims surrounding whitespace.
func Sanitize(value string) string {
	return strings.TrimSpace(html.EscapeString(value))
}
