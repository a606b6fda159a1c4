package session

import (
	"slices"
	"strings"
	"sync"
)

// Watchlist is an ordered set of titles. Insertion order is kept and entries
// are never removed automatically.
type Watchlist struct {
	mu     sync.RWMutex
	titles []string
	seen   map[string]struct{}
}

// Add appends title unless it is already present. It reports whether the
// watchlist changed; a duplicate is not an error.
func (w *Watchlist) Add(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen == nil {
		w.seen = make(map[string]struct{})
	}
	if _, ok := w.seen[title]; ok {
		return false
	}
	w.seen[title] = struct{}{}
	w.titles = append(w.titles, title)
	return true
}

// Contents returns a copy of the titles in insertion order.
func (w *Watchlist) Contents() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.titles)
}

// Contains reports whether title has been added.
func (w *Watchlist) Contains(title string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.seen[strings.TrimSpace(title)]
	return ok
}

// Len returns the number of titles.
func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.titles)
}
