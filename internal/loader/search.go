package loader

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"github.com/FocuswithJustin/bibleloader/core/assets"
	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/internal/logging"
)

// searchIndex is the materialized search entry collection with each text
// pre-lowered for matching.
type searchIndex struct {
	entries []bible.SearchEntry
	lower   []string
}

func newSearchIndex(idx *bible.SearchIndex) *searchIndex {
	s := &searchIndex{
		entries: idx.Entries,
		lower:   make([]string, len(idx.Entries)),
	}
	for i, e := range idx.Entries {
		s.lower[i] = strings.ToLower(e.Text)
	}
	return s
}

// Search returns up to limit verses whose text contains query, ignoring case.
// Entries are scanned in index order and the scan stops at limit matches.
// Matches at the start of the text score ScorePrefix, others ScoreContains;
// results are stably sorted by score, so equal scores keep index order.
func (l *Loader) Search(query string, limit int) []bible.SearchResult {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil
	}
	idx := l.searchEntries()
	if idx == nil {
		return nil
	}

	start := time.Now()
	q := strings.ToLower(query)
	var results []bible.SearchResult
	for i, text := range idx.lower {
		pos := strings.Index(text, q)
		if pos < 0 {
			continue
		}
		score := bible.ScoreContains
		if pos == 0 {
			score = bible.ScorePrefix
		}
		e := idx.entries[i]
		results = append(results, bible.SearchResult{
			Book:    e.Book,
			Chapter: e.Chapter,
			Verse:   e.Verse,
			Text:    e.Text,
			Score:   score,
		})
		if len(results) >= limit {
			break
		}
	}

	slices.SortStableFunc(results, func(a, b bible.SearchResult) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return 0
	})

	l.metrics.ObserveSearch(l.id, len(results), time.Since(start))
	return results
}

// IsSearchReady reports whether the search entries have been materialized.
func (l *Loader) IsSearchReady() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.search != nil
}

// searchEntries returns the search entry collection, building it on first
// use.
func (l *Loader) searchEntries() *searchIndex {
	if !l.ensureLoaded() {
		return nil
	}
	l.mu.RLock()
	idx := l.search
	l.mu.RUnlock()
	if idx != nil {
		return idx
	}

	v, _, _ := l.group.Do("search", func() (any, error) {
		return l.buildSearch(), nil
	})
	idx, _ = v.(*searchIndex)
	return idx
}

func (l *Loader) buildSearch() *searchIndex {
	l.mu.RLock()
	idx, c := l.search, l.corpus
	l.mu.RUnlock()
	if idx != nil {
		return idx
	}
	if c == nil {
		return nil
	}

	var raw *bible.SearchIndex
	data, err := l.src.Read(l.id, assets.KindIndex)
	if err == nil {
		raw, err = bible.DecodeIndex(bytes.NewReader(data))
	}
	if err != nil {
		logging.TranslationError(l.logger, l.id, "read search index", err, "fallback", "corpus")
		raw = bible.BuildIndex(c)
	}
	idx = newSearchIndex(raw)

	l.mu.Lock()
	// Only install if the corpus we indexed is still the loaded one.
	if l.corpus == c {
		l.search = idx
	}
	l.mu.Unlock()

	logging.TranslationEvent(l.logger, "search_ready", l.id, "entries", len(idx.entries))
	return idx
}
