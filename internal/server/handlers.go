package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/cache"
	"github.com/FocuswithJustin/bibleloader/core/errors"
	"github.com/FocuswithJustin/bibleloader/internal/loader"
	"github.com/FocuswithJustin/bibleloader/internal/logging"
)

// HealthInfo is the health check response.
type HealthInfo struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Uptime    string   `json:"uptime"`
	Available int      `json:"available"`
	Loaded    []string `json:"loaded"`
}

// PreloadRequest is the body of POST /api/translations/preload. No IDs means
// every available translation.
type PreloadRequest struct {
	IDs []string `json:"ids"`
}

// ChapterResponse is a chapter with its location.
type ChapterResponse struct {
	Book    bible.BookInfo    `json:"book"`
	Chapter int               `json:"chapter"`
	Verses  []bible.VerseText `json:"verses"`
}

// PassageResponse is a resolved reference and its verses.
type PassageResponse struct {
	Ref    string            `json:"ref"`
	Verses []bible.VerseText `json:"verses"`
}

// SearchResponse is a search and its ranked results.
type SearchResponse struct {
	Query   string               `json:"query"`
	Limit   int                  `json:"limit"`
	Cached  bool                 `json:"cached"`
	Results []bible.SearchResult `json:"results"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, HealthInfo{
		Status:    "ok",
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Available: len(s.registry.Available()),
		Loaded:    s.registry.Loaded(),
	})
}

func (s *Server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	status := s.registry.Status()
	respondList(w, status, len(status))
}

func (s *Server) handlePreload(w http.ResponseWriter, r *http.Request) {
	var req PreloadRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	}
	ids := req.IDs
	if len(ids) == 0 {
		ids = s.registry.Available()
	}
	for _, id := range ids {
		if !s.registry.Has(id) {
			respondError(w, http.StatusNotFound, codeUnknownTranslation, "unknown translation "+strconv.Quote(id))
			return
		}
	}

	if err := s.registry.Preload(r.Context(), ids...); err != nil {
		logging.ErrorContext(r.Context(), "preload failed", "ids", ids, "error", err)
		respondError(w, http.StatusInternalServerError, codeLoadFailed, err.Error())
		return
	}
	status := s.registry.Status()
	respondList(w, status, len(status))
}

func (s *Server) handleTranslation(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loader(w, r)
	if !ok {
		return
	}
	md, ok := s.metadata(w, r, l)
	if !ok {
		return
	}
	respond(w, http.StatusOK, md)
}

func (s *Server) handleUnload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.registry.Has(id) {
		respondError(w, http.StatusNotFound, codeUnknownTranslation, "unknown translation "+strconv.Quote(id))
		return
	}
	unloaded := s.registry.Unload(id)
	dropped := 0
	if s.cache != nil {
		dropped = s.cache.InvalidateTranslation(id)
	}
	respond(w, http.StatusOK, map[string]any{
		"id":            bible.NormalizeID(id),
		"unloaded":      unloaded,
		"cache_dropped": dropped,
	})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loader(w, r)
	if !ok {
		return
	}
	if _, ok := s.metadata(w, r, l); !ok {
		return
	}
	books := l.Books()
	respondList(w, books, len(books))
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loader(w, r)
	if !ok {
		return
	}
	book, ok := bookParam(w, r)
	if !ok {
		return
	}
	if _, ok := s.metadata(w, r, l); !ok {
		return
	}
	info, ok := l.Book(book)
	if !ok {
		respondError(w, http.StatusNotFound, codeNotFound, fmt.Sprintf("book %d not found", book))
		return
	}
	respond(w, http.StatusOK, info)
}

func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loader(w, r)
	if !ok {
		return
	}
	book, ok := bookParam(w, r)
	if !ok {
		return
	}
	chapter, ok := intParam(w, r, "chapter")
	if !ok {
		return
	}
	if _, ok := s.metadata(w, r, l); !ok {
		return
	}
	info, _ := l.Book(book)
	verses := l.Chapter(book, chapter)
	if verses == nil {
		respondError(w, http.StatusNotFound, codeNotFound, fmt.Sprintf("chapter %d:%d not found", book, chapter))
		return
	}
	respond(w, http.StatusOK, ChapterResponse{Book: info, Chapter: chapter, Verses: verses})
}

func (s *Server) handleVerse(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loader(w, r)
	if !ok {
		return
	}
	book, ok := bookParam(w, r)
	if !ok {
		return
	}
	chapter, ok := intParam(w, r, "chapter")
	if !ok {
		return
	}
	verse, ok := intParam(w, r, "verse")
	if !ok {
		return
	}
	if _, ok := s.metadata(w, r, l); !ok {
		return
	}
	text, ok := l.Verse(book, chapter, verse)
	if !ok {
		respondError(w, http.StatusNotFound, codeNotFound, fmt.Sprintf("verse %d:%d:%d not found", book, chapter, verse))
		return
	}
	respond(w, http.StatusOK, bible.VerseText{Book: book, Chapter: chapter, Verse: verse, Text: text})
}

func (s *Server) handlePassage(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loader(w, r)
	if !ok {
		return
	}
	ref, err := bible.ParseRef(r.URL.Query().Get("ref"))
	if err != nil {
		respondError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if ref.Chapter == 0 {
		respondError(w, http.StatusBadRequest, codeBadRequest, "reference must name a chapter: "+ref.String())
		return
	}
	if _, ok := s.metadata(w, r, l); !ok {
		return
	}
	verses := l.Passage(ref)
	if len(verses) == 0 {
		respondError(w, http.StatusNotFound, codeNotFound, ref.String()+" not found")
		return
	}
	respond(w, http.StatusOK, PassageResponse{Ref: ref.String(), Verses: verses})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loader(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	query := q.Get("q")
	limit, ok := s.searchLimit(q.Get("limit"))
	if !ok {
		respondError(w, http.StatusBadRequest, codeBadRequest, "limit must be a positive integer")
		return
	}
	if _, ok := s.metadata(w, r, l); !ok {
		return
	}

	key := cache.SearchKey{Translation: l.ID(), Query: query, Limit: limit}
	results, cached := s.cachedSearch(key)
	if !cached {
		results = l.Search(query, limit)
		if s.cache != nil {
			s.cache.Put(key, results)
		}
	}
	if results == nil {
		results = []bible.SearchResult{}
	}
	respond(w, http.StatusOK, SearchResponse{Query: query, Limit: limit, Cached: cached, Results: results})
}

func (s *Server) cachedSearch(key cache.SearchKey) ([]bible.SearchResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	if results, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit()
		return results, true
	}
	s.metrics.CacheMiss()
	return nil, false
}

// loader resolves the {id} parameter, writing a 404 for unknown
// translations.
func (s *Server) loader(w http.ResponseWriter, r *http.Request) (*loader.Loader, bool) {
	id := chi.URLParam(r, "id")
	l, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, errors.ErrConfig) {
			respondError(w, http.StatusNotFound, codeUnknownTranslation, "unknown translation "+strconv.Quote(id))
		} else {
			respondError(w, http.StatusInternalServerError, codeLoadFailed, err.Error())
		}
		return nil, false
	}
	return l, true
}

// metadata loads the translation if needed and sets the ETag. It writes the
// response and returns false when the load failed or the client's copy is
// current.
func (s *Server) metadata(w http.ResponseWriter, r *http.Request, l *loader.Loader) (bible.Metadata, bool) {
	md, ok := l.Metadata()
	if !ok {
		respondError(w, http.StatusInternalServerError, codeLoadFailed, "translation "+l.ID()+" failed to load")
		return md, false
	}
	if md.Fingerprint == "" {
		return md, true
	}
	etag := `"` + md.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && (match == etag || match == "*") {
		w.WriteHeader(http.StatusNotModified)
		return md, false
	}
	return md, true
}

// bookParam accepts a canonical book number or a book name or abbreviation.
func bookParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "book")
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n, true
	}
	if cb, ok := bible.LookupBook(raw); ok {
		return cb.Number, true
	}
	respondError(w, http.StatusBadRequest, codeBadRequest, "invalid book "+strconv.Quote(raw))
	return 0, false
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		respondError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
		return 0, false
	}
	return n, true
}
