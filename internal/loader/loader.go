// Package loader provides per-translation loaders over bundled corpus assets
// and the registry that keeps at most one loader alive per translation.
//
// Read methods never return errors. Unknown books, chapters and verses are
// reported as absent values; a failed load is logged and reads behave as if
// the translation were empty.
package loader

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/FocuswithJustin/bibleloader/core/assets"
	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
	"github.com/FocuswithJustin/bibleloader/internal/logging"
	"github.com/FocuswithJustin/bibleloader/internal/metrics"
)

type chapterKey struct {
	book    int
	chapter int
}

// Loader gives read access to one translation's text.
type Loader struct {
	id         string
	instanceID uuid.UUID
	src        assets.Source
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// notify is called after the loaded state changes.
	notify func()

	group   singleflight.Group
	loading atomic.Bool

	mu          sync.RWMutex
	corpus      *bible.Corpus
	books       map[int]*bible.Book
	chapters    map[chapterKey]*bible.Chapter
	fingerprint string
	search      *searchIndex
}

// New returns an unloaded Loader for id. It fails with a ConfigError when src
// has no asset pair for id.
func New(id string, src assets.Source, opts ...Option) (*Loader, error) {
	o := buildOptions(opts)
	return newLoader(id, src, o)
}

func newLoader(id string, src assets.Source, o options) (*Loader, error) {
	id = bible.NormalizeID(id)
	if !src.Has(id) {
		return nil, errors.NewConfig(id, "no bundled assets")
	}
	instanceID := uuid.New()
	return &Loader{
		id:         id,
		instanceID: instanceID,
		src:        src,
		logger:     o.logger.With("translation", id, "instance", instanceID.String()),
		metrics:    o.metrics,
	}, nil
}

// ID returns the normalized translation identifier.
func (l *Loader) ID() string { return l.id }

// InstanceID identifies this loader instance. A loader created after an
// unload has a different InstanceID.
func (l *Loader) InstanceID() uuid.UUID { return l.instanceID }

// IsLoaded reports whether the corpus is loaded.
func (l *Loader) IsLoaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.corpus != nil
}

// IsLoading reports whether a load is in progress.
func (l *Loader) IsLoading() bool {
	return l.loading.Load()
}

// Load materializes the corpus and builds the lookup maps. It is a no-op when
// already loaded, and concurrent callers share a single build.
func (l *Loader) Load() error {
	if l.IsLoaded() {
		return nil
	}
	_, err, _ := l.group.Do("load", l.build)
	return err
}

// LoadContext is Load for callers that want to stop waiting. A cancelled
// caller gets ctx.Err(); the build itself still completes for other callers.
func (l *Loader) LoadContext(ctx context.Context) error {
	if l.IsLoaded() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case res := <-l.group.DoChan("load", l.build):
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) build() (any, error) {
	if l.IsLoaded() {
		return nil, nil
	}
	l.loading.Store(true)
	defer l.loading.Store(false)

	start := time.Now()
	c, fingerprint, err := l.readCorpus()
	l.metrics.ObserveLoad(l.id, time.Since(start), err)
	if err != nil {
		logging.TranslationError(l.logger, l.id, "load", err)
		return nil, err
	}

	books := make(map[int]*bible.Book, len(c.Books))
	chapters := make(map[chapterKey]*bible.Chapter)
	for i := range c.Books {
		b := &c.Books[i]
		books[b.Number] = b
		for j := range b.Chapters {
			ch := &b.Chapters[j]
			chapters[chapterKey{b.Number, ch.Number}] = ch
		}
	}

	l.mu.Lock()
	l.corpus = c
	l.books = books
	l.chapters = chapters
	l.fingerprint = fingerprint
	l.mu.Unlock()

	logging.TranslationEvent(l.logger, "loaded", l.id,
		"books", len(c.Books),
		"chapters", len(chapters),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if l.notify != nil {
		l.notify()
	}
	return nil, nil
}

func (l *Loader) readCorpus() (*bible.Corpus, string, error) {
	data, err := l.src.Read(l.id, assets.KindCorpus)
	if err != nil {
		return nil, "", err
	}
	c, err := bible.DecodeCorpus(bytes.NewReader(data))
	if err != nil {
		return nil, "", &errors.ConfigError{Translation: l.id, Reason: "corpus asset", Err: err}
	}
	if err := bible.Validate(c); err != nil {
		return nil, "", &errors.ConfigError{Translation: l.id, Reason: "corpus asset", Err: err}
	}
	return c, assets.Fingerprint(data), nil
}

// ensureLoaded loads on demand and reports whether data is available.
func (l *Loader) ensureLoaded() bool {
	if l.IsLoaded() {
		return true
	}
	// build already logged the failure.
	return l.Load() == nil
}

// Books lists every book in corpus order.
func (l *Loader) Books() []bible.BookInfo {
	if !l.ensureLoaded() {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.corpus == nil {
		return nil
	}

	out := make([]bible.BookInfo, 0, len(l.corpus.Books))
	for i := range l.corpus.Books {
		out = append(out, l.corpus.Books[i].Info())
	}
	return out
}

// Book returns the book with the given number.
func (l *Loader) Book(number int) (bible.BookInfo, bool) {
	if !l.ensureLoaded() {
		return bible.BookInfo{}, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.books[number]
	if !ok {
		return bible.BookInfo{}, false
	}
	return b.Info(), true
}

// Chapters returns the chapter numbers of a book in order, or nil if the
// book does not exist. Numbering need not be contiguous.
func (l *Loader) Chapters(book int) []int {
	if !l.ensureLoaded() {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.books[book]
	if !ok {
		return nil
	}
	out := make([]int, len(b.Chapters))
	for i, ch := range b.Chapters {
		out[i] = ch.Number
	}
	return out
}

// Chapter returns the verses of a chapter in order, or nil if the book or
// chapter does not exist.
func (l *Loader) Chapter(book, chapter int) []bible.VerseText {
	ch := l.lookupChapter(book, chapter)
	if ch == nil {
		return nil
	}
	out := make([]bible.VerseText, len(ch.Verses))
	for i, v := range ch.Verses {
		out[i] = bible.VerseText{Book: book, Chapter: chapter, Verse: v.Number, Text: v.Text}
	}
	return out
}

// Verse returns the text of a single verse.
func (l *Loader) Verse(book, chapter, verse int) (string, bool) {
	ch := l.lookupChapter(book, chapter)
	if ch == nil {
		return "", false
	}
	for _, v := range ch.Verses {
		if v.Number == verse {
			return v.Text, true
		}
	}
	return "", false
}

// VerseCount returns the number of verses in a chapter, or 0 if it does not
// exist.
func (l *Loader) VerseCount(book, chapter int) int {
	ch := l.lookupChapter(book, chapter)
	if ch == nil {
		return 0
	}
	return len(ch.Verses)
}

// Passage returns the verses covered by ref. Whole-book references return
// nil; use Books and Chapter to page through a book.
func (l *Loader) Passage(ref *bible.Ref) []bible.VerseText {
	if ref == nil || ref.Chapter == 0 {
		return nil
	}
	ch := l.lookupChapter(ref.Book, ref.Chapter)
	if ch == nil {
		return nil
	}
	var out []bible.VerseText
	for _, v := range ch.Verses {
		if ref.Contains(ref.Chapter, v.Number) {
			out = append(out, bible.VerseText{Book: ref.Book, Chapter: ref.Chapter, Verse: v.Number, Text: v.Text})
		}
	}
	return out
}

// lookupChapter returns the chapter from the lookup map. Chapters are never
// mutated after load, so the pointer stays valid after the lock is released.
func (l *Loader) lookupChapter(book, chapter int) *bible.Chapter {
	if !l.ensureLoaded() {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chapters[chapterKey{book, chapter}]
}

// Metadata returns the corpus version, name, language and fingerprint.
func (l *Loader) Metadata() (bible.Metadata, bool) {
	if !l.ensureLoaded() {
		return bible.Metadata{}, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.corpus == nil {
		return bible.Metadata{}, false
	}
	md := l.corpus.Metadata()
	md.Fingerprint = l.fingerprint
	return md, true
}

// Unload drops the corpus, the lookup maps and the search entries. The next
// read loads again.
func (l *Loader) Unload() {
	l.mu.Lock()
	wasLoaded := l.corpus != nil
	l.corpus = nil
	l.books = nil
	l.chapters = nil
	l.fingerprint = ""
	l.search = nil
	l.mu.Unlock()

	if wasLoaded {
		logging.TranslationEvent(l.logger, "unloaded", l.id)
		if l.notify != nil {
			l.notify()
		}
	}
}
