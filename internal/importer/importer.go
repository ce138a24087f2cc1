// Package importer converts source Bible files into the compact corpus and
// search index assets consumed by the loader.
//
// Supported sources:
//   - MySword (.mybible) and e-Sword (.bblx) SQLite databases
//   - Zefania XML
//   - verbose JSON Bibles (books → chapters → verses)
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/bibleloader/core/assets"
	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
)

// Format identifies a source file format.
type Format string

const (
	FormatSQLite  Format = "sqlite"
	FormatZefania Format = "zefania"
	FormatJSON    Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatSQLite, FormatZefania, FormatJSON}

// ParseFormat resolves a format name or common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "mysword", "mybible", "esword", "e-sword", "bblx":
		return FormatSQLite, nil
	case "zefania", "xml":
		return FormatZefania, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.NewUnsupported("format", fmt.Sprintf("%q (want one of sqlite, zefania, json)", s))
}

// Meta overrides the metadata found in the source. Empty fields keep the
// source's value.
type Meta struct {
	ID       string
	Name     string
	Language string
}

// File imports the source file at path.
func File(format Format, path string, meta Meta) (*bible.Corpus, error) {
	switch format {
	case FormatSQLite:
		return FromSQLite(path, meta)
	case FormatZefania, FormatJSON:
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewIO("open", path, err)
		}
		defer f.Close()
		if format == FormatZefania {
			return FromZefania(f, meta)
		}
		return FromJSON(f, meta)
	}
	return nil, errors.NewUnsupported("format", string(format))
}

// Build writes the corpus and its search index with w.
func Build(c *bible.Corpus, w *assets.Writer) (assets.Entry, error) {
	return w.Write(c, bible.BuildIndex(c))
}

// finish applies meta, falls back to defaults, sorts and validates.
func finish(c *bible.Corpus, meta Meta, source string) (*bible.Corpus, error) {
	if meta.ID != "" {
		c.Version = meta.ID
	}
	if meta.Name != "" {
		c.Name = meta.Name
	}
	if meta.Language != "" {
		c.Language = meta.Language
	}
	c.Version = bible.NormalizeID(c.Version)
	if c.Version == "" && source != "" {
		base := filepath.Base(source)
		c.Version = bible.NormalizeID(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	if c.Name == "" {
		c.Name = c.Version
	}

	// Drop empty verses and the chapters and books they leave empty.
	books := c.Books[:0]
	for _, b := range c.Books {
		chapters := b.Chapters[:0]
		for _, ch := range b.Chapters {
			verses := ch.Verses[:0]
			for _, v := range ch.Verses {
				if v.Text != "" {
					verses = append(verses, v)
				}
			}
			if len(verses) > 0 {
				ch.Verses = verses
				chapters = append(chapters, ch)
			}
		}
		if len(chapters) > 0 {
			b.Chapters = chapters
			books = append(books, b)
		}
	}
	c.Books = books

	bible.SortCorpus(c)
	if err := bible.Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// bookName returns the canonical English name for a book number.
func bookName(number int) string {
	if cb, ok := bible.CanonByNumber(number); ok {
		return cb.Name
	}
	return fmt.Sprintf("Book %d", number)
}

// builder accumulates flat verse rows into a corpus, keeping first-seen
// order of books and chapters.
type builder struct {
	corpus   *bible.Corpus
	books    map[int]int
	chapters map[[2]int]int
}

func newBuilder() *builder {
	return &builder{
		corpus:   &bible.Corpus{},
		books:    make(map[int]int),
		chapters: make(map[[2]int]int),
	}
}

func (b *builder) book(number int, name string) *bible.Book {
	i, ok := b.books[number]
	if !ok {
		if name == "" {
			name = bookName(number)
		}
		b.corpus.Books = append(b.corpus.Books, bible.Book{Number: number, Name: name})
		i = len(b.corpus.Books) - 1
		b.books[number] = i
	}
	return &b.corpus.Books[i]
}

func (b *builder) add(book, chapter, verse int, text string) {
	bk := b.book(book, "")
	key := [2]int{book, chapter}
	i, ok := b.chapters[key]
	if !ok {
		bk.Chapters = append(bk.Chapters, bible.Chapter{Number: chapter})
		i = len(bk.Chapters) - 1
		b.chapters[key] = i
	}
	ch := &bk.Chapters[i]
	ch.Verses = append(ch.Verses, bible.Verse{Number: verse, Text: text})
}

// footnotes matches MySword/e-Sword inline notes, <RF>...<Rf>.
var footnotes = regexp.MustCompile(`(?s)<RF[^>]*>.*?<Rf>`)

// stripMarkup removes inline notes and tags such as <FI> or <CM>, and
// collapses whitespace.
func stripMarkup(text string) string {
	text = footnotes.ReplaceAllString(text, "")
	var sb strings.Builder
	sb.Grow(len(text))
	depth := 0
	for _, r := range text {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
