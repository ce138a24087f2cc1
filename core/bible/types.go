// Package bible defines the corpus data model, its compact wire format, and
// scripture reference parsing.
package bible

import "strings"

// types.go - corpus and projection types shared by the loader, the asset
// pipeline and the HTTP API.

// TranslationID is the short code selecting a bundled translation (e.g., "KJV").
type TranslationID = string

// NormalizeID trims and upper-cases a translation identifier so that "kjv"
// and " KJV " select the same assets.
func NormalizeID(id string) TranslationID {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Corpus is one translation's full hierarchical text.
// A Corpus is treated as immutable once decoded.
type Corpus struct {
	// Version is the translation's version code (e.g., "KJV").
	Version string `json:"v"`

	// Name is the display name (e.g., "King James Version").
	Name string `json:"n"`

	// Language is the BCP-47 language tag (e.g., "en").
	Language string `json:"l"`

	// Books are the books in canonical order.
	Books []Book `json:"b"`
}

// Book is a single book of a corpus. Numbers are unique within a corpus but
// need not be contiguous.
type Book struct {
	Number   int       `json:"n"`
	Name     string    `json:"nm"`
	Chapters []Chapter `json:"c"`
}

// Chapter is a numbered chapter within a book.
type Chapter struct {
	Number int     `json:"n"`
	Verses []Verse `json:"v"`
}

// Verse is a numbered verse within a chapter.
type Verse struct {
	Number int    `json:"n"`
	Text   string `json:"t"`
}

// SearchEntry is one flattened verse used for linear-scan search.
type SearchEntry struct {
	Book    int    `json:"b"`
	Chapter int    `json:"c"`
	Verse   int    `json:"v"`
	Text    string `json:"t"`
}

// SearchIndex is the flattened search asset for one translation.
type SearchIndex struct {
	Entries []SearchEntry `json:"entries"`
}

// BookInfo is the projection of a Book returned to callers.
type BookInfo struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	ChapterCount int    `json:"chapter_count"`
}

// VerseText is the projection of a Verse with its full location.
type VerseText struct {
	Book    int    `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// Metadata describes a loaded corpus.
type Metadata struct {
	Version  string `json:"version"`
	Name     string `json:"name"`
	Language string `json:"language"`

	// Fingerprint is the hex BLAKE3 digest of the corpus asset.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Search scores. Lower is more relevant.
const (
	ScorePrefix   = 0.1
	ScoreContains = 0.5
)

// SearchResult is a search hit.
type SearchResult struct {
	Book    int     `json:"book"`
	Chapter int     `json:"chapter"`
	Verse   int     `json:"verse"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// Info returns the BookInfo projection of b.
func (b *Book) Info() BookInfo {
	return BookInfo{
		Number:       b.Number,
		Name:         b.Name,
		ChapterCount: len(b.Chapters),
	}
}

// VerseCount returns the number of verses in the corpus.
func (c *Corpus) VerseCount() int {
	n := 0
	for i := range c.Books {
		for j := range c.Books[i].Chapters {
			n += len(c.Books[i].Chapters[j].Verses)
		}
	}
	return n
}

// Metadata returns the corpus metadata without a fingerprint.
func (c *Corpus) Metadata() Metadata {
	return Metadata{
		Version:  c.Version,
		Name:     c.Name,
		Language: c.Language,
	}
}
