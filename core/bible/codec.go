package bible

import (
	"bufio"
	"encoding/json"
	"io"
	"slices"

	"github.com/FocuswithJustin/bibleloader/core/errors"
)

// DecodeCorpus reads a minified corpus document.
func DecodeCorpus(r io.Reader) (*Corpus, error) {
	var c Corpus
	if err := json.NewDecoder(bufio.NewReader(r)).Decode(&c); err != nil {
		return nil, &errors.ParseError{Format: "corpus", Message: err.Error(), Err: err}
	}
	return &c, nil
}

// EncodeCorpus writes c as a minified corpus document.
func EncodeCorpus(w io.Writer, c *Corpus) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "encode corpus")
	}
	return bw.Flush()
}

// DecodeIndex reads a flattened search index document.
func DecodeIndex(r io.Reader) (*SearchIndex, error) {
	var idx SearchIndex
	if err := json.NewDecoder(bufio.NewReader(r)).Decode(&idx); err != nil {
		return nil, &errors.ParseError{Format: "index", Message: err.Error(), Err: err}
	}
	return &idx, nil
}

// EncodeIndex writes idx as a search index document.
func EncodeIndex(w io.Writer, idx *SearchIndex) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(idx); err != nil {
		return errors.Wrap(err, "encode index")
	}
	return bw.Flush()
}

// BuildIndex flattens c into search entries in corpus order.
func BuildIndex(c *Corpus) *SearchIndex {
	idx := &SearchIndex{Entries: make([]SearchEntry, 0, c.VerseCount())}
	for _, b := range c.Books {
		for _, ch := range b.Chapters {
			for _, v := range ch.Verses {
				idx.Entries = append(idx.Entries, SearchEntry{
					Book:    b.Number,
					Chapter: ch.Number,
					Verse:   v.Number,
					Text:    v.Text,
				})
			}
		}
	}
	return idx
}

// SortCorpus orders books, chapters and verses by number, keeping the
// relative order of equal numbers.
func SortCorpus(c *Corpus) {
	slices.SortStableFunc(c.Books, func(a, b Book) int { return a.Number - b.Number })
	for i := range c.Books {
		chapters := c.Books[i].Chapters
		slices.SortStableFunc(chapters, func(a, b Chapter) int { return a.Number - b.Number })
		for j := range chapters {
			slices.SortStableFunc(chapters[j].Verses, func(a, b Verse) int { return a.Number - b.Number })
		}
	}
}
