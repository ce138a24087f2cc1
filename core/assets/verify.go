package assets

import (
	"bytes"
	"fmt"

	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
)

// Report summarizes a verified asset pair.
type Report struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Books        int    `json:"books"`
	Verses       int    `json:"verses"`
	IndexEntries int    `json:"index_entries"`
	Fingerprint  string `json:"fingerprint"`
}

// Verify reads both assets of id, checks their checksums, decodes them,
// validates the corpus invariants and checks that the index has one entry
// per verse.
func Verify(src Source, id string) (Report, error) {
	id = bible.NormalizeID(id)
	corpusData, err := src.Read(id, KindCorpus)
	if err != nil {
		return Report{}, err
	}
	c, err := bible.DecodeCorpus(bytes.NewReader(corpusData))
	if err != nil {
		return Report{}, &errors.ConfigError{Translation: id, Reason: "corpus asset", Err: err}
	}
	if err := bible.Validate(c); err != nil {
		return Report{}, &errors.ConfigError{Translation: id, Reason: "corpus asset", Err: err}
	}

	indexData, err := src.Read(id, KindIndex)
	if err != nil {
		return Report{}, err
	}
	idx, err := bible.DecodeIndex(bytes.NewReader(indexData))
	if err != nil {
		return Report{}, &errors.ConfigError{Translation: id, Reason: "index asset", Err: err}
	}

	r := Report{
		ID:           id,
		Name:         c.Name,
		Books:        len(c.Books),
		Verses:       c.VerseCount(),
		IndexEntries: len(idx.Entries),
		Fingerprint:  Fingerprint(corpusData),
	}
	if r.IndexEntries != r.Verses {
		return r, errors.NewConfig(id, fmt.Sprintf("index has %d entries for %d verses", r.IndexEntries, r.Verses))
	}
	return r, nil
}
