package bible

import (
	"fmt"

	"github.com/FocuswithJustin/bibleloader/core/errors"
)

// Validate checks the structural invariants of a corpus: book numbers are
// unique and positive, chapter numbers are unique within a book, and verse
// numbers are unique within a chapter.
func Validate(c *Corpus) error {
	if c == nil {
		return errors.NewValidation("", "nil corpus")
	}
	if c.Version == "" {
		return errors.NewValidation("v", "version code is required")
	}
	if len(c.Books) == 0 {
		return errors.NewValidation("b", "corpus has no books")
	}

	books := make(map[int]bool, len(c.Books))
	for i, b := range c.Books {
		field := fmt.Sprintf("b[%d]", i)
		if b.Number <= 0 {
			return errors.NewValidation(field, fmt.Sprintf("invalid book number %d", b.Number))
		}
		if books[b.Number] {
			return errors.NewValidation(field, fmt.Sprintf("duplicate book number %d", b.Number))
		}
		books[b.Number] = true

		chapters := make(map[int]bool, len(b.Chapters))
		for j, ch := range b.Chapters {
			field := fmt.Sprintf("b[%d].c[%d]", i, j)
			if ch.Number <= 0 {
				return errors.NewValidation(field, fmt.Sprintf("invalid chapter number %d in book %d", ch.Number, b.Number))
			}
			if chapters[ch.Number] {
				return errors.NewValidation(field, fmt.Sprintf("duplicate chapter %d in book %d", ch.Number, b.Number))
			}
			chapters[ch.Number] = true

			verses := make(map[int]bool, len(ch.Verses))
			for k, v := range ch.Verses {
				if v.Number <= 0 || verses[v.Number] {
					return errors.NewValidation(
						fmt.Sprintf("b[%d].c[%d].v[%d]", i, j, k),
						fmt.Sprintf("invalid or duplicate verse %d in %d:%d", v.Number, b.Number, ch.Number),
					)
				}
				verses[v.Number] = true
			}
		}
	}
	return nil
}
