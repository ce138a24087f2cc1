package importer

import (
	"encoding/json"
	"io"

	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
)

// JSONBible is the verbose JSON Bible layout.
type JSONBible struct {
	Meta  JSONMeta   `json:"meta"`
	Books []JSONBook `json:"books"`
}

type JSONMeta struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

type JSONBook struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Order    int           `json:"order"`
	Chapters []JSONChapter `json:"chapters"`
}

type JSONChapter struct {
	Number int         `json:"number"`
	Verses []JSONVerse `json:"verses"`
}

type JSONVerse struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
	ID      string `json:"id"`
}

// FromJSON imports a verbose JSON Bible. A book's number is its canonical
// number when its id or name is a known book, otherwise its order.
func FromJSON(r io.Reader, meta Meta) (*bible.Corpus, error) {
	var jb JSONBible
	if err := json.NewDecoder(r).Decode(&jb); err != nil {
		return nil, errors.NewParse("json", "", err.Error())
	}

	c := &bible.Corpus{
		Version:  jb.Meta.ID,
		Name:     jb.Meta.Title,
		Language: jb.Meta.Language,
	}
	for _, jbook := range jb.Books {
		number := jbook.Order
		if cb, ok := bible.LookupBook(jbook.ID); ok {
			number = cb.Number
		} else if cb, ok := bible.LookupBook(jbook.Name); ok {
			number = cb.Number
		}
		name := jbook.Name
		if name == "" {
			name = bookName(number)
		}

		book := bible.Book{Number: number, Name: name}
		for _, jch := range jbook.Chapters {
			ch := bible.Chapter{Number: jch.Number}
			for _, jv := range jch.Verses {
				ch.Verses = append(ch.Verses, bible.Verse{Number: jv.Verse, Text: stripMarkup(jv.Text)})
			}
			book.Chapters = append(book.Chapters, ch)
		}
		c.Books = append(c.Books, book)
	}

	return finish(c, meta, "")
}
