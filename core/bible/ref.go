package bible

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/bibleloader/core/errors"
)

// Ref is a parsed scripture reference resolved to a canonical book number.
type Ref struct {
	// Book is the canonical book number (Genesis = 1).
	Book int `json:"book"`

	// BookName is the canonical English name (e.g., "1 John").
	BookName string `json:"book_name"`

	// Chapter is the chapter number, 0 for whole-book references.
	Chapter int `json:"chapter,omitempty"`

	// Verse is the first verse, 0 for whole-chapter references.
	Verse int `json:"verse,omitempty"`

	// VerseEnd is the last verse of a range, 0 when not a range.
	VerseEnd int `json:"verse_end,omitempty"`
}

// refGrammar is the participle grammar for human-readable references.
// Examples: "Gen 1", "John 3:16", "1 John 4:7-8", "Song of Solomon 2.1", "Ps. 23"
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Prefix     *int         `@Int?`
	Words      []string     `@Word+ "."?`
	ChapterRef *chapterPart `@@?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter  int        `@Int`
	VerseRef *versePart `( (":" | ".") @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Verse int  `@Int`
	Range *int `( "-" @Int )?`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Word", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[:.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// ParseRef parses a reference such as "John 3:16-18".
// Supported formats:
//   - "Genesis" (book only)
//   - "Gen 1" (book and chapter)
//   - "1 John 4:8" or "1John 4.8" (book, chapter, and verse)
//   - "Matt 5:3-12" (verse range)
func ParseRef(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.NewParse("reference", "", "empty reference")
	}
	// En and em dashes are common in copied references.
	s = strings.NewReplacer("–", "-", "—", "-").Replace(s)

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, errors.NewParse("reference", "", fmt.Sprintf("%q: %v", s, err))
	}

	name := strings.Join(parsed.Words, " ")
	if parsed.Prefix != nil {
		name = strconv.Itoa(*parsed.Prefix) + name
	}
	book, ok := LookupBook(name)
	if !ok {
		return nil, errors.NewParse("reference", "", fmt.Sprintf("unknown book %q", name))
	}

	ref := &Ref{Book: book.Number, BookName: book.Name}
	if parsed.ChapterRef == nil {
		return ref, nil
	}

	ref.Chapter = parsed.ChapterRef.Chapter
	if ref.Chapter <= 0 {
		return nil, errors.NewParse("reference", "", fmt.Sprintf("invalid chapter in %q", s))
	}
	if vr := parsed.ChapterRef.VerseRef; vr != nil {
		ref.Verse = vr.Verse
		if ref.Verse <= 0 {
			return nil, errors.NewParse("reference", "", fmt.Sprintf("invalid verse in %q", s))
		}
		if vr.Range != nil {
			if *vr.Range < ref.Verse {
				return nil, errors.NewParse("reference", "", fmt.Sprintf("range ends before it starts in %q", s))
			}
			if *vr.Range > ref.Verse {
				ref.VerseEnd = *vr.Range
			}
		}
	}
	return ref, nil
}

// String formats the reference as "Book C:V-E".
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.BookName)
	if r.Chapter > 0 {
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(r.Chapter))
		if r.Verse > 0 {
			sb.WriteString(":")
			sb.WriteString(strconv.Itoa(r.Verse))
			if r.VerseEnd > 0 {
				sb.WriteString("-")
				sb.WriteString(strconv.Itoa(r.VerseEnd))
			}
		}
	}
	return sb.String()
}

// IsRange returns true if this reference spans multiple verses.
func (r *Ref) IsRange() bool {
	return r.VerseEnd > r.Verse
}

// Contains reports whether the verse at chapter:verse of the same book falls
// within r.
func (r *Ref) Contains(chapter, verse int) bool {
	if r.Chapter == 0 {
		return true
	}
	if r.Chapter != chapter {
		return false
	}
	if r.Verse == 0 {
		return true
	}
	if r.IsRange() {
		return verse >= r.Verse && verse <= r.VerseEnd
	}
	return verse == r.Verse
}
