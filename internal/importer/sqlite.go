package importer

import (
	"database/sql"
	"os"

	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
	"github.com/FocuswithJustin/bibleloader/core/sqlite"
)

// FromSQLite imports a MySword or e-Sword Bible database. Both store verses
// as (Book, Chapter, Verse, Scripture) rows, MySword in a Books table and
// e-Sword in a Bible table. Metadata comes from MySword's info table or
// e-Sword's Details table when present.
func FromSQLite(path string, meta Meta) (*bible.Corpus, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewIO("stat", path, err)
	}
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer db.Close()

	table := ""
	for _, name := range []string{"Bible", "Books"} {
		ok, err := sqlite.TableExists(db, name)
		if err != nil {
			return nil, errors.NewIO("inspect", path, err)
		}
		if ok {
			table = name
			break
		}
	}
	if table == "" {
		return nil, errors.NewParse("sqlite", path, "no Bible or Books table")
	}

	b := newBuilder()
	if err := readSQLiteMeta(db, b.corpus); err != nil {
		return nil, errors.NewIO("read metadata from", path, err)
	}

	rows, err := db.Query("SELECT Book, Chapter, Verse, Scripture FROM " + table + " ORDER BY Book, Chapter, Verse")
	if err != nil {
		return nil, errors.NewIO("query", path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var book, chapter, verse int
		var scripture sql.NullString
		if err := rows.Scan(&book, &chapter, &verse, &scripture); err != nil {
			return nil, errors.NewParse("sqlite", path, err.Error())
		}
		b.add(book, chapter, verse, stripMarkup(scripture.String))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("read", path, err)
	}

	return finish(b.corpus, meta, path)
}

func readSQLiteMeta(db *sql.DB, c *bible.Corpus) error {
	if ok, err := sqlite.TableExists(db, "info"); err != nil {
		return err
	} else if ok {
		rows, err := db.Query("SELECT name, value FROM info")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name, value sql.NullString
			if err := rows.Scan(&name, &value); err != nil {
				return err
			}
			switch name.String {
			case "abbreviation":
				c.Version = value.String
			case "description":
				c.Name = value.String
			case "language":
				c.Language = value.String
			}
		}
		return rows.Err()
	}

	if ok, err := sqlite.TableExists(db, "Details"); err != nil || !ok {
		return err
	}
	var title, abbrev sql.NullString
	err := db.QueryRow("SELECT Title, Abbreviation FROM Details LIMIT 1").Scan(&title, &abbrev)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	c.Name = title.String
	c.Version = abbrev.String
	return nil
}
