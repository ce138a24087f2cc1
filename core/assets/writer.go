package assets

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
)

// Writer writes translation asset pairs and keeps the directory manifest
// up to date.
type Writer struct {
	dir string

	// Compress controls whether assets are written xz-compressed.
	Compress bool
}

// NewWriter returns a Writer for dir with compression enabled.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, Compress: true}
}

// Write stores the corpus and index for c.Version and records them, with
// BLAKE3 checksums, in the manifest. An existing entry for the same
// translation is replaced.
func (w *Writer) Write(c *bible.Corpus, idx *bible.SearchIndex) (Entry, error) {
	if err := bible.Validate(c); err != nil {
		return Entry{}, err
	}
	if idx == nil {
		idx = bible.BuildIndex(c)
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return Entry{}, errors.NewIO("create", w.dir, err)
	}

	id := bible.NormalizeID(c.Version)
	base := strings.ToLower(id)
	ext := ".json"
	if w.Compress {
		ext += ".xz"
	}
	entry := Entry{
		ID:       id,
		Name:     c.Name,
		Language: c.Language,
		Corpus:   base + ".corpus" + ext,
		Index:    base + ".index" + ext,
	}

	var buf bytes.Buffer
	if err := bible.EncodeCorpus(&buf, c); err != nil {
		return Entry{}, err
	}
	sum, err := w.writeAsset(entry.Corpus, buf.Bytes())
	if err != nil {
		return Entry{}, err
	}
	entry.CorpusBLAKE3 = sum

	buf.Reset()
	if err := bible.EncodeIndex(&buf, idx); err != nil {
		return Entry{}, err
	}
	if sum, err = w.writeAsset(entry.Index, buf.Bytes()); err != nil {
		return Entry{}, err
	}
	entry.IndexBLAKE3 = sum

	if err := w.updateManifest(entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// writeAsset stores one file and returns the BLAKE3 digest of the stored bytes.
func (w *Writer) writeAsset(name string, data []byte) (string, error) {
	if w.Compress {
		var buf bytes.Buffer
		xzw, err := xz.NewWriter(&buf)
		if err != nil {
			return "", errors.Wrap(err, "xz writer")
		}
		if _, err := xzw.Write(data); err != nil {
			return "", errors.Wrap(err, "xz write")
		}
		if err := xzw.Close(); err != nil {
			return "", errors.Wrap(err, "xz close")
		}
		data = buf.Bytes()
	}
	if err := writeFileAtomic(filepath.Join(w.dir, name), data); err != nil {
		return "", err
	}
	return Fingerprint(data), nil
}

// updateManifest merges entry into the directory manifest.
func (w *Writer) updateManifest(entry Entry) error {
	path := filepath.Join(w.dir, ManifestFile)

	var m Manifest
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &m); err != nil {
			return errors.NewParse("manifest", path, err.Error())
		}
	} else if !os.IsNotExist(err) {
		return errors.NewIO("read", path, err)
	}

	m.Translations = slices.DeleteFunc(m.Translations, func(e Entry) bool {
		return bible.NormalizeID(e.ID) == entry.ID
	})
	m.Translations = append(m.Translations, entry)
	slices.SortFunc(m.Translations, func(a, b Entry) int { return strings.Compare(a.ID, b.ID) })

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".asset-*")
	if err != nil {
		return errors.NewIO("create temp file in", dir, err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return errors.NewIO("write", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("close", tempPath, err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("chmod", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("rename", path, err)
	}
	return nil
}
