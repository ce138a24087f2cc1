package assets

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
)

// FSSource is a Source backed by an fs.FS holding a manifest and asset files.
type FSSource struct {
	fsys    fs.FS
	entries map[string]Entry
	ids     []string
}

// NewFSSource reads the manifest from fsys. A missing or malformed manifest
// is a configuration error.
func NewFSSource(fsys fs.FS) (*FSSource, error) {
	data, err := fs.ReadFile(fsys, ManifestFile)
	if err != nil {
		return nil, &errors.ConfigError{Reason: "read asset manifest", Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &errors.ConfigError{
			Reason: "decode asset manifest",
			Err:    errors.NewParse("manifest", ManifestFile, err.Error()),
		}
	}

	s := &FSSource{
		fsys:    fsys,
		entries: make(map[string]Entry, len(m.Translations)),
	}
	for _, e := range m.Translations {
		id := bible.NormalizeID(e.ID)
		if id == "" {
			return nil, errors.NewConfig("", "manifest entry without id")
		}
		if e.Corpus == "" || e.Index == "" {
			return nil, errors.NewConfig(id, "manifest entry must name both corpus and index files")
		}
		if _, dup := s.entries[id]; dup {
			return nil, errors.NewConfig(id, "duplicate manifest entry")
		}
		e.ID = id
		s.entries[id] = e
		s.ids = append(s.ids, id)
	}
	slices.Sort(s.ids)
	return s, nil
}

// Dir returns a Source over an asset directory on disk.
func Dir(path string) (*FSSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &errors.ConfigError{Reason: "asset directory", Err: errors.NewIO("stat", path, err)}
	}
	if !info.IsDir() {
		return nil, errors.NewConfig("", "asset path is not a directory: "+path)
	}
	return NewFSSource(os.DirFS(path))
}

// IDs implements Source.
func (s *FSSource) IDs() []string {
	return slices.Clone(s.ids)
}

// Has implements Source.
func (s *FSSource) Has(id string) bool {
	_, ok := s.entries[bible.NormalizeID(id)]
	return ok
}

// Entry implements Source.
func (s *FSSource) Entry(id string) (Entry, bool) {
	e, ok := s.entries[bible.NormalizeID(id)]
	return e, ok
}

// Read implements Source.
func (s *FSSource) Read(id string, kind Kind) ([]byte, error) {
	id = bible.NormalizeID(id)
	e, ok := s.entries[id]
	if !ok {
		return nil, errors.NewConfig(id, "no bundled assets")
	}

	name, checksum := e.file(kind)
	raw, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, &errors.ConfigError{
			Translation: id,
			Reason:      kind.String() + " asset",
			Err:         errors.NewIO("read", name, err),
		}
	}

	if checksum != "" {
		if got := Fingerprint(raw); !strings.EqualFold(got, checksum) {
			return nil, errors.NewConfig(id, kind.String()+" asset checksum mismatch for "+name)
		}
	}

	if !strings.HasSuffix(name, ".xz") {
		return raw, nil
	}
	data, err := decompress(raw)
	if err != nil {
		return nil, &errors.ConfigError{
			Translation: id,
			Reason:      kind.String() + " asset",
			Err:         errors.Wrapf(err, "decompress %s", name),
		}
	}
	return data, nil
}

// decompress inflates an xz stream.
func decompress(raw []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "xz reader")
	}
	return io.ReadAll(r)
}
