// Package assets provides access to the bundled corpus and search index
// assets for each supported translation.
//
// An asset directory contains a manifest.json and, per translation, a
// minified corpus document and a flattened search index document. Files
// ending in .xz are decompressed on read. When the manifest records a BLAKE3
// checksum for a file, the stored bytes are verified before use.
package assets

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ManifestFile is the name of the manifest inside an asset directory.
const ManifestFile = "manifest.json"

// Kind selects one of the two assets of a translation.
type Kind int

const (
	// KindCorpus is the minified corpus document.
	KindCorpus Kind = iota
	// KindIndex is the flattened search index document.
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindCorpus:
		return "corpus"
	case KindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Entry describes the asset pair of one translation.
type Entry struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Language string `json:"language,omitempty"`

	// Corpus and Index are file names relative to the asset directory.
	Corpus string `json:"corpus"`
	Index  string `json:"index"`

	// CorpusBLAKE3 and IndexBLAKE3 are optional hex digests of the stored files.
	CorpusBLAKE3 string `json:"corpus_blake3,omitempty"`
	IndexBLAKE3  string `json:"index_blake3,omitempty"`
}

// file returns the file name and expected checksum for kind.
func (e Entry) file(kind Kind) (name, checksum string) {
	if kind == KindIndex {
		return e.Index, e.IndexBLAKE3
	}
	return e.Corpus, e.CorpusBLAKE3
}

// Manifest lists the translations available in an asset directory.
type Manifest struct {
	Translations []Entry `json:"translations"`
}

// Source provides translation assets to loaders.
type Source interface {
	// IDs returns the available translation identifiers, sorted.
	IDs() []string

	// Has reports whether a complete asset pair exists for id.
	Has(id string) bool

	// Entry returns the manifest entry for id.
	Entry(id string) (Entry, bool)

	// Read returns the decompressed contents of one asset. A missing
	// translation or file is a configuration error.
	Read(id string, kind Kind) ([]byte, error)
}

// Fingerprint returns the hex BLAKE3 digest of data.
func Fingerprint(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
