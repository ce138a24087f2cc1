package assets

import (
	"embed"
	"io/fs"
	"sync"
)

// data holds the assets compiled into the binary. Regenerate them with
// `bibleloader build json <source> --out core/assets/data`.
//
//go:embed data
var data embed.FS

var embedded struct {
	once sync.Once
	src  *FSSource
	err  error
}

// Embedded returns the Source over the assets compiled into the binary.
func Embedded() (*FSSource, error) {
	embedded.once.Do(func() {
		sub, err := fs.Sub(data, "data")
		if err != nil {
			embedded.err = err
			return
		}
		embedded.src, embedded.err = NewFSSource(sub)
	})
	return embedded.src, embedded.err
}
