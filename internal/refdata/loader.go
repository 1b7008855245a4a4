package refdata

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/pders01/newsroom/internal/debuglog"
)

//go:embed sources.tsv
var embeddedSources []byte

// Loader reads and parses the listing once per process.
type Loader struct {
	read func() ([]byte, error)

	once sync.Once
	ds   Dataset
	err  error
}

// NewLoader returns a loader for the file at path, or for the built-in
// listing when path is empty.
func NewLoader(path string) *Loader {
	if path == "" {
		return NewLoaderFunc(func() ([]byte, error) { return embeddedSources, nil })
	}
	return NewLoaderFunc(func() ([]byte, error) { return os.ReadFile(path) })
}

// NewLoaderFunc returns a loader that obtains the raw listing from read.
func NewLoaderFunc(read func() ([]byte, error)) *Loader {
	return &Loader{read: read}
}

// Load returns the parsed dataset. A read failure yields an empty dataset
// and the error; both are memoized like a successful load.
func (l *Loader) Load() (Dataset, error) {
	l.once.Do(func() {
		raw, err := l.read()
		if err != nil {
			l.err = fmt.Errorf("reading source listing: %w", err)
			l.ds = Parse("")
			debuglog.Errorf("%v", l.err)
			return
		}
		l.ds = Parse(string(raw))
		debuglog.WithFields(map[string]interface{}{
			"countries": len(l.ds.Countries),
			"sources":   len(l.ds.Sources),
		}).Infof("loaded source listing")
	})
	return l.ds, l.err
}
