package catalog

import "sync"

// Loader guards the one-time catalog build so concurrent first-access
// attempts converge on a single build. After the first Get the catalog
// is frozen and shared by all readers.
type Loader struct {
	source  func() ([]byte, error)
	once    sync.Once
	catalog *Catalog
	err     error
}

// NewLoader creates a loader around a document source. The source is
// invoked at most once, on first Get.
func NewLoader(source func() ([]byte, error)) *Loader {
	return &Loader{source: source}
}

// Get builds the catalog on first call and returns the cached result on
// every subsequent call.
func (l *Loader) Get() (*Catalog, error) {
	l.once.Do(func() {
		data, err := l.source()
		if err != nil {
			l.err = err
			return
		}
		l.catalog, l.err = Load(data)
	})
	return l.catalog, l.err
}
