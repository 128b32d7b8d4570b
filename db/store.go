// Process-wide registry of open timeline readers, one per storage root.
//
// The registry exists so that the daemon and the CLI verbs share a single TimelineReader per root
// rather than constructing ad-hoc ones, and so that shutdown has a single point that blocks
// further opens.  Readers themselves hold no resources between calls.

package db

import (
	"path"
	"sync"

	"timestore/db/errs"
	"timestore/db/parse"
)

type timelineStore struct {
	sync.Mutex
	closed  bool
	readers map[string]*TimelineReader
}

// MT: Constant after initialization; thread-safe
var gTimelineStore timelineStore

func unsafeResetTimelineStore() {
	gTimelineStore = timelineStore{
		readers: make(map[string]*TimelineReader, 10),
	}
}

func init() {
	unsafeResetTimelineStore()
}

// OpenTimelineReader returns the reader for the given storage root, creating it on first use.
func OpenTimelineReader(root string) (*TimelineReader, error) {
	return gTimelineStore.openReader(root)
}

// Close marks the store as closed; subsequent opens return errs.ErrStoreClosed.  Already-open
// readers keep working since they hold no resources.
func Close() {
	gTimelineStore.close()
}

func (s *timelineStore) openReader(root string) (*TimelineReader, error) {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return nil, errs.ErrStoreClosed
	}

	// Normally the path will have been cleaned by command line parsing, but do it anyway.
	root = path.Clean(root)
	if r := s.readers[root]; r != nil {
		return r, nil
	}

	r := NewTimelineReader(root, parse.NewEntityCodec())
	s.readers[root] = r
	return r, nil
}

func (s *timelineStore) close() {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.readers = nil
}
