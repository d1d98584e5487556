// Package blocklist loads sets of known-bad digests and caches the loaded set
// for reuse across scans.
//
// Source format: UTF-8 text, one hex digest per line. Surrounding whitespace is
// trimmed; blank lines and lines starting with '#' are ignored. Entries are
// kept verbatim: no case folding and no length or alphabet validation, so a
// malformed line is simply an entry that never matches.
package blocklist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sigscan/pkg/serrors"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// Store is an immutable set of blocklisted digests.
type Store struct {
	entries map[string]struct{}
}

// New builds a Store from already-clean entries. Entries are inserted as-is.
func New(entries ...string) *Store {
	s := &Store{entries: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		s.entries[e] = struct{}{}
	}

	return s
}

// Parse reads a blocklist source line by line. Lines of any length are
// accepted; the source is never held in memory as a whole.
func Parse(r io.Reader) (*Store, error) {
	s := New()
	br := bufio.NewReader(r)

	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("could not read line: %w", err)
		}

		if entry := strings.TrimSpace(line); entry != "" && !strings.HasPrefix(entry, "#") {
			s.entries[entry] = struct{}{}
		}

		if errors.Is(err, io.EOF) {
			return s, nil
		}
	}
}

// Load opens path on fs and parses it. Any failure is a configuration error:
// a scan cannot proceed without its blocklist.
func Load(fs billy.Filesystem, path string) (*Store, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConfig, err, "could not open blocklist")
	}
	defer func() {
		_ = f.Close()
	}()

	s, err := Parse(f)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrConfig, err, "could not load blocklist %s", path)
	}

	return s, nil
}

// Contains reports whether digest is in the set. Matching is exact.
func (s *Store) Contains(digest string) bool {
	_, ok := s.entries[digest]

	return ok
}

// Len returns the number of distinct entries.
func (s *Store) Len() int { return len(s.entries) }

// Mismatched counts entries that are not hexLen lowercase hex characters and
// therefore can never match a digest produced by an engine of that width.
func (s *Store) Mismatched(hexLen int) int {
	n := 0
	for e := range s.entries {
		if len(e) != hexLen || strings.IndexFunc(e, notLowerHex) >= 0 {
			n++
		}
	}

	return n
}

func notLowerHex(r rune) bool {
	return (r < '0' || r > '9') && (r < 'a' || r > 'f')
}
