package domain

// Target is a filesystem entry discovered by the walker. It only lives for
// the duration of one scan.
type Target struct {
	// Path is the entry's path on the scanned filesystem.
	Path string
	// Executable reports whether the entry's extension is in the scan's
	// allow-list of executable-class artifacts.
	Executable bool
}
