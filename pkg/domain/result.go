package domain

import (
	"errors"
	"fmt"
	"io/fs"
)

// Verdict classifies a scanned file.
type Verdict string

const (
	// VerdictClean means the file's digest is not in the blocklist.
	VerdictClean Verdict = "CLEAN"
	// VerdictFlagged means the file's digest is present in the blocklist.
	VerdictFlagged Verdict = "FLAGGED"
	// VerdictReadError means no digest could be computed for the file.
	VerdictReadError Verdict = "READ_ERROR"
)

// Result is the outcome of scanning a single candidate file. Results are
// values; nothing mutates them after construction.
type Result struct {
	// Path is the scanned file as produced by the walker.
	Path string `json:"path"`
	// Verdict is the classification of the file.
	Verdict Verdict `json:"verdict"`
	// Digest is the lowercase hex digest. Empty for read errors.
	Digest string `json:"digest,omitempty"`
	// Error describes why the file could not be digested. Only set for read errors.
	Error string `json:"error,omitempty"`
}

// Clean builds a result for a file whose digest is not blocklisted.
func Clean(path, digest string) Result {
	return Result{Path: path, Verdict: VerdictClean, Digest: digest}
}

// Flagged builds a result for a file whose digest is blocklisted.
func Flagged(path, digest string) Result {
	return Result{Path: path, Verdict: VerdictFlagged, Digest: digest}
}

// ReadError builds a result for a file that could not be digested. A
// *fs.PathError is reduced to its cause since the line already names path.
func ReadError(path string, err error) Result {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Err != nil {
		err = pathErr.Err
	}

	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	return Result{Path: path, Verdict: VerdictReadError, Error: msg}
}

// Line renders the human-readable line shown to users. Display code matches
// on the leading marker, so the formats must not change.
func (r Result) Line() string {
	switch r.Verdict {
	case VerdictFlagged:
		return fmt.Sprintf("🚨 MALWARE DETECTED: %s (hash: %s)", r.Path, r.Digest)
	case VerdictClean:
		return fmt.Sprintf("✅ Clean: %s", r.Path)
	default:
		return fmt.Sprintf("❌ Error reading %s: %s", r.Path, r.Error)
	}
}

// String implements fmt.Stringer.
func (r Result) String() string { return r.Line() }

// Lines renders every result with Line, preserving order.
func Lines(results []Result) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, r.Line())
	}

	return lines
}

// Summary counts results per verdict.
type Summary struct {
	Clean   int `json:"clean"`
	Flagged int `json:"flagged"`
	Errors  int `json:"errors"`
}

// Total is the number of results the summary was built from.
func (s Summary) Total() int { return s.Clean + s.Flagged + s.Errors }

// Summarize counts the verdicts in results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Verdict {
		case VerdictClean:
			s.Clean++
		case VerdictFlagged:
			s.Flagged++
		case VerdictReadError:
			s.Errors++
		}
	}

	return s
}
