package scan

import (
	"context"
	"sigscan/pkg/domain"
	"sigscan/pkg/serrors"
)

// Response is the single message delivered by ScanFolder: either the finished
// lines (possibly empty) or an error, never both.
type Response struct {
	// Lines holds one display line per scanned file, in no particular order.
	Lines []string
	// Summary counts the verdicts behind Lines.
	Summary domain.Summary
	// Err is set when the scan could not run to completion.
	Err error
}

// Message returns the error description shown to users, or "" on success.
func (r Response) Message() string {
	if r.Err == nil {
		return ""
	}

	return r.Err.Error()
}

// ScanFolder hands a whole scan to a background goroutine and returns at
// once. Exactly one Response is delivered on the returned channel, which is
// then closed; nothing is streamed while the scan runs.
func ScanFolder(ctx context.Context, s Scanner, folderPath string, hashFile string) <-chan Response {
	out := make(chan Response, 1)

	go func() {
		defer close(out)
		defer func() {
			if p := recover(); p != nil {
				out <- Response{Err: serrors.With(serrors.ErrInternal, "scan panicked: %v", p)}
			}
		}()

		results, err := s.Scan(ctx, folderPath, hashFile)
		if err != nil {
			out <- Response{Err: err}

			return
		}

		out <- Response{Lines: domain.Lines(results), Summary: domain.Summarize(results)}
	}()

	return out
}
