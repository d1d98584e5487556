package v1handler

import (
	"net/http"
	"sigscan/internal/scan"
	"sigscan/pkg/domain"
	"sigscan/pkg/logger"
	"sigscan/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// maxRequestBody bounds the scan request body; it only carries two paths.
const maxRequestBody = 64 << 10

// ScanRequest is the body of POST /v1/scans.
type ScanRequest struct {
	// FolderPath is the directory to scan. Required.
	FolderPath string
	// HashFile is the blocklist source. Empty means the configured default.
	HashFile string
}

// Decode reads {"folderPath": ..., "hashFile": ...}. Unknown fields are skipped.
func (s *ScanRequest) Decode(d *jx.Decoder) error {
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "folderPath":
			s.FolderPath, err = d.Str()
		case "hashFile":
			s.HashFile, err = d.Str()
		default:
			err = d.Skip()
		}

		if err != nil {
			return errors.Wrapf(err, "decode field %q", key)
		}

		return nil
	}); err != nil {
		return errors.Wrap(err, "decode ScanRequest")
	}

	return nil
}

// ScanResponse is the body of a successful POST /v1/scans.
type ScanResponse struct {
	Lines   []string
	Summary domain.Summary
}

// Encode writes {"lines": [...], "summary": {"clean", "flagged", "errors"}}.
func (s ScanResponse) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("lines")
	e.ArrStart()
	for _, line := range s.Lines {
		e.Str(line)
	}
	e.ArrEnd()
	e.FieldStart("summary")
	e.ObjStart()
	e.FieldStart("clean")
	e.Int(s.Summary.Clean)
	e.FieldStart("flagged")
	e.Int(s.Summary.Flagged)
	e.FieldStart("errors")
	e.Int(s.Summary.Errors)
	e.ObjEnd()
	e.ObjEnd()
}

// CreateScan runs one scan synchronously and responds with every result line.
func (h *Handler) CreateScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScanRequest
	if err := req.Decode(jx.Decode(http.MaxBytesReader(w, r.Body, maxRequestBody), 4096)); err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

		return
	}
	if req.FolderPath == "" {
		h.writeError(w, r, serrors.With(serrors.ErrBadRequest, "folderPath is required"))

		return
	}

	ctx = logger.WithFields(ctx, zap.String("subject", Subject(ctx)))
	res := <-scan.ScanFolder(ctx, h.deps.Scanner, req.FolderPath, req.HashFile)
	if res.Err != nil {
		h.writeError(w, r, res.Err)

		return
	}

	writeJSON(w, http.StatusOK, ScanResponse{Lines: res.Lines, Summary: res.Summary}.Encode)
}

// InvalidateBlocklist drops the cached blocklist so the next scan reloads it.
func (h *Handler) InvalidateBlocklist(w http.ResponseWriter, r *http.Request) {
	h.deps.Scanner.InvalidateBlocklist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
