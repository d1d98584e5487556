// Package digest computes cryptographic content digests of files by
// streaming them through a fixed-size buffer into an incremental hash.
package digest

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"sigscan/pkg/serrors"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm names a supported 256-bit digest function. Blocklist sources must
// be produced with the same algorithm the engine uses.
type Algorithm string

const (
	SHA256     Algorithm = "sha256"
	SHA512_256 Algorithm = "sha512-256" //nolint: revive
	SHA3_256   Algorithm = "sha3-256"   //nolint: revive
	BLAKE2b256 Algorithm = "blake2b-256"
)

// DefaultBufferSize is the read buffer used when Options.BufferSize is zero.
const DefaultBufferSize = 8 * 1024

// Algorithms lists every supported algorithm, default first.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, SHA512_256, SHA3_256, BLAKE2b256}
}

func hasher(a Algorithm) (func() hash.Hash, bool) {
	switch a {
	case SHA256, "":
		return sha256.New, true
	case SHA512_256:
		return sha512.New512_256, true
	case SHA3_256:
		return sha3.New256, true
	case BLAKE2b256:
		return func() hash.Hash {
			// only fails for keys longer than 64 bytes
			h, _ := blake2b.New256(nil)

			return h
		}, true
	default:
		return nil, false
	}
}

// Options configure an Engine.
type Options struct {
	// Algorithm selects the digest function. Empty means SHA256.
	Algorithm Algorithm
	// BufferSize is the size of the read buffer. Zero means DefaultBufferSize.
	BufferSize int
}

// Engine digests files on a billy filesystem. It holds no per-call state, so
// one Engine can serve any number of goroutines; every call gets its own
// file handle, buffer and hasher.
type Engine struct {
	fs         billy.Filesystem
	algorithm  Algorithm
	newHash    func() hash.Hash
	bufferSize int
}

// New creates an Engine reading from fs.
func New(fs billy.Filesystem, opts Options) (*Engine, error) {
	newHash, ok := hasher(opts.Algorithm)
	if !ok {
		return nil, serrors.With(serrors.ErrConfig, "unsupported digest algorithm %q", opts.Algorithm)
	}
	if opts.BufferSize < 0 {
		return nil, serrors.With(serrors.ErrConfig, "buffer size must not be negative, got %d", opts.BufferSize)
	}

	algorithm := opts.Algorithm
	if algorithm == "" {
		algorithm = SHA256
	}
	bufferSize := opts.BufferSize
	if bufferSize == 0 {
		bufferSize = DefaultBufferSize
	}

	return &Engine{
		fs:         fs,
		algorithm:  algorithm,
		newHash:    newHash,
		bufferSize: bufferSize,
	}, nil
}

// Algorithm returns the digest function in use.
func (e *Engine) Algorithm() Algorithm { return e.algorithm }

// HexLen is the length of the hex digests this engine produces.
func (e *Engine) HexLen() int { return e.newHash().Size() * 2 }

// Digest returns the lowercase hex digest of the file at path. Open and read
// failures are returned as-is (they already name the path); no partial
// digest is ever returned. ctx is checked between chunk reads.
func (e *Engine) Digest(ctx context.Context, path string) (string, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return "", err //nolint: wrapcheck
	}
	defer func() {
		_ = f.Close()
	}()

	return e.DigestReader(ctx, f)
}

// DigestReader digests everything r yields until EOF.
func (e *Engine) DigestReader(ctx context.Context, r io.Reader) (string, error) {
	h := e.newHash()
	buf := make([]byte, e.bufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("digest interrupted: %w", err)
		}

		n, err := r.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n]) // hash.Hash never returns an error
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err //nolint: wrapcheck
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
