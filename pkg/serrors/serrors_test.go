package serrors_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sigscan/pkg/serrors"
	"testing"

	"github.com/stretchr/testify/require"
)

type customError struct{ msg string }

func (e customError) Error() string { return e.msg }

func TestDefaultKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrConfig,
		serrors.ErrInternal,
		serrors.ErrCanceled,
		serrors.ErrBadRequest,
		serrors.ErrUnauthorized,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("no such file")

	e1 := serrors.With(serrors.ErrConfig, "unknown algorithm %q", "md5")
	require.Equal(t, `unknown algorithm "md5"`, e1.Error())

	e2 := serrors.Wrap(serrors.ErrConfig, base, "could not open blocklist")
	require.Equal(t, "could not open blocklist: no such file", e2.Error())

	e3 := serrors.KindOnly(serrors.ErrInternal)
	require.Equal(t, "INTERNAL", e3.Error())

	var nilErr *serrors.Error
	require.Equal(t, "<nil>", nilErr.Error())
}

func TestIsMatchesKindAndWrapped(t *testing.T) {
	e := serrors.Wrap(serrors.ErrConfig, fs.ErrNotExist, "loading blocklist")

	require.ErrorIs(t, e, serrors.ErrConfig)
	require.ErrorIs(t, e, fs.ErrNotExist)
	require.NotErrorIs(t, e, serrors.ErrInternal)

	wrapped := fmt.Errorf("could not scan: %w", e)
	require.ErrorIs(t, wrapped, serrors.ErrConfig)
	require.ErrorIs(t, wrapped, fs.ErrNotExist)
}

func TestAsMatchesKindAndWrapped(t *testing.T) {
	base := &customError{"root cause"}
	e := serrors.Wrap(serrors.ErrInternal, base, "worker")

	var k serrors.Kind
	require.ErrorAs(t, e, &k)
	require.Equal(t, serrors.ErrInternal, k)

	var ce *customError
	require.ErrorAs(t, e, &ce)
	require.Equal(t, base, ce)
}

func TestKindOf(t *testing.T) {
	require.Nil(t, serrors.KindOf(errors.New("plain")))
	require.Nil(t, serrors.KindOf(nil))
	require.Equal(t, serrors.ErrCanceled,
		serrors.KindOf(fmt.Errorf("outer: %w", serrors.Wrap(serrors.ErrCanceled, context.Canceled, "scan"))))
	require.Equal(t, serrors.ErrBadRequest, serrors.KindOf(serrors.ErrBadRequest))
}

func TestAccessors(t *testing.T) {
	base := errors.New("boom")
	e := serrors.Wrap(serrors.ErrUnauthorized, base, "no token")
	require.Equal(t, serrors.ErrUnauthorized, e.Kind())
	require.Equal(t, "no token", e.Message())
	require.Equal(t, base, e.Cause())
}
