package main

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// nativeFS is a billy.Filesystem over the host filesystem without a chroot:
// absolute and relative paths resolve exactly as they do for the os package.
type nativeFS struct {
	osfs.ChrootOS
}

//nolint: ireturn
func (nativeFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

func (nativeFS) Root() string {
	return "/"
}

func newNativeFS() billy.Filesystem {
	return &nativeFS{}
}
