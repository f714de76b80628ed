//go:build !linux
// +build !linux

package epgfs

import (
	"context"
	"fmt"

	"github.com/isdb-go/epgd/internal/dvbdb"
	"github.com/isdb-go/epgd/internal/epg"
)

// Mount is unavailable on non-Linux builds because epgfs depends on go-fuse.
func Mount(mountPoint string, db *epg.Database, registry *dvbdb.DB) error {
	return fmt.Errorf("epgfs mount is only supported on linux builds")
}

// MountBackground is unavailable on non-Linux builds because epgfs depends
// on go-fuse.
func MountBackground(_ context.Context, mountPoint string, db *epg.Database, registry *dvbdb.DB) (func(), error) {
	return nil, fmt.Errorf("epgfs mount is only supported on linux builds")
}
