//go:build linux
// +build linux

package epgfs

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/isdb-go/epgd/internal/dvbdb"
	"github.com/isdb-go/epgd/internal/epg"
)

// Mount mounts a read-only debug tree over db at mountPoint. It blocks
// until the process receives SIGINT/SIGTERM or the server exits. registry
// may be nil, in which case network names render as hex.
func Mount(mountPoint string, db *epg.Database, registry *dvbdb.DB) error {
	root := &Root{DB: db, Registry: registry}
	opts := &fs.Options{MountOptions: fuse.MountOptions{Debug: false}}
	server, err := fs.Mount(mountPoint, root, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		log.Println("epgfs: unmounting")
		_ = server.Unmount()
	}()

	server.Wait()
	stop()
	return nil
}

// MountBackground mounts the debug tree without blocking; call the
// returned func, or cancel ctx, to unmount.
func MountBackground(ctx context.Context, mountPoint string, db *epg.Database, registry *dvbdb.DB) (unmount func(), err error) {
	root := &Root{DB: db, Registry: registry}
	opts := &fs.Options{MountOptions: fuse.MountOptions{Debug: false}}
	server, err := fs.Mount(mountPoint, root, opts)
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		_ = server.Unmount()
	}()

	return func() { _ = server.Unmount() }, nil
}
