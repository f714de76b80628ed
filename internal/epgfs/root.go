//go:build linux
// +build linux

package epgfs

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/isdb-go/epgd/internal/dvbdb"
	"github.com/isdb-go/epgd/internal/epg"
)

// Root is the filesystem root: one directory per tracked service. Registry
// is optional; a nil value degrades NetworkName annotations to hex.
type Root struct {
	fs.Inode
	DB       *epg.Database
	Registry *dvbdb.DB
}

func (r *Root) networkName(onid uint16) string {
	if r.Registry == nil {
		return fmt.Sprintf("ONID-0x%04X", onid)
	}
	return r.Registry.NetworkName(onid)
}

var _ fs.NodeReaddirer = (*Root)(nil)
var _ fs.NodeLookuper = (*Root)(nil)

func (r *Root) ino(key string) uint64 {
	return inoFromString("epgfs:" + key)
}

func (r *Root) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	keys := r.DB.GetServiceList()
	entries := make([]fuse.DirEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, fuse.DirEntry{
			Name: ServiceDirName(k),
			Ino:  r.ino("service:" + ServiceDirName(k)),
			Mode: fuse.S_IFDIR | 0755,
		})
	}
	return fs.NewListDirStream(entries), 0
}

func (r *Root) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	for _, k := range r.DB.GetServiceList() {
		if ServiceDirName(k) != name {
			continue
		}
		child := &ServiceDirNode{Root: r, Key: k}
		ch := r.NewInode(ctx, child, fs.StableAttr{
			Mode: fuse.S_IFDIR,
			Ino:  r.ino("service:" + name),
		})
		out.Mode = fuse.S_IFDIR | 0755
		out.SetEntryTimeout(1 * time.Second)
		out.SetAttrTimeout(1 * time.Second)
		return ch, 0
	}
	return nil, syscall.ENOENT
}
