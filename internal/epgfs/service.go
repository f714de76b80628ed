//go:build linux
// +build linux

package epgfs

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/isdb-go/epgd/internal/epg"
)

// ServiceDirNode lists a service's known events as files, one per event,
// most recent overlap resolution already applied by the database.
type ServiceDirNode struct {
	fs.Inode
	Root *Root
	Key  epg.ServiceKey
}

var _ fs.NodeReaddirer = (*ServiceDirNode)(nil)
var _ fs.NodeLookuper = (*ServiceDirNode)(nil)

func (n *ServiceDirNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	events := n.Root.DB.GetEventListSortedByTime(n.Key)
	entries := make([]fuse.DirEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, fuse.DirEntry{
			Name: EventFileName(e),
			Ino:  n.Root.ino("event:" + ServiceDirName(n.Key) + ":" + EventFileName(e)),
			Mode: fuse.S_IFREG | 0444,
		})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *ServiceDirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	for _, e := range n.Root.DB.GetEventListSortedByTime(n.Key) {
		if EventFileName(e) != name {
			continue
		}
		content := RenderEvent(e, n.Root.networkName(n.Key.NetworkID))
		child := &EventFileNode{Content: content}
		ch := n.NewInode(ctx, child, fs.StableAttr{
			Mode: fuse.S_IFREG,
			Ino:  n.Root.ino("event:" + ServiceDirName(n.Key) + ":" + name),
		})
		out.Mode = fuse.S_IFREG | 0444
		out.Size = uint64(len(content))
		out.SetEntryTimeout(1 * time.Second)
		out.SetAttrTimeout(1 * time.Second)
		return ch, 0
	}
	return nil, syscall.ENOENT
}
