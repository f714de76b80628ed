//go:build linux
// +build linux

package epgfs

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// EventFileNode is a read-only file whose entire content was rendered once
// at Lookup time; there is nothing to materialize on demand, unlike the
// teacher's on-demand media files, so Read simply slices Content.
type EventFileNode struct {
	fs.Inode
	Content []byte
}

var _ fs.NodeGetattrer = (*EventFileNode)(nil)
var _ fs.NodeReader = (*EventFileNode)(nil)

func (n *EventFileNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Size = uint64(len(n.Content))
	out.Mode = fuse.S_IFREG | 0444
	out.SetTimes(nil, &time.Time{}, nil)
	return 0
}

func (n *EventFileNode) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	end := off + int64(len(dest))
	if end > int64(len(n.Content)) {
		end = int64(len(n.Content))
	}
	if off >= int64(len(n.Content)) {
		return fuse.ReadResultData(dest[:0]), 0
	}
	n2 := copy(dest, n.Content[off:end])
	return fuse.ReadResultData(dest[:n2]), 0
}
