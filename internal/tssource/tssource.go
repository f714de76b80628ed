// Package tssource reads an MPEG-2 transport stream from a UDP multicast
// group, stripping an optional RTP header, realigning to the 0x47 sync
// byte, and dropping null packets (PID 0x1FFF) before handing 188-byte
// packets to the section assembler.
package tssource

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/time/rate"

	"github.com/isdb-go/epgd/internal/section"
)

// ErrClosed is returned by Read after Close.
var ErrClosed = errors.New("tssource: closed")

// rtpHeaderLen is the fixed RTP header size (no extension, no CSRC) that
// some broadcast-to-IP gateways prepend to each UDP datagram.
const rtpHeaderLen = 12

// Source reads raw transport stream packets from a UDP multicast address.
type Source struct {
	conn    *net.UDPConn
	pc      *ipv4.PacketConn
	limiter *rate.Limiter
	hasRTP  bool

	buf     []byte
	packets int64
	dropped int64
}

// Options configures a Source.
type Options struct {
	// GroupAddr is "ip:port" of the multicast group to join.
	GroupAddr string
	// Iface, if non-empty, names the network interface to join the group
	// on (required on hosts with multiple interfaces).
	Iface string
	// RTPEncapsulated indicates each datagram is prefixed with a 12-byte
	// RTP header ahead of the TS packets.
	RTPEncapsulated bool
	// MaxPacketsPerSecond caps ingestion rate; 0 disables the limiter.
	MaxPacketsPerSecond int
}

// Open joins opts.GroupAddr and returns a ready-to-read Source.
func Open(opts Options) (*Source, error) {
	addr, err := net.ResolveUDPAddr("udp4", opts.GroupAddr)
	if err != nil {
		return nil, fmt.Errorf("tssource: resolve %q: %w", opts.GroupAddr, err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: addr.IP, Port: addr.Port})
	if err != nil {
		return nil, fmt.Errorf("tssource: listen %q: %w", opts.GroupAddr, err)
	}

	pc := ipv4.NewPacketConn(conn)
	var iface *net.Interface
	if opts.Iface != "" {
		iface, err = net.InterfaceByName(opts.Iface)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("tssource: interface %q: %w", opts.Iface, err)
		}
	}
	if err := pc.JoinGroup(iface, &net.UDPAddr{IP: addr.IP}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tssource: join group %s: %w", addr.IP, err)
	}

	s := &Source{
		conn:   conn,
		pc:     pc,
		hasRTP: opts.RTPEncapsulated,
		buf:    make([]byte, 64*1024),
	}
	if opts.MaxPacketsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.MaxPacketsPerSecond), opts.MaxPacketsPerSecond)
	}
	log.Printf("tssource: joined multicast group %s on %s", opts.GroupAddr, opts.Iface)
	return s, nil
}

// ReadPackets blocks until one datagram has been read and returns the
// 0x47-aligned, non-null 188-byte TS packets it contained.
func (s *Source) ReadPackets(ctx context.Context) ([][]byte, error) {
	if s.conn == nil {
		return nil, ErrClosed
	}

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := s.conn.Read(s.buf)
		done <- result{n, err}
	}()

	select {
	case <-ctx.Done():
		s.conn.Close()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return s.extractPackets(s.buf[:r.n]), nil
	}
}

// extractPackets strips an RTP header if configured, realigns to the
// first 0x47 sync byte, and splits the remainder into whole 188-byte
// packets, dropping null packets (PID 0x1FFF).
func (s *Source) extractPackets(datagram []byte) [][]byte {
	payload := datagram
	if s.hasRTP && len(payload) > rtpHeaderLen {
		payload = payload[rtpHeaderLen:]
	}

	start := -1
	for i := 0; i+section.PacketLen <= len(payload); i++ {
		if payload[i] == section.SyncByte {
			start = i
			break
		}
	}
	if start < 0 {
		s.dropped++
		return nil
	}
	payload = payload[start:]

	var out [][]byte
	for len(payload) >= section.PacketLen {
		pkt := payload[:section.PacketLen]
		payload = payload[section.PacketLen:]
		if pkt[0] != section.SyncByte {
			s.dropped++
			continue
		}
		pid := (uint16(pkt[1]&0x1F) << 8) | uint16(pkt[2])
		if pid == section.NullPID {
			continue
		}
		if s.limiter != nil && !s.limiter.Allow() {
			s.dropped++
			continue
		}
		s.packets++
		out = append(out, append([]byte(nil), pkt...))
	}
	return out
}

// Stats returns the running count of packets delivered and dropped.
func (s *Source) Stats() (packets, dropped int64) {
	return s.packets, s.dropped
}

// Close leaves the multicast group and releases the socket.
func (s *Source) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
