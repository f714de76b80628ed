package main

import (
	"context"
	"log"

	"github.com/isdb-go/epgd/internal/config"
	"github.com/isdb-go/epgd/internal/epg"
	"github.com/isdb-go/epgd/internal/metrics"
	"github.com/isdb-go/epgd/internal/section"
	"github.com/isdb-go/epgd/internal/table"
	"github.com/isdb-go/epgd/internal/tssource"
)

// runIngest joins the configured multicast feed and feeds every packet
// through section reassembly, table decode, and EPG ingestion until ctx is
// canceled. Errors opening the source are fatal; errors reading a single
// datagram are logged and the loop continues.
func runIngest(ctx context.Context, cfg *config.Config, db *epg.Database, reg *metrics.Registry) {
	src, err := tssource.Open(tssource.Options{
		GroupAddr:           cfg.SourceAddr,
		Iface:               cfg.SourceIface,
		RTPEncapsulated:     cfg.SourceRTP,
		MaxPacketsPerSecond: cfg.SourceMaxPacketsPerSecond,
	})
	if err != nil {
		log.Fatalf("isdb-epgd: open source %s: %v", cfg.SourceAddr, err)
	}
	defer src.Close()

	asm := section.NewAssembler()
	sourceID := cfg.SourceAddr

	for {
		if ctx.Err() != nil {
			return
		}
		packets, err := src.ReadPackets(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("isdb-epgd: read packets: %v", err)
			continue
		}
		for _, pkt := range packets {
			reg.PacketsRead.Inc()
			sections, err := asm.Feed(pkt)
			if err != nil {
				reg.PacketsDropped.Inc()
				continue
			}
			for _, sec := range sections {
				handleSection(db, reg, sec, sourceID)
			}
		}
	}
}

func handleSection(db *epg.Database, reg *metrics.Registry, sec section.Section, sourceID string) {
	decoded, err := table.Decode(sec)
	if err != nil {
		return
	}

	switch v := decoded.(type) {
	case table.EIT:
		class := "basic"
		if table.IsExtendedEIT(v.TableID) {
			class = "extended"
		}
		reg.SectionsAssembled.WithLabelValues("EIT").Inc()
		if err := db.UpdateSection(v, sourceID); err != nil {
			reg.SectionsRejected.WithLabelValues("EIT").Inc()
			return
		}
		reg.EventsIngested.WithLabelValues(class).Inc()
		reg.ServicesTracked.Set(float64(len(db.GetServiceList())))
	case table.TOT:
		reg.SectionsAssembled.WithLabelValues("TOT").Inc()
		db.UpdateTOT(v)
	}
}
