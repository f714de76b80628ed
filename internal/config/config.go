// Package config holds the isdb-epgd daemon's environment-driven settings:
// where to read the transport stream from, where to publish metrics, and
// where (if anywhere) to persist EPG snapshots or mount the debug tree.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds tssource + epgstore + epgfs + metrics settings.
// Load from env and/or a .env file (see LoadEnvFile).
type Config struct {
	// Source: UDP multicast feed carrying the transport stream.
	SourceAddr          string // "ip:port", e.g. 239.1.1.1:1234
	SourceIface         string // network interface to join the group on
	SourceRTP           bool   // datagrams carry a 12-byte RTP header before TS packets
	SourceMaxPacketsPerSecond int // 0 = unlimited

	// Metrics: Prometheus HTTP endpoint.
	MetricsAddr string // e.g. :9100

	// EPG snapshot persistence (optional; empty path disables it).
	StorePath        string
	SnapshotInterval time.Duration

	// Debug filesystem (optional; empty mount point disables it).
	FSMountPoint string

	// Network registry overlay (optional; empty path uses the embedded
	// table only).
	NetworkRegistryPath string
}

// Load reads config from environment. Call LoadEnvFile(".env") before Load
// to use a .env file.
func Load() *Config {
	c := &Config{
		SourceAddr:                os.Getenv("ISDB_EPGD_SOURCE_ADDR"),
		SourceIface:               os.Getenv("ISDB_EPGD_SOURCE_IFACE"),
		SourceRTP:                 getEnvBool("ISDB_EPGD_SOURCE_RTP", false),
		SourceMaxPacketsPerSecond: getEnvInt("ISDB_EPGD_SOURCE_MAX_PPS", 0),
		MetricsAddr:               getEnv("ISDB_EPGD_METRICS_ADDR", ":9100"),
		StorePath:                 os.Getenv("ISDB_EPGD_STORE_PATH"),
		SnapshotInterval:          getEnvDuration("ISDB_EPGD_SNAPSHOT_INTERVAL", 5*time.Minute),
		FSMountPoint:              os.Getenv("ISDB_EPGD_FS_MOUNT"),
		NetworkRegistryPath:       os.Getenv("ISDB_EPGD_NETWORK_REGISTRY"),
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = 5 * time.Minute
	}
	return c
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
