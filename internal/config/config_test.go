package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_defaults(t *testing.T) {
	os.Clearenv()
	c := Load()
	if c.SourceAddr != "" {
		t.Errorf("SourceAddr default: got %q", c.SourceAddr)
	}
	if c.SourceRTP {
		t.Error("SourceRTP should default false")
	}
	if c.SourceMaxPacketsPerSecond != 0 {
		t.Errorf("SourceMaxPacketsPerSecond default: got %d", c.SourceMaxPacketsPerSecond)
	}
	if c.MetricsAddr != ":9100" {
		t.Errorf("MetricsAddr default: got %q", c.MetricsAddr)
	}
	if c.StorePath != "" {
		t.Errorf("StorePath default: got %q", c.StorePath)
	}
	if c.SnapshotInterval != 5*time.Minute {
		t.Errorf("SnapshotInterval default: got %v", c.SnapshotInterval)
	}
	if c.FSMountPoint != "" {
		t.Errorf("FSMountPoint default: got %q", c.FSMountPoint)
	}
	if c.NetworkRegistryPath != "" {
		t.Errorf("NetworkRegistryPath default: got %q", c.NetworkRegistryPath)
	}
}

func TestLoad_sourceSettings(t *testing.T) {
	os.Clearenv()
	os.Setenv("ISDB_EPGD_SOURCE_ADDR", "239.1.1.1:1234")
	os.Setenv("ISDB_EPGD_SOURCE_IFACE", "eth0")
	os.Setenv("ISDB_EPGD_SOURCE_RTP", "true")
	os.Setenv("ISDB_EPGD_SOURCE_MAX_PPS", "5000")
	c := Load()
	if c.SourceAddr != "239.1.1.1:1234" {
		t.Errorf("SourceAddr: got %q", c.SourceAddr)
	}
	if c.SourceIface != "eth0" {
		t.Errorf("SourceIface: got %q", c.SourceIface)
	}
	if !c.SourceRTP {
		t.Error("SourceRTP should be true")
	}
	if c.SourceMaxPacketsPerSecond != 5000 {
		t.Errorf("SourceMaxPacketsPerSecond: got %d", c.SourceMaxPacketsPerSecond)
	}
}

func TestLoad_storeAndSnapshotInterval(t *testing.T) {
	os.Clearenv()
	os.Setenv("ISDB_EPGD_STORE_PATH", "/var/lib/isdb-epgd/epg.db")
	os.Setenv("ISDB_EPGD_SNAPSHOT_INTERVAL", "30s")
	c := Load()
	if c.StorePath != "/var/lib/isdb-epgd/epg.db" {
		t.Errorf("StorePath: got %q", c.StorePath)
	}
	if c.SnapshotInterval != 30*time.Second {
		t.Errorf("SnapshotInterval: got %v", c.SnapshotInterval)
	}
}

func TestLoad_invalidSnapshotIntervalFallsBackToDefault(t *testing.T) {
	os.Clearenv()
	os.Setenv("ISDB_EPGD_SNAPSHOT_INTERVAL", "not-a-duration")
	c := Load()
	if c.SnapshotInterval != 5*time.Minute {
		t.Errorf("SnapshotInterval fallback: got %v", c.SnapshotInterval)
	}
}

func TestLoad_fsMountPoint(t *testing.T) {
	os.Clearenv()
	os.Setenv("ISDB_EPGD_FS_MOUNT", "/mnt/epgfs")
	c := Load()
	if c.FSMountPoint != "/mnt/epgfs" {
		t.Errorf("FSMountPoint: got %q", c.FSMountPoint)
	}
}

func TestLoad_networkRegistryPath(t *testing.T) {
	os.Clearenv()
	os.Setenv("ISDB_EPGD_NETWORK_REGISTRY", "/etc/isdb-epgd/networks.json")
	c := Load()
	if c.NetworkRegistryPath != "/etc/isdb-epgd/networks.json" {
		t.Errorf("NetworkRegistryPath: got %q", c.NetworkRegistryPath)
	}
}

func TestLoad_metricsAddr(t *testing.T) {
	os.Clearenv()
	os.Setenv("ISDB_EPGD_METRICS_ADDR", ":9200")
	c := Load()
	if c.MetricsAddr != ":9200" {
		t.Errorf("MetricsAddr: got %q", c.MetricsAddr)
	}
}
