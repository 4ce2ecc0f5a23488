package metrics

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
)

// Health is a point-in-time view of the process and of the planner's
// on-disk state.
type Health struct {
	AllocMB    uint64
	SysMB      uint64
	NumGC      uint32
	Goroutines int

	// Snapshots counts the JSON snapshot files under the data directory.
	// It stays zero with the sqlite backend.
	Snapshots     int
	SnapshotBytes uint64
	// DatabaseBytes includes the write-ahead log when present.
	DatabaseBytes uint64
}

// SnapshotSize formats SnapshotBytes for display.
func (h Health) SnapshotSize() string { return humanize.IBytes(h.SnapshotBytes) }

// DatabaseSize formats DatabaseBytes for display.
func (h Health) DatabaseSize() string { return humanize.IBytes(h.DatabaseBytes) }

// GetHealth collects memory statistics, the snapshot files in dataDir and
// the size of the SQLite file at dbPath. Missing paths count as empty.
func GetHealth(dataDir, dbPath string) Health {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := Health{
		AllocMB:    m.Alloc / 1024 / 1024,
		SysMB:      m.Sys / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
	h.Snapshots, h.SnapshotBytes = snapshotFiles(dataDir)
	h.DatabaseBytes = fileSize(dbPath) + fileSize(dbPath+"-wal")
	return h
}

func snapshotFiles(dir string) (int, uint64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}
	var n int
	var size uint64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		n++
		size += fileSize(filepath.Join(dir, e.Name()))
	}
	return n, size
}

func fileSize(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0
	}
	return uint64(info.Size())
}
