package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const SnapshotSchemaVersion = 1

// snapshotLayout sorts lexicographically in chronological order.
const snapshotLayout = "20060102T150405Z"

// Snapshot is a point-in-time set of metric points, typically written after
// a cache benchmark.
type Snapshot struct {
	SchemaVersion int           `json:"schema_version"`
	AsOf          string        `json:"as_of"`
	Label         string        `json:"label,omitempty"`
	Points        []MetricPoint `json:"points"`
}

// NewSnapshot stamps points with asOf.
func NewSnapshot(label string, asOf time.Time, points []MetricPoint) Snapshot {
	return Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		AsOf:          Timestamp(asOf),
		Label:         label,
		Points:        CanonicalizePoints(points),
	}
}

// WriteSnapshot canonicalizes snapshot and writes it to path via a temp file
// and rename.
func WriteSnapshot(path string, snapshot Snapshot) error {
	if path == "" {
		return fmt.Errorf("snapshot path is required")
	}
	if snapshot.AsOf == "" {
		return fmt.Errorf("snapshot as_of is required")
	}
	snapshot.SchemaVersion = SnapshotSchemaVersion
	snapshot.Points = CanonicalizePoints(snapshot.Points)
	if snapshot.Points == nil {
		snapshot.Points = []MetricPoint{}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot, rejecting unknown fields and schema versions.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.SchemaVersion != SnapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot %s: unsupported schema_version %d", path, snap.SchemaVersion)
	}
	if snap.AsOf == "" {
		return nil, fmt.Errorf("snapshot %s: missing as_of", path)
	}
	if _, err := time.Parse(time.RFC3339, snap.AsOf); err != nil {
		return nil, fmt.Errorf("snapshot %s: invalid as_of: %w", path, err)
	}
	snap.Points = CanonicalizePoints(snap.Points)
	return &snap, nil
}

// SnapshotPath returns <dir>/<UTC timestamp>.json for asOf.
func SnapshotPath(dir string, asOf time.Time) string {
	return filepath.Join(dir, asOf.UTC().Format(snapshotLayout)+".json")
}

// LatestSnapshotPath returns the newest snapshot in dir.
func LatestSnapshotPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read snapshots dir: %w", err)
	}
	var candidates []string
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, err := time.Parse(snapshotLayout, strings.TrimSuffix(name, ".json")); err != nil {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, name))
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no snapshots found in %s", dir)
	}
	sort.Strings(candidates)
	return candidates[len(candidates)-1], nil
}
