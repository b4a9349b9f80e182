package library

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SnapshotKey is the blob key the library is persisted under.
const SnapshotKey = "library"

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// ErrCorruptSnapshot indicates a stored snapshot could not be decoded.
var ErrCorruptSnapshot = errors.New("corrupt library snapshot")

// Snapshot is the serialized form of the whole library.
type Snapshot struct {
	Version int             `json:"version"`
	Items   map[Kind][]Item `json:"items"`
}

// EncodeSnapshot serializes shelves into snapshot bytes.
func EncodeSnapshot(shelves map[Kind][]Item) ([]byte, error) {
	snap := Snapshot{
		Version: SnapshotVersion,
		Items:   make(map[Kind][]Item, len(shelves)),
	}
	for k, items := range shelves {
		if len(items) == 0 {
			continue
		}
		snap.Items[k] = items
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses snapshot bytes. Any structural problem (bad JSON,
// unknown version, unknown kind, empty or duplicate keys, negative
// counters) is reported as ErrCorruptSnapshot.
func DecodeSnapshot(b []byte) (map[Kind][]Item, error) {
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, snap.Version)
	}

	shelves := make(map[Kind][]Item, len(snap.Items))
	for kind, items := range snap.Items {
		if !knownKind(kind) {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrCorruptSnapshot, kind)
		}
		seen := make(map[string]struct{}, len(items))
		for i := range items {
			it := &items[i]
			if it.Key == "" {
				return nil, fmt.Errorf("%w: empty key in %s", ErrCorruptSnapshot, kind)
			}
			if _, dup := seen[it.Key]; dup {
				return nil, fmt.Errorf("%w: duplicate key %q in %s", ErrCorruptSnapshot, it.Key, kind)
			}
			if it.Stats.SuccessCount < 0 || it.Stats.FailCount < 0 {
				return nil, fmt.Errorf("%w: negative counters for %q", ErrCorruptSnapshot, it.Key)
			}
			seen[it.Key] = struct{}{}
			it.Kind = kind
		}
		shelves[kind] = items
	}
	return shelves, nil
}

func knownKind(k Kind) bool {
	for _, kk := range Kinds {
		if kk == k {
			return true
		}
	}
	return false
}
