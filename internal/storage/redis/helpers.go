package redis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/goodtune/mstat/internal/storage"
)

const (
	toolboxIndexKey = "mstat:toolboxes"
)

func latestKey(toolbox string) string {
	return fmt.Sprintf("mstat:snapshot:%s", toolbox)
}

func historyKey(toolbox string) string {
	return fmt.Sprintf("mstat:history:%s", toolbox)
}

// parseSnapshot converts the latest-snapshot hash of a toolbox to a Snapshot
func parseSnapshot(data map[string]string) (*storage.Snapshot, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	issued, err := strconv.Atoi(data["issued"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse issued: %w", err)
	}

	used, err := strconv.Atoi(data["used"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse used: %w", err)
	}

	capturedAt, err := time.Parse(time.RFC3339Nano, data["captured_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse captured_at: %w", err)
	}

	users := []storage.SnapshotUser{}
	if raw := data["users"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &users); err != nil {
			return nil, fmt.Errorf("failed to parse users: %w", err)
		}
	}

	return &storage.Snapshot{
		Toolbox:    data["toolbox"],
		Issued:     issued,
		Used:       used,
		Type:       data["type"],
		Users:      users,
		CapturedAt: capturedAt,
	}, nil
}
