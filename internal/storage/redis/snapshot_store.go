package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/goodtune/mstat/internal/storage"
	"github.com/redis/go-redis/v9"
)

type snapshotStore struct {
	client       *redis.Client
	historyLimit int
}

// Record stores every snapshot of a run
func (s *snapshotStore) Record(ctx context.Context, snapshots []storage.Snapshot) error {
	script := redis.NewScript(recordSnapshotScript)

	for _, snap := range snapshots {
		users := snap.Users
		if users == nil {
			users = []storage.SnapshotUser{}
		}
		usersJSON, err := json.Marshal(users)
		if err != nil {
			return fmt.Errorf("failed to encode users of %s: %w", snap.Toolbox, err)
		}

		encoded, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot of %s: %w", snap.Toolbox, err)
		}

		keys := []string{latestKey(snap.Toolbox), toolboxIndexKey, historyKey(snap.Toolbox)}
		args := []interface{}{
			snap.Toolbox,
			snap.Issued,
			snap.Used,
			snap.Type,
			string(usersJSON),
			snap.CapturedAt.Format(time.RFC3339Nano),
			string(encoded),
			s.historyLimit,
		}

		if err := script.Run(ctx, s.client, keys, args...).Err(); err != nil {
			return fmt.Errorf("failed to record snapshot of %s: %w", snap.Toolbox, err)
		}
	}

	return nil
}

// Latest returns the most recent snapshot of a toolbox
func (s *snapshotStore) Latest(ctx context.Context, toolbox string) (*storage.Snapshot, error) {
	data, err := s.client.HGetAll(ctx, latestKey(toolbox)).Result()
	if err != nil {
		return nil, err
	}

	return parseSnapshot(data)
}

// History returns up to limit snapshots of a toolbox, newest first
func (s *snapshotStore) History(ctx context.Context, toolbox string, limit int) ([]storage.Snapshot, error) {
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	raw, err := s.client.LRange(ctx, historyKey(toolbox), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	snapshots := make([]storage.Snapshot, 0, len(raw))
	for _, item := range raw {
		var snap storage.Snapshot
		if err := json.Unmarshal([]byte(item), &snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot of %s: %w", toolbox, err)
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// Toolboxes returns every toolbox that has been recorded, sorted by name
func (s *snapshotStore) Toolboxes(ctx context.Context) ([]string, error) {
	toolboxes, err := s.client.SMembers(ctx, toolboxIndexKey).Result()
	if err != nil {
		return nil, err
	}

	sort.Strings(toolboxes)
	return toolboxes, nil
}
