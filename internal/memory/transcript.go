package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TranscriptStore keeps the rolling 1:1 conversation transcript in Redis lists.
type TranscriptStore struct {
	client *redis.Client
	max    int
	ttl    time.Duration
}

// NewTranscriptStore creates a transcript store. max bounds list length; ttl
// expires idle conversations.
func NewTranscriptStore(client *redis.Client, max int, ttl time.Duration) *TranscriptStore {
	return &TranscriptStore{client: client, max: max, ttl: ttl}
}

func transcriptKey(deviceID, companionType string) string {
	return fmt.Sprintf("conv:%s:%s", deviceID, companionType)
}

// Append adds a turn to the transcript, trims to the configured maximum and
// refreshes the TTL.
func (s *TranscriptStore) Append(ctx context.Context, deviceID, companionType string, entry TranscriptEntry) error {
	key := transcriptKey(deviceID, companionType)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling transcript entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, int64(-s.max), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

// Recent returns the last `limit` turns in chronological order.
func (s *TranscriptStore) Recent(ctx context.Context, deviceID, companionType string, limit int) ([]TranscriptEntry, error) {
	key := transcriptKey(deviceID, companionType)

	vals, err := s.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	entries := make([]TranscriptEntry, 0, len(vals))
	for _, v := range vals {
		var entry TranscriptEntry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			continue // skip malformed entries
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear deletes the transcript for a device+companion pair.
func (s *TranscriptStore) Clear(ctx context.Context, deviceID, companionType string) error {
	return s.client.Del(ctx, transcriptKey(deviceID, companionType)).Err()
}
