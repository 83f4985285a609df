package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/rueidis"

	"github.com/hazz-dev/kbprobe/internal/config"
)

type redisStore struct {
	client rueidis.Client
	index  string
}

// connectRedis dials Redis via rueidis and verifies connectivity with PING.
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.INFO result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	s := &redisStore{client: client, index: cfg.Collection}

	cmd := client.B().Ping().Build()
	if err := client.Do(ctx, cmd).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return s, nil
}

func (s *redisStore) DBType() string { return "redis" }

func (s *redisStore) CollectionName() string { return s.index }

func (s *redisStore) Close() error {
	s.client.Close()
	return nil
}

// Statistics reads document counters via FT.INFO. A missing index is not an
// error: the indexer simply has not run yet, so all counters are zero.
func (s *redisStore) Statistics(ctx context.Context) (Stats, error) {
	cmd := s.client.B().Arbitrary("FT.INFO").Args(s.index).Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") {
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("FT.INFO %s: %w", s.index, err)
	}

	return parseIndexInfo(raw), nil
}

// parseIndexInfo walks the alternating key/value reply of FT.INFO.
func parseIndexInfo(raw []rueidis.RedisMessage) Stats {
	var stats Stats
	for i := 0; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		switch key {
		case "num_docs":
			if n, err := raw[i+1].AsInt64(); err == nil {
				stats.Documents = n
			}
		case "num_records":
			if n, err := raw[i+1].AsInt64(); err == nil {
				stats.Vectors = n
				stats.IndexedVectors = n
			}
		}
	}
	return stats
}

// isRedisErr checks if err is a Redis server error containing substr
// (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
