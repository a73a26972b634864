// Package leaderboard keeps per-family quiz rankings in Redis sorted sets.
// A nil *Board is valid and records nothing, so the server runs without Redis.
package leaderboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"chorequest/internal/models"
)

// Entry is one ranked child
type Entry struct {
	ChildID int64  `json:"childId"`
	Name    string `json:"name,omitempty"`
	Score   int64  `json:"score"`
	Rank    int64  `json:"rank"`
}

// Board wraps the Redis client holding the rankings
type Board struct {
	client *redis.Client
}

// New connects to Redis at addr. An empty addr disables the leaderboard.
func New(ctx context.Context, addr, password string) (*Board, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Board{client: client}, nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client) *Board {
	return &Board{client: client}
}

// Key is the sorted set holding one family's best scores in a category
func Key(familyID int64, category models.QuizCategory) string {
	return fmt.Sprintf("leaderboard:%d:%s", familyID, category)
}

// Record stores score for the child if it beats the child's best
func (b *Board) Record(ctx context.Context, familyID, childID int64, category models.QuizCategory, score int) error {
	if b == nil {
		return nil
	}
	return b.client.ZAddGT(ctx, Key(familyID, category), redis.Z{
		Score:  float64(score),
		Member: strconv.FormatInt(childID, 10),
	}).Err()
}

// DefaultLimit is used when Top is asked for a non-positive number of entries
const DefaultLimit = 10

// stopIndex is the inclusive ZREVRANGE end for limit entries
func stopIndex(limit int64) int64 {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return limit - 1
}

// Top returns the best limit children, highest score first
func (b *Board) Top(ctx context.Context, familyID int64, category models.QuizCategory, limit int64) ([]Entry, error) {
	if b == nil {
		return nil, nil
	}
	results, err := b.client.ZRevRangeWithScores(ctx, Key(familyID, category), 0, stopIndex(limit)).Result()
	if err != nil {
		return nil, err
	}
	return toEntries(results), nil
}

// Close releases the Redis connection
func (b *Board) Close() error {
	if b == nil {
		return nil
	}
	return b.client.Close()
}

func toEntries(results []redis.Z) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, result := range results {
		member, ok := result.Member.(string)
		if !ok {
			continue
		}
		childID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			ChildID: childID,
			Score:   int64(result.Score),
			Rank:    int64(len(entries)) + 1,
		})
	}
	return entries
}
