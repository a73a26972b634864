package leaderboard

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"chorequest/internal/models"
)

func TestKey(t *testing.T) {
	if got := Key(3, models.QuizMath); got != "leaderboard:3:MATH" {
		t.Errorf("Key() = %q", got)
	}
}

func TestNilBoardIsNoop(t *testing.T) {
	var b *Board
	ctx := context.Background()

	if err := b.Record(ctx, 1, 2, models.QuizMath, 5); err != nil {
		t.Errorf("Record() error = %v", err)
	}
	entries, err := b.Top(ctx, 1, models.QuizMath, 10)
	if err != nil || entries != nil {
		t.Errorf("Top() = %v, %v", entries, err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewWithoutAddressDisables(t *testing.T) {
	b, err := New(context.Background(), "", "")
	if err != nil || b != nil {
		t.Errorf("New(\"\") = %v, %v", b, err)
	}
}

func TestToEntries(t *testing.T) {
	results := []redis.Z{
		{Score: 12, Member: "7"},
		{Score: 9, Member: "bogus"},
		{Score: 4, Member: "3"},
	}
	entries := toEntries(results)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ChildID != 7 || entries[0].Rank != 1 || entries[0].Score != 12 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].ChildID != 3 || entries[1].Rank != 2 {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestStopIndex(t *testing.T) {
	tests := []struct {
		limit int64
		want  int64
	}{
		{limit: 5, want: 4},
		{limit: 1, want: 0},
		{limit: 0, want: DefaultLimit - 1},
		{limit: -3, want: DefaultLimit - 1},
	}
	for _, tt := range tests {
		if got := stopIndex(tt.limit); got != tt.want {
			t.Errorf("stopIndex(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

// setupTestBoard connects to the Redis at REDIS_ADDR, skipping when none is configured
func setupTestBoard(t *testing.T) (*Board, int64) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	b, err := New(ctx, addr, os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	familyID := time.Now().UnixNano()
	t.Cleanup(func() {
		b.client.Del(ctx, Key(familyID, models.QuizMath), Key(familyID, models.QuizEnglish))
		b.Close()
	})
	return b, familyID
}

func TestBoardKeepsBestScore(t *testing.T) {
	b, familyID := setupTestBoard(t)
	ctx := context.Background()

	for _, rec := range []struct {
		childID int64
		score   int
	}{
		{1, 8},
		{2, 5},
		{1, 3},  // lower than child 1's best
		{2, 11}, // new best for child 2
		{3, 7},
	} {
		if err := b.Record(ctx, familyID, rec.childID, models.QuizMath, rec.score); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	entries, err := b.Top(ctx, familyID, models.QuizMath, 2)
	if err != nil {
		t.Fatalf("Top() error: %v", err)
	}
	want := []Entry{{ChildID: 2, Score: 11, Rank: 1}, {ChildID: 1, Score: 8, Rank: 2}}
	if len(entries) != len(want) {
		t.Fatalf("Top() = %+v, want %+v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}

	all, err := b.Top(ctx, familyID, models.QuizMath, 0)
	if err != nil || len(all) != 3 {
		t.Errorf("Top(limit 0) = %+v, %v, want 3 entries", all, err)
	}

	english, err := b.Top(ctx, familyID, models.QuizEnglish, 5)
	if err != nil || len(english) != 0 {
		t.Errorf("Top(english) = %+v, %v, want none", english, err)
	}
}
