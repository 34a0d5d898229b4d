package redis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/schoolsite/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordsKey(t *testing.T) {
	if got := recordsKey(domain.EntityPosts, 4); got != "schoolsite:posts:4" {
		t.Errorf("unexpected scoped key: %q", got)
	}
	if got := recordsKey(domain.EntitySchools, 0); got != "schoolsite:schools" {
		t.Errorf("unexpected catalog key: %q", got)
	}
	if got := seqKey(domain.EntityStaff); got != "schoolsite:staff:seq" {
		t.Errorf("unexpected seq key: %q", got)
	}
}

func TestSelectRecords(t *testing.T) {
	values := map[string]string{
		"1": `{"id":1,"school_id":1,"title":"Old","is_published":true,"created_at":"2024-01-01T00:00:00Z"}`,
		"2": `{"id":2,"school_id":1,"title":"Draft","is_published":false,"created_at":"2024-03-01T00:00:00Z"}`,
		"3": `{"id":3,"school_id":1,"title":"New","is_published":true,"created_at":"2024-02-01T00:00:00Z"}`,
		"4": `{"id":4,"school_id":2,"title":"Foreign","is_published":true,"created_at":"2024-04-01T00:00:00Z"}`,
		"5": `not json`,
	}

	t.Run("Filter And Order", func(t *testing.T) {
		got, err := selectRecords(values, domain.EntityPosts, domain.Filter{
			TenantID:   1,
			Where:      map[string]any{"is_published": true},
			OrderBy:    "created_at",
			Descending: true,
		}, discardLogger())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
		var first struct{ Title string }
		if err := json.Unmarshal(got[0], &first); err != nil {
			t.Fatalf("failed to decode record: %v", err)
		}
		if first.Title != "New" {
			t.Errorf("expected newest post first, got %q", first.Title)
		}
	})

	t.Run("Foreign Records Skipped", func(t *testing.T) {
		got, _ := selectRecords(values, domain.EntityPosts, domain.Filter{TenantID: 1}, discardLogger())
		if len(got) != 3 {
			t.Fatalf("expected 3 records for tenant 1, got %d", len(got))
		}
	})

	t.Run("Fractional Seconds Ordered By Instant", func(t *testing.T) {
		values := map[string]string{
			"1": `{"id":1,"school_id":1,"created_at":"2024-01-01T10:00:00Z"}`,
			"2": `{"id":2,"school_id":1,"created_at":"2024-01-01T10:00:00.5Z"}`,
		}
		got, err := selectRecords(values, domain.EntityPosts, domain.Filter{
			TenantID:   1,
			OrderBy:    "created_at",
			Descending: true,
		}, discardLogger())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var first struct{ ID int64 }
		if err := json.Unmarshal(got[0], &first); err != nil {
			t.Fatalf("failed to decode record: %v", err)
		}
		if first.ID != 2 {
			t.Errorf("expected post 2 first, got %d", first.ID)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		got, _ := selectRecords(values, domain.EntityPosts, domain.Filter{TenantID: 1, OrderBy: "id", Limit: 1}, discardLogger())
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
	})
}

func TestMergeRecord(t *testing.T) {
	current := json.RawMessage(`{"id":3,"school_id":1,"name":"Budi","position":"Teacher"}`)
	patch := json.RawMessage(`{"id":99,"school_id":2,"position":"Principal"}`)

	merged, err := mergeRecord(current, patch, domain.EntityStaff, 3, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := `{"id":3,"name":"Budi","position":"Principal","school_id":1}`
	if string(merged) != want {
		t.Errorf("unexpected merge result: got %s, want %s", merged, want)
	}
}

func TestInsertRecord(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

	t.Run("Stamps Created At", func(t *testing.T) {
		got, err := insertRecord(json.RawMessage(`{"title":"Hi","school_id":9}`), domain.EntityPosts, 7, 1, now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := `{"created_at":"2024-05-01T08:30:00Z","id":7,"school_id":1,"title":"Hi"}`
		if string(got) != want {
			t.Errorf("unexpected record: got %s, want %s", got, want)
		}
	})

	t.Run("Keeps Supplied Created At", func(t *testing.T) {
		got, err := insertRecord(json.RawMessage(`{"created_at":"2023-01-01T00:00:00Z"}`), domain.EntityPosts, 8, 1, now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := `{"created_at":"2023-01-01T00:00:00Z","id":8,"school_id":1}`
		if string(got) != want {
			t.Errorf("unexpected record: got %s, want %s", got, want)
		}
	})
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		a, b any
		want int
	}{
		{json.Number("2"), json.Number("10"), -1},
		{"b", "a", 1},
		{nil, "a", -1},
		{true, false, 1},
		{json.Number("1"), json.Number("1.0"), 0},
		{"2024-01-01T10:00:00.5Z", "2024-01-01T10:00:00Z", 1},
		{"2024-01-01T12:00:00+02:00", "2024-01-01T10:00:00Z", 0},
	}
	for _, tt := range tests {
		if got := compareValues(tt.a, tt.b); got != tt.want {
			t.Errorf("compareValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

// TestClient_Live exercises a real server when SCHOOLSITE_TEST_REDIS_URL is set.
func TestClient_Live(t *testing.T) {
	url := os.Getenv("SCHOOLSITE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SCHOOLSITE_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}
	ctx := context.Background()
	client, err := Open(ctx, opts, discardLogger())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()
	t.Cleanup(func() {
		client.rdb.Del(ctx, recordsKey(domain.EntityStaff, 424242), seqKey(domain.EntityStaff))
	})

	created, err := client.Mutate(ctx, domain.EntityStaff, domain.Mutation{
		Op:       domain.OpInsert,
		TenantID: 424242,
		Payload:  json.RawMessage(`{"name":"Budi","is_public":true}`),
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	var staff domain.Staff
	if err := json.Unmarshal(created, &staff); err != nil {
		t.Fatalf("failed to decode insert result: %v", err)
	}

	records, err := client.Query(ctx, domain.EntityStaff, domain.Filter{TenantID: 424242, Where: map[string]any{"is_public": true}})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	if _, err := client.Mutate(ctx, domain.EntityStaff, domain.Mutation{Op: domain.OpDelete, TenantID: 424242, ID: staff.ID}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}
