package redis

import (
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/duelboard/duelboard/internal/storechan"
)

var _ storechan.Channel = (*Channel)(nil)

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestNewWithClient(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
	defer client.Close()

	ch, err := New(client)
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	if ch == nil {
		t.Fatal("channel is nil")
	}
}

func TestRecordKey(t *testing.T) {
	got := recordKey("scope-1", "scope-1-00000000000000001000.json")
	want := "duelboard:record:scope-1:scope-1-00000000000000001000.json"
	if got != want {
		t.Fatalf("record key = %q, want %q", got, want)
	}
}

func TestIndexKeyIsScopedSeparatelyFromRecords(t *testing.T) {
	if got, want := indexKey("scope-1"), "duelboard:index:scope-1"; got != want {
		t.Fatalf("index key = %q, want %q", got, want)
	}
	if indexKey("scope-1") == recordKey("scope-1", "") {
		t.Fatal("index and record keyspaces collide")
	}
}
