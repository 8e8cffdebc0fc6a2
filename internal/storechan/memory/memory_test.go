package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/duelboard/duelboard/internal/storechan"
)

func TestChannelRoundTrip(t *testing.T) {
	ctx := context.Background()
	ch := New()

	if err := ch.Append(ctx, "scope-1", "a-001", []byte("one")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := ch.Append(ctx, "scope-1", "a-002", []byte("two")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := ch.Append(ctx, "scope-2", "b-001", []byte("other")); err != nil {
		t.Fatalf("append: %v", err)
	}

	names, err := ch.List(ctx, "scope-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "a-002" || names[1] != "a-001" {
		t.Fatalf("names = %v, want [a-002 a-001]", names)
	}

	payload, err := ch.Fetch(ctx, "scope-1", "a-001")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(payload) != "one" {
		t.Fatalf("payload = %q, want %q", payload, "one")
	}

	scopes, err := ch.Scopes(ctx)
	if err != nil {
		t.Fatalf("scopes: %v", err)
	}
	if len(scopes) != 2 || scopes[0] != "scope-1" || scopes[1] != "scope-2" {
		t.Fatalf("scopes = %v, want [scope-1 scope-2]", scopes)
	}
}

func TestChannelListLimit(t *testing.T) {
	ctx := context.Background()
	ch := New()
	for _, name := range []string{"r-001", "r-002", "r-003"} {
		if err := ch.Append(ctx, "scope-1", name, []byte("x")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	names, err := ch.List(ctx, "scope-1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "r-003" || names[1] != "r-002" {
		t.Fatalf("names = %v, want [r-003 r-002]", names)
	}
}

func TestChannelFetchMissing(t *testing.T) {
	ctx := context.Background()
	ch := New()

	if _, err := ch.Fetch(ctx, "scope-1", "nope"); !errors.Is(err, storechan.ErrNotFound) {
		t.Fatalf("fetch missing = %v, want ErrNotFound", err)
	}
}

func TestChannelDelete(t *testing.T) {
	ctx := context.Background()
	ch := New()
	if err := ch.Append(ctx, "scope-1", "a-001", []byte("one")); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := ch.Delete(ctx, "scope-1", "a-001"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := ch.Fetch(ctx, "scope-1", "a-001"); !errors.Is(err, storechan.ErrNotFound) {
		t.Fatalf("fetch deleted = %v, want ErrNotFound", err)
	}
	// Deleting again is a no-op.
	if err := ch.Delete(ctx, "scope-1", "a-001"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	scopes, err := ch.Scopes(ctx)
	if err != nil {
		t.Fatalf("scopes: %v", err)
	}
	if len(scopes) != 0 {
		t.Fatalf("scopes = %v, want empty", scopes)
	}
}

func TestChannelAppendOverwritesSameName(t *testing.T) {
	ctx := context.Background()
	ch := New()
	if err := ch.Append(ctx, "scope-1", "a-001", []byte("one")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := ch.Append(ctx, "scope-1", "a-001", []byte("two")); err != nil {
		t.Fatalf("append: %v", err)
	}

	payload, err := ch.Fetch(ctx, "scope-1", "a-001")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(payload) != "two" {
		t.Fatalf("payload = %q, want %q", payload, "two")
	}
}
