package conversation

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RecordStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRecordStore(client), mr
}

func TestRecordStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	rec := NewRecord(Customer{Name: "Maria", Address: "+5512981234567"}, "#sk-00042", "prompt")
	rec.Append(ChatRoleUser, "Quero uma pizza de calabresa")

	if err := store.Save(ctx, "+5512981234567", rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !mr.Exists("customer:+5512981234567:chat") {
		t.Fatal("expected record under customer:<address>:chat key")
	}

	loaded, err := store.Load(ctx, "+5512981234567")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a record")
	}
	if loaded.OrderCode != rec.OrderCode {
		t.Fatalf("order code mismatch: %q vs %q", loaded.OrderCode, rec.OrderCode)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded.Messages))
	}
	if !loaded.IsOpen() {
		t.Fatal("loaded record should be open")
	}
}

func TestRecordStoreLoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	rec, err := store.Load(context.Background(), "+5511999999999")
	if err != nil {
		t.Fatalf("missing key should not error: %v", err)
	}
	if rec != nil {
		t.Fatal("missing key should load as nil record")
	}
}

func TestRecordStoreLoadMalformedPayload(t *testing.T) {
	store, mr := newTestStore(t)

	if err := mr.Set("customer:+5511999999999:chat", "not json at all"); err != nil {
		t.Fatalf("seed malformed value: %v", err)
	}

	rec, err := store.Load(context.Background(), "+5511999999999")
	if err != nil {
		t.Fatalf("malformed payload should not error: %v", err)
	}
	if rec != nil {
		t.Fatal("malformed payload should be treated as no open conversation")
	}
}

func TestRecordStoreSaveHasNoTTL(t *testing.T) {
	store, mr := newTestStore(t)

	rec := NewRecord(Customer{Address: "+5512981234567"}, "#sk-00042", "prompt")
	if err := store.Save(context.Background(), "+5512981234567", rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if ttl := mr.TTL("customer:+5512981234567:chat"); ttl != 0 {
		t.Fatalf("records must not expire, got TTL %v", ttl)
	}
}
