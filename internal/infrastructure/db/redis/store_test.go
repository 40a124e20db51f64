package redis

import (
	"context"
	"os"
	"testing"

	"github.com/noteapp/client/internal/infrastructure/db/storetest"
)

// Needs a live server: REDIS_TEST_ADDR=localhost:6379 go test ./...
func TestStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	s, err := Open(context.Background(), Config{Addr: addr, Prefix: "noteapp-test:" + t.Name() + ":"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	t.Cleanup(func() {
		ctx := context.Background()
		for _, k := range []string{"userData", "adminData", "empty"} {
			_ = s.Delete(ctx, k)
		}
	})

	storetest.Run(t, s)
}

func TestStore_KeyPrefix(t *testing.T) {
	if got := NewStore(nil, "").key("userData"); got != "noteapp:userData" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := NewStore(nil, "x:").key("likes"); got != "x:likes" {
		t.Fatalf("unexpected key %q", got)
	}
}
