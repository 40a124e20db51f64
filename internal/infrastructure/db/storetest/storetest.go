// Package storetest holds the behaviour every ports.KVStore must share.
package storetest

import (
	"context"
	"testing"

	"github.com/noteapp/client/internal/core/ports"
)

// Run exercises s. The store must be empty.
func Run(t *testing.T, s ports.KVStore) {
	t.Helper()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if _, found, err := s.Get(ctx, "userData"); err != nil || found {
		t.Fatalf("get on empty store: found=%v err=%v", found, err)
	}

	if err := s.Set(ctx, "userData", `{"token":"noteApp__a"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "userData", `{"token":"noteApp__b"}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, found, err := s.Get(ctx, "userData")
	if err != nil || !found || v != `{"token":"noteApp__b"}` {
		t.Fatalf("get after overwrite: %q found=%v err=%v", v, found, err)
	}

	if err := s.Set(ctx, "adminData", `{"token":"noteApp__c"}`); err != nil {
		t.Fatalf("set second key: %v", err)
	}
	if err := s.Delete(ctx, "userData"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "userData"); found {
		t.Fatal("key still present after delete")
	}
	if _, found, _ := s.Get(ctx, "adminData"); !found {
		t.Fatal("delete removed an unrelated key")
	}

	if err := s.Delete(ctx, "never-set"); err != nil {
		t.Fatalf("delete of absent key: %v", err)
	}

	if err := s.Set(ctx, "empty", ""); err != nil {
		t.Fatalf("set empty value: %v", err)
	}
	if v, found, _ := s.Get(ctx, "empty"); !found || v != "" {
		t.Fatalf("empty value not round-tripped: %q found=%v", v, found)
	}
}
