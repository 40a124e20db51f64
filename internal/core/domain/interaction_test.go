package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestComment_CreatedAtOmittedWhenUnknown(t *testing.T) {
	raw, err := json.Marshal(Comment{ID: "c1", Content: "hi"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "createdAt") {
		t.Fatalf("undated comment should omit createdAt: %s", raw)
	}

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, _ = json.Marshal(Comment{ID: "c1", Content: "hi", CreatedAt: &at})
	if !strings.Contains(string(raw), `"createdAt":"2025-03-01T12:00:00Z"`) {
		t.Fatalf("dated comment lost its timestamp: %s", raw)
	}
}

func TestComment_DecodesBackendDate(t *testing.T) {
	var c Comment
	if err := json.Unmarshal([]byte(`{"_id":"c1","content":"hi","createdAt":"2025-03-01T12:00:00Z"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.CreatedAt == nil || c.CreatedAt.Year() != 2025 {
		t.Fatalf("unexpected createdAt: %v", c.CreatedAt)
	}
}

func TestInteractionKind_Valid(t *testing.T) {
	for _, k := range []InteractionKind{KindLike, KindSave, KindCommentsVisible} {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	if InteractionKind("share").Valid() {
		t.Error("unknown kind reported valid")
	}
}
