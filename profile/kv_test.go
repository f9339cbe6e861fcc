package profile

import (
	"context"
	"testing"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/store"
)

// KVStore 的行为应与 MemoryStore 一致：同一套交互落库后
// 画像内容与热度排行都可读回。
func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	s := NewKVStore(kv)

	cp := core.NewContentProfile("c1")
	cp.Tags = map[string]float64{"go": 1.0}
	if err := s.UpsertContentProfile(ctx, cp); err != nil {
		t.Fatal(err)
	}

	if err := s.ApplyInteraction(ctx, record("u1", "c1", core.InteractionLike, 0.5)); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyInteraction(ctx, record("u1", "c2", core.InteractionComplete, 1.0)); err != nil {
		t.Fatal(err)
	}

	user, err := s.GetUserProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if user.ContentAffinity["c1"] != 0.5 || user.ContentAffinity["c2"] != 1.0 {
		t.Errorf("affinity = %v", user.ContentAffinity)
	}
	if user.Preferences["go"] != 0.5 {
		t.Errorf("preferences = %v", user.Preferences)
	}
	if len(user.History) != 2 {
		t.Errorf("history = %d, want 2", len(user.History))
	}

	if _, err := s.GetUserProfile(ctx, "nobody"); !core.IsNotFound(err) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}

	ids, err := s.UserIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "u1" {
		t.Errorf("UserIDs = %v, %v", ids, err)
	}
	contents, err := s.ContentIDs(ctx)
	if err != nil || len(contents) != 2 {
		t.Errorf("ContentIDs = %v, %v", contents, err)
	}

	// 热度排行走 zset：c2(1.0) > c1(0.5)
	top, err := s.TopContentByPopularity(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].ContentID != "c2" || top[1].ContentID != "c1" {
		ids := make([]string, 0, len(top))
		for _, c := range top {
			ids = append(ids, c.ContentID)
		}
		t.Errorf("top = %v, want [c2 c1]", ids)
	}
}

func TestKVStoreHistoryLimit(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	s := NewKVStore(kv)
	s.HistoryLimit = 2

	for _, contentID := range []string{"a", "b", "c"} {
		if err := s.ApplyInteraction(ctx, record("u1", contentID, core.InteractionView, 0.1)); err != nil {
			t.Fatal(err)
		}
	}

	user, err := s.GetUserProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(user.History) != 2 {
		t.Fatalf("history = %d, want 2", len(user.History))
	}
	if user.History[0].ContentID != "b" || user.History[1].ContentID != "c" {
		t.Errorf("kept = [%s %s], want [b c]", user.History[0].ContentID, user.History[1].ContentID)
	}
}
