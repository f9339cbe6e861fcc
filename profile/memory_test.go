package profile

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/edurec/core"
)

func record(userID, contentID string, typ core.InteractionType, weight float64) *core.InteractionRecord {
	return &core.InteractionRecord{
		UserID:    userID,
		ContentID: contentID,
		Type:      typ,
		Timestamp: time.Now(),
		Weight:    weight,
	}
}

func TestMemoryStoreApplyInteraction(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	// 预置带标签的内容画像
	cp := core.NewContentProfile("c1")
	cp.Tags = map[string]float64{"go": 1.0, "beginner": 0.5}
	if err := m.UpsertContentProfile(ctx, cp); err != nil {
		t.Fatal(err)
	}

	if err := m.ApplyInteraction(ctx, record("u1", "c1", core.InteractionLike, 0.5)); err != nil {
		t.Fatal(err)
	}

	user, err := m.GetUserProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("user profile should be lazily created: %v", err)
	}
	if got := user.ContentAffinity["c1"]; got != 0.5 {
		t.Errorf("affinity = %v, want 0.5", got)
	}
	// Preferences[tag] += weight * tagWeight
	if got := user.Preferences["go"]; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("preferences[go] = %v, want 0.5", got)
	}
	if got := user.Preferences["beginner"]; math.Abs(got-0.25) > 1e-9 {
		t.Errorf("preferences[beginner] = %v, want 0.25", got)
	}
	if len(user.History) != 1 {
		t.Errorf("history size = %d, want 1", len(user.History))
	}

	content, err := m.GetContentProfile(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if content.TotalInteractions != 1 {
		t.Errorf("total interactions = %d, want 1", content.TotalInteractions)
	}
	if content.Popularity != 0.5 {
		t.Errorf("popularity = %v, want 0.5", content.Popularity)
	}
	if content.InteractionBreakdown[core.InteractionLike] != 1 {
		t.Errorf("breakdown[like] = %d, want 1", content.InteractionBreakdown[core.InteractionLike])
	}
}

func TestMemoryStoreNegativeWeightLowersPopularity(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if err := m.ApplyInteraction(ctx, record("u1", "c1", core.InteractionComplete, 1.0)); err != nil {
		t.Fatal(err)
	}
	if err := m.ApplyInteraction(ctx, record("u2", "c1", core.InteractionSkip, -0.2)); err != nil {
		t.Fatal(err)
	}

	content, _ := m.GetContentProfile(ctx, "c1")
	if math.Abs(content.Popularity-0.8) > 1e-9 {
		t.Errorf("popularity = %v, want 0.8", content.Popularity)
	}
	// TotalInteractions 单调不减
	if content.TotalInteractions != 2 {
		t.Errorf("total interactions = %d, want 2", content.TotalInteractions)
	}
}

func TestMemoryStoreHistoryLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.HistoryLimit = 3

	for i := 0; i < 5; i++ {
		contentID := fmt.Sprintf("c%d", i)
		if err := m.ApplyInteraction(ctx, record("u1", contentID, core.InteractionView, 0.1)); err != nil {
			t.Fatal(err)
		}
	}

	user, _ := m.GetUserProfile(ctx, "u1")
	if len(user.History) != 3 {
		t.Fatalf("history size = %d, want 3", len(user.History))
	}
	if user.History[0].ContentID != "c2" {
		t.Errorf("oldest kept = %s, want c2", user.History[0].ContentID)
	}
}

func TestMemoryStoreUpsertContentKeepsCounters(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if err := m.ApplyInteraction(ctx, record("u1", "c1", core.InteractionComplete, 1.0)); err != nil {
		t.Fatal(err)
	}

	// 目录回填标签不得清零统计
	cp := core.NewContentProfile("c1")
	cp.ContentType = "video"
	cp.Tags = map[string]float64{"go": 1.0}
	if err := m.UpsertContentProfile(ctx, cp); err != nil {
		t.Fatal(err)
	}

	content, _ := m.GetContentProfile(ctx, "c1")
	if content.TotalInteractions != 1 || content.Popularity != 1.0 {
		t.Errorf("counters lost after upsert: total=%d popularity=%v",
			content.TotalInteractions, content.Popularity)
	}
	if content.ContentType != "video" || content.Tags["go"] != 1.0 {
		t.Errorf("catalog fields not applied: type=%s tags=%v", content.ContentType, content.Tags)
	}
}

func TestMemoryStoreTopContentByPopularity(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	m.ApplyInteraction(ctx, record("u1", "c-low", core.InteractionView, 0.1))
	m.ApplyInteraction(ctx, record("u1", "c-high", core.InteractionComplete, 1.0))
	m.ApplyInteraction(ctx, record("u1", "c-mid", core.InteractionLike, 0.5))
	// 同热度：按 ID 升序
	m.ApplyInteraction(ctx, record("u2", "c-also-mid", core.InteractionLike, 0.5))

	top, err := m.TopContentByPopularity(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 {
		t.Fatalf("len = %d, want 3", len(top))
	}
	want := []string{"c-high", "c-also-mid", "c-mid"}
	for i, w := range want {
		if top[i].ContentID != w {
			t.Errorf("top[%d] = %s, want %s", i, top[i].ContentID, w)
		}
	}
}

func TestMemoryStoreConcurrentApply(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	const users = 8
	const perUser = 50

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", i)
			for j := 0; j < perUser; j++ {
				if err := m.ApplyInteraction(ctx, record(userID, "shared", core.InteractionView, 0.1)); err != nil {
					t.Error(err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	content, err := m.GetContentProfile(ctx, "shared")
	if err != nil {
		t.Fatal(err)
	}
	if content.TotalInteractions != users*perUser {
		t.Errorf("total interactions = %d, want %d", content.TotalInteractions, users*perUser)
	}
	for i := 0; i < users; i++ {
		user, err := m.GetUserProfile(ctx, fmt.Sprintf("u%d", i))
		if err != nil {
			t.Fatal(err)
		}
		if len(user.History) != perUser {
			t.Errorf("u%d history = %d, want %d", i, len(user.History), perUser)
		}
	}
}
