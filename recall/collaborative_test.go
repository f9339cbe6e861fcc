package recall

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/profile"
)

func seedUser(t *testing.T, m *profile.MemoryStore, userID string, prefs map[string]float64, history ...*core.InteractionRecord) *core.UserProfile {
	t.Helper()
	p := core.NewUserProfile(userID)
	for k, v := range prefs {
		p.Preferences[k] = v
	}
	p.History = history
	if err := m.UpsertUserProfile(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func interaction(userID, contentID string, typ core.InteractionType) *core.InteractionRecord {
	return &core.InteractionRecord{UserID: userID, ContentID: contentID, Type: typ}
}

func TestCollaborativeRecall(t *testing.T) {
	ctx := context.Background()
	m := profile.NewMemoryStore()

	target := seedUser(t, m, "target", map[string]float64{"go": 1.0})
	// 相似用户：c1 两次正反馈、c2 一次；view 不算正反馈
	seedUser(t, m, "similar", map[string]float64{"go": 1.0, "concurrency": 0.1},
		interaction("similar", "c1", core.InteractionLike),
		interaction("similar", "c1", core.InteractionComplete),
		interaction("similar", "c2", core.InteractionShare),
		interaction("similar", "c3", core.InteractionView),
	)
	// 不相似用户：偏好正交，不参与打分
	seedUser(t, m, "other", map[string]float64{"python": 1.0},
		interaction("other", "c9", core.InteractionLike),
	)

	r := &Collaborative{Profiles: m}
	items, err := r.Recall(ctx, &core.RecommendContext{UserID: "target", User: target}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 (c1, c2)", len(items))
	}
	// score = Σ(sim*count) / Σ(sim)：单个相似用户时退化为 count
	if items[0].ID != "c1" || math.Abs(items[0].Score-2.0) > 1e-9 {
		t.Errorf("items[0] = %s score=%v, want c1 score=2", items[0].ID, items[0].Score)
	}
	if items[1].ID != "c2" || math.Abs(items[1].Score-1.0) > 1e-9 {
		t.Errorf("items[1] = %s score=%v, want c2 score=1", items[1].ID, items[1].Score)
	}
	if got := items[0].Label("recall_source"); got != "collaborative" {
		t.Errorf("recall_source = %q, want collaborative", got)
	}
	if got := items[0].Label("reason"); got != "similar users' preferences" {
		t.Errorf("reason = %q", got)
	}
}

func TestCollaborativeRecallExclude(t *testing.T) {
	ctx := context.Background()
	m := profile.NewMemoryStore()

	target := seedUser(t, m, "target", map[string]float64{"go": 1.0})
	seedUser(t, m, "similar", map[string]float64{"go": 1.0},
		interaction("similar", "c1", core.InteractionLike),
		interaction("similar", "c2", core.InteractionLike),
	)

	r := &Collaborative{Profiles: m}
	items, err := r.Recall(ctx, &core.RecommendContext{
		UserID:  "target",
		User:    target,
		Exclude: map[string]bool{"c1": true},
	}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "c2" {
		t.Fatalf("items = %v, want [c2]", items)
	}
}

func TestCollaborativeRecallColdStart(t *testing.T) {
	r := &Collaborative{Profiles: profile.NewMemoryStore()}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "nobody"}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("cold start should yield no items, got %d", len(items))
	}
}

func TestCollaborativeRecallThreshold(t *testing.T) {
	ctx := context.Background()
	m := profile.NewMemoryStore()

	target := seedUser(t, m, "target", map[string]float64{"go": 1.0})
	// 相似度恰好在阈值之下的用户不参与
	seedUser(t, m, "weak", map[string]float64{"go": 0.1, "python": 1.0},
		interaction("weak", "c1", core.InteractionLike),
	)

	r := &Collaborative{Profiles: m, SimilarUserThreshold: 0.5}
	items, err := r.Recall(ctx, &core.RecommendContext{UserID: "target", User: target}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("below-threshold user should not contribute, got %d items", len(items))
	}
}
