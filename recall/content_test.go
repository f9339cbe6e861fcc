package recall

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/profile"
)

func seedContent(t *testing.T, m *profile.MemoryStore, contentID, contentType string, tags map[string]float64) {
	t.Helper()
	c := core.NewContentProfile(contentID)
	c.ContentType = contentType
	for k, v := range tags {
		c.Tags[k] = v
	}
	if err := m.UpsertContentProfile(context.Background(), c); err != nil {
		t.Fatal(err)
	}
}

func TestContentBasedRecall(t *testing.T) {
	ctx := context.Background()
	m := profile.NewMemoryStore()

	seedContent(t, m, "seed", "video", map[string]float64{"go": 1.0})
	seedContent(t, m, "similar", "video", map[string]float64{"go": 1.0, "concurrency": 0.2})
	seedContent(t, m, "unrelated", "video", map[string]float64{"python": 1.0})

	// like 的内容作为种子；与种子相似的候选进入召回
	user := seedUser(t, m, "u1", map[string]float64{"go": 0.5},
		interaction("u1", "seed", core.InteractionLike),
	)

	r := &ContentBased{Profiles: m}
	items, err := r.Recall(ctx, &core.RecommendContext{UserID: "u1", User: user}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (similar)", len(items))
	}
	it := items[0]
	if it.ID != "similar" {
		t.Fatalf("items[0] = %s, want similar", it.ID)
	}
	// score = Σ(tagW*pref)/Σ(tagW) = (1*0.5 + 0.2*0) / 1.2
	want := 0.5 / 1.2
	if math.Abs(it.Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", it.Score, want)
	}
	if got := it.Label("recall_source"); got != "content_based" {
		t.Errorf("recall_source = %q, want content_based", got)
	}
	if got := it.Label("reason"); got != "content preferences" {
		t.Errorf("reason = %q", got)
	}
}

func TestContentBasedRecallSkipsSeedsAndExcluded(t *testing.T) {
	ctx := context.Background()
	m := profile.NewMemoryStore()

	seedContent(t, m, "seed-a", "video", map[string]float64{"go": 1.0})
	seedContent(t, m, "seed-b", "video", map[string]float64{"go": 1.0})
	seedContent(t, m, "cand", "video", map[string]float64{"go": 1.0})
	seedContent(t, m, "blocked", "video", map[string]float64{"go": 1.0})

	user := seedUser(t, m, "u1", map[string]float64{"go": 1.0},
		interaction("u1", "seed-a", core.InteractionLike),
		interaction("u1", "seed-b", core.InteractionComplete),
	)

	r := &ContentBased{Profiles: m}
	items, err := r.Recall(ctx, &core.RecommendContext{
		UserID:  "u1",
		User:    user,
		Exclude: map[string]bool{"blocked": true},
	}, 10)
	if err != nil {
		t.Fatal(err)
	}
	// 种子本身与显式排除的内容都不出现在候选中
	if len(items) != 1 || items[0].ID != "cand" {
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		t.Fatalf("items = %v, want [cand]", ids)
	}
}

func TestContentBasedRecallNoSeeds(t *testing.T) {
	ctx := context.Background()
	m := profile.NewMemoryStore()
	seedContent(t, m, "c1", "video", map[string]float64{"go": 1.0})

	// 只有 view 历史：没有种子，返回空
	user := seedUser(t, m, "u1", map[string]float64{"go": 0.1},
		interaction("u1", "c1", core.InteractionView),
	)

	r := &ContentBased{Profiles: m}
	items, err := r.Recall(ctx, &core.RecommendContext{UserID: "u1", User: user}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestContentBasedRecallPerSeedLimit(t *testing.T) {
	ctx := context.Background()
	m := profile.NewMemoryStore()

	seedContent(t, m, "seed", "video", map[string]float64{"go": 1.0})
	// 相似度依次递减的五个候选，PerSeed=2 只保留前两个
	seedContent(t, m, "a", "video", map[string]float64{"go": 1.0})
	seedContent(t, m, "b", "video", map[string]float64{"go": 1.0, "x": 0.1})
	seedContent(t, m, "c", "video", map[string]float64{"go": 1.0, "x": 0.5})
	seedContent(t, m, "d", "video", map[string]float64{"go": 1.0, "x": 1.0})
	seedContent(t, m, "e", "video", map[string]float64{"go": 1.0, "x": 2.0})

	user := seedUser(t, m, "u1", map[string]float64{"go": 1.0},
		interaction("u1", "seed", core.InteractionLike),
	)

	r := &ContentBased{Profiles: m, SimilarPerSeed: 2}
	items, err := r.Recall(ctx, &core.RecommendContext{UserID: "u1", User: user}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 (per-seed limit)", len(items))
	}
	got := map[string]bool{items[0].ID: true, items[1].ID: true}
	if !got["a"] || !got["b"] {
		t.Errorf("items = %v, want {a, b}", got)
	}
}

func TestPopularRecall(t *testing.T) {
	ctx := context.Background()
	m := profile.NewMemoryStore()

	for contentID, pop := range map[string]float64{"hot": 5, "warm": 3, "cold": 1} {
		c := core.NewContentProfile(contentID)
		if err := m.UpsertContentProfile(ctx, c); err != nil {
			t.Fatal(err)
		}
		// 热度来自交互累积
		if err := m.ApplyInteraction(ctx, &core.InteractionRecord{
			UserID: "someone", ContentID: contentID, Type: core.InteractionComplete, Weight: pop,
		}); err != nil {
			t.Fatal(err)
		}
	}

	r := &Popular{Profiles: m}
	items, err := r.Recall(ctx, &core.RecommendContext{Exclude: map[string]bool{"hot": true}}, 2)
	if err != nil {
		t.Fatal(err)
	}
	// 排除 hot 后名额由 warm / cold 补上
	if len(items) != 2 || items[0].ID != "warm" || items[1].ID != "cold" {
		t.Fatalf("items = %v, want [warm cold]", items)
	}
	if got := items[0].Label("reason"); got != "popular content" {
		t.Errorf("reason = %q, want popular content", got)
	}
}
