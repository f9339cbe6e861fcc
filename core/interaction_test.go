package core

import "testing"

func TestParseInteractionType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    InteractionType
		wantErr bool
	}{
		{name: "view", input: "view", want: InteractionView},
		{name: "like", input: "like", want: InteractionLike},
		{name: "share", input: "share", want: InteractionShare},
		{name: "complete", input: "complete", want: InteractionComplete},
		{name: "skip", input: "skip", want: InteractionSkip},
		{name: "unknown type rejected", input: "bookmark", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "case sensitive", input: "View", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInteractionType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseInteractionType(%q) expected error", tt.input)
				}
				if !IsInvalidInteraction(err) {
					t.Errorf("error is not INVALID_INTERACTION: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInteractionType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseInteractionType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		typ  InteractionType
		want float64
	}{
		{InteractionView, 0.1},
		{InteractionLike, 0.5},
		{InteractionShare, 0.7},
		{InteractionComplete, 1.0},
		{InteractionSkip, -0.2},
		{InteractionType("unknown"), 0},
	}
	for _, tt := range tests {
		if got := w.Weight(tt.typ); got != tt.want {
			t.Errorf("Weight(%s) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestInteractionTypeIsPositive(t *testing.T) {
	positive := []InteractionType{InteractionLike, InteractionComplete, InteractionShare}
	negative := []InteractionType{InteractionView, InteractionSkip}
	for _, typ := range positive {
		if !typ.IsPositive() {
			t.Errorf("%s should be positive", typ)
		}
	}
	for _, typ := range negative {
		if typ.IsPositive() {
			t.Errorf("%s should not be positive", typ)
		}
	}
}

func TestUserProfileAppendHistory(t *testing.T) {
	p := NewUserProfile("u1")
	for i := 0; i < 5; i++ {
		p.AppendHistory(&InteractionRecord{UserID: "u1", ContentID: string(rune('a' + i))}, 3)
	}
	if len(p.History) != 3 {
		t.Fatalf("history size = %d, want 3", len(p.History))
	}
	// 旧的先淘汰：剩下 c d e
	if p.History[0].ContentID != "c" || p.History[2].ContentID != "e" {
		t.Errorf("history = [%s..%s], want [c..e]", p.History[0].ContentID, p.History[2].ContentID)
	}
}
