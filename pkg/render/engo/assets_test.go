// pkg/render/engo/assets_test.go
package engo

import (
	"image/color"
	"testing"

	"github.com/opd-ai/go-walker/pkg/engine"
)

func TestWalkerIndex(t *testing.T) {
	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{"walker3.torso", 3, true},
		{"walker12.left_hip", 12, true},
		{"walker.torso", 0, false},
		{"walker3", 0, false},
		{"ground", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := walkerIndex(tt.label)
			if got != tt.want || ok != tt.ok {
				t.Errorf("walkerIndex(%q) = %d, %v, want %d, %v", tt.label, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestAssetManager_BodyColor(t *testing.T) {
	am := NewAssetManager()
	tests := []struct {
		name    string
		body    engine.BodyState
		hovered uint64
		grabbed uint64
		want    color.Color
	}{
		{"static", engine.BodyState{ID: 1, Static: true}, 0, 0, am.Static},
		{"dynamic", engine.BodyState{ID: 1}, 0, 0, am.Dynamic},
		{"walker_zero", engine.BodyState{ID: 1, Label: "walker0.torso"}, 0, 0, am.walkerColors[0]},
		{"walker_wraps", engine.BodyState{ID: 1, Label: "walker7.head"}, 0, 0, am.walkerColors[1]},
		{"hovered", engine.BodyState{ID: 1, Static: true}, 1, 0, am.Hovered},
		{"grabbed_beats_hovered", engine.BodyState{ID: 1}, 1, 1, am.Grabbed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := am.BodyColor(tt.body, tt.hovered, tt.grabbed); got != tt.want {
				t.Errorf("BodyColor() = %v, want %v", got, tt.want)
			}
		})
	}
}
