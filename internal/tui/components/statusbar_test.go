package components

import (
	"strings"
	"testing"
)

func TestStatusBar_Render(t *testing.T) {
	tests := []struct {
		name  string
		hints []KeyHint
		note  string
		want  []string
	}{
		{
			name:  "single hint",
			hints: []KeyHint{{Key: "q", Desc: "quit"}},
			want:  []string{"q quit"},
		},
		{
			name:  "hints joined with separator",
			hints: []KeyHint{{Key: "r", Desc: "reload"}, {Key: "q", Desc: "quit"}},
			want:  []string{"r reload • q quit"},
		},
		{
			name:  "note is appended",
			hints: []KeyHint{{Key: "q", Desc: "quit"}},
			note:  "session: demo",
			want:  []string{"q quit", "session: demo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewStatusBar(tt.hints...).Render(60, tt.note)
			for _, w := range tt.want {
				if !strings.Contains(result, w) {
					t.Errorf("expected %q in %q", w, result)
				}
			}
		})
	}
}

func TestStatusBar_Render_Empty(t *testing.T) {
	result := NewStatusBar().Render(20, "")
	if strings.TrimSpace(result) != "" {
		t.Errorf("expected blank bar, got %q", result)
	}
}

func TestStatusBar_Render_NarrowWidthKeepsNote(t *testing.T) {
	bar := NewStatusBar(KeyHint{Key: "q", Desc: "quit"})
	result := bar.Render(5, "note")
	if !strings.Contains(result, "note") {
		t.Errorf("expected note in narrow bar, got %q", result)
	}
}
