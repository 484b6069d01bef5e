package natsadapter

import "testing"

func TestShapeSubject(t *testing.T) {
	tests := []struct {
		action, session, want string
	}{
		{"created", "abc", "mapdraw.shapes.created.abc"},
		{"deleted", "6f1c", "mapdraw.shapes.deleted.6f1c"},
	}
	for _, tt := range tests {
		if got := ShapeSubject(tt.action, tt.session); got != tt.want {
			t.Errorf("ShapeSubject(%q, %q) = %q, want %q", tt.action, tt.session, got, tt.want)
		}
	}
}
