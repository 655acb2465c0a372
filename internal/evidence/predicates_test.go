package evidence

import "testing"

func TestStopControlPredicate(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"stop button", Snapshot{Controls: []Control{{Label: "Stop generating", Visible: true}}}, true},
		{"cancel button", Snapshot{Controls: []Control{{Label: "Cancel", Visible: true}}}, true},
		{"hidden stop button", Snapshot{Controls: []Control{{Label: "Stop", Visible: false}}}, false},
		{"send button", Snapshot{Controls: []Control{{Label: "Send message", Visible: true}}}, false},
		{"empty label", Snapshot{Controls: []Control{{Label: "   ", Visible: true}}}, false},
		{"no controls", Snapshot{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (stopControlPredicate{}).Match(tc.snap); got != tc.want {
				t.Fatalf("match=%v want %v", got, tc.want)
			}
		})
	}
}

func TestStatusTextPredicate(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"generating", Snapshot{StatusTexts: []string{"Generating response"}}, true},
		{"thinking", Snapshot{StatusTexts: []string{"Thinking…"}}, true},
		{"streaming mixed case", Snapshot{StatusTexts: []string{"STREAMING"}}, true},
		{"done", Snapshot{StatusTexts: []string{"Done"}}, false},
		{"empty", Snapshot{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (statusTextPredicate{}).Match(tc.snap); got != tc.want {
				t.Fatalf("match=%v want %v", got, tc.want)
			}
		})
	}
}

func TestLoadingGlyphPredicate(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"unicode ellipsis", Snapshot{VisibleTexts: []string{"…"}}, true},
		{"ascii dots", Snapshot{VisibleTexts: []string{" ... "}}, true},
		{"ellipsis inside sentence", Snapshot{VisibleTexts: []string{"wait for it..."}}, false},
		{"plain text", Snapshot{VisibleTexts: []string{"hello"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (loadingGlyphPredicate{}).Match(tc.snap); got != tc.want {
				t.Fatalf("match=%v want %v", got, tc.want)
			}
		})
	}
}

func TestAnimationPredicate(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"spinner class", Snapshot{AnimatedClasses: []string{"msg-spinner small"}}, true},
		{"pulse class", Snapshot{AnimatedClasses: []string{"dot Pulse"}}, true},
		{"animated logo", Snapshot{AnimatedClasses: []string{"brand-logo"}}, false},
		{"no animations", Snapshot{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (animationPredicate{}).Match(tc.snap); got != tc.want {
				t.Fatalf("match=%v want %v", got, tc.want)
			}
		})
	}
}

func TestBusyMarkerPredicate(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"aria busy", Snapshot{MarkerAttrs: []string{"aria-busy=true"}}, true},
		{"data streaming valueless", Snapshot{MarkerAttrs: []string{"data-is-streaming="}}, true},
		{"aria busy false", Snapshot{MarkerAttrs: []string{"aria-busy=false"}}, false},
		{"unrelated attr", Snapshot{MarkerAttrs: []string{"data-theme=dark"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (busyMarkerPredicate{}).Match(tc.snap); got != tc.want {
				t.Fatalf("match=%v want %v", got, tc.want)
			}
		})
	}
}
