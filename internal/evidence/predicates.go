package evidence

import (
	"regexp"
	"strings"
)

// Predicate is one independent busy heuristic. Match must be pure,
// side-effect free, and tolerant of absent structure: missing evidence
// is "not matched", never an error.
type Predicate interface {
	// Name is a short diagnostic label, e.g. "stop-control".
	Name() string
	Match(Snapshot) bool
}

// stopControlWords are labels that mean "abort the in-progress operation".
var stopControlWords = []string{"stop", "cancel", "abort"}

// busyLexicon are status-region words that indicate active generation.
var busyLexicon = []string{"generating", "loading", "thinking", "streaming", "receiving"}

// loadingGlyphs are standalone text runs used as progress indicators.
var loadingGlyphs = []string{"…", "...", "⋯", "•••"}

// animatedClassPattern matches class names used for progress animations.
var animatedClassPattern = regexp.MustCompile(`(?i)(spinner|pulse|loading|stream|typing|shimmer|progress|dots)`)

// busyMarkerPattern matches attribute names that explicitly flag generation.
var busyMarkerPattern = regexp.MustCompile(`(?i)(busy|streaming|generating)`)

// stopControlPredicate matches when a visible control's label means
// "stop/cancel the in-progress operation".
type stopControlPredicate struct{}

func (stopControlPredicate) Name() string { return "stop-control" }

func (stopControlPredicate) Match(s Snapshot) bool {
	for _, c := range s.Controls {
		if !c.Visible {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(c.Label))
		if label == "" {
			continue
		}
		for _, w := range stopControlWords {
			if strings.Contains(label, w) {
				return true
			}
		}
	}
	return false
}

// statusTextPredicate matches when a status-role region's text contains a
// busy-lexicon word.
type statusTextPredicate struct{}

func (statusTextPredicate) Name() string { return "status-text" }

func (statusTextPredicate) Match(s Snapshot) bool {
	for _, t := range s.StatusTexts {
		text := strings.ToLower(t)
		for _, w := range busyLexicon {
			if strings.Contains(text, w) {
				return true
			}
		}
	}
	return false
}

// loadingGlyphPredicate matches when a visible text run is an ellipsis or
// loading glyph on its own.
type loadingGlyphPredicate struct{}

func (loadingGlyphPredicate) Name() string { return "loading-glyph" }

func (loadingGlyphPredicate) Match(s Snapshot) bool {
	for _, t := range s.VisibleTexts {
		trimmed := strings.TrimSpace(t)
		for _, g := range loadingGlyphs {
			if trimmed == g {
				return true
			}
		}
	}
	return false
}

// animationPredicate matches when an element with a running CSS animation
// carries a spinner/pulse/stream style class name. The class filter keeps a
// permanently animated logo from pinning the verdict to busy.
type animationPredicate struct{}

func (animationPredicate) Name() string { return "active-animation" }

func (animationPredicate) Match(s Snapshot) bool {
	for _, cls := range s.AnimatedClasses {
		if animatedClassPattern.MatchString(cls) {
			return true
		}
	}
	return false
}

// busyMarkerPredicate matches an explicit busy/streaming marker attribute,
// e.g. aria-busy="true" or data-is-streaming.
type busyMarkerPredicate struct{}

func (busyMarkerPredicate) Name() string { return "busy-marker" }

func (busyMarkerPredicate) Match(s Snapshot) bool {
	for _, attr := range s.MarkerAttrs {
		name, value, _ := strings.Cut(attr, "=")
		if !busyMarkerPattern.MatchString(name) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(value), "false") {
			continue
		}
		return true
	}
	return false
}

// DefaultPredicates returns the built-in heuristics, cheapest and most
// reliable first. Order never changes the verdict, only which diagnostic
// label is reported.
func DefaultPredicates() []Predicate {
	return []Predicate{
		busyMarkerPredicate{},
		stopControlPredicate{},
		statusTextPredicate{},
		loadingGlyphPredicate{},
		animationPredicate{},
	}
}
