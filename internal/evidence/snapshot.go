package evidence

// Control is a clickable control observed on the chat surface.
type Control struct {
	// Label is the accessible name or visible text of the control.
	Label string
	// Visible reports whether the control is currently rendered.
	Visible bool
}

// Snapshot is a point-in-time, queryable view of the chat surface. It is
// plain data: collecting it may touch the DOM, but evaluating predicates
// over it must not. A zero Snapshot means "no evidence" and always infers
// idle.
type Snapshot struct {
	// Controls holds buttons and button-like elements with their labels.
	Controls []Control
	// StatusTexts holds the text content of status-role / live regions.
	StatusTexts []string
	// VisibleTexts holds short visible text runs (candidate loading glyphs).
	VisibleTexts []string
	// AnimatedClasses holds the class attribute of every element with a
	// running CSS animation.
	AnimatedClasses []string
	// MarkerAttrs holds busy/streaming marker attributes as "name=value".
	MarkerAttrs []string
}

// Empty reports whether the snapshot carries no evidence at all.
func (s Snapshot) Empty() bool {
	return len(s.Controls) == 0 && len(s.StatusTexts) == 0 &&
		len(s.VisibleTexts) == 0 && len(s.AnimatedClasses) == 0 &&
		len(s.MarkerAttrs) == 0
}
