// Package evidence infers whether the remote generation process is busy or
// idle from ambient signals scraped off the chat surface. The state is never
// directly observable; it is reconstructed from noisy heuristics, each modeled
// as an independent Predicate. The reduction is a short-circuit OR: any match
// means busy, no match means idle. The asymmetry matters: a false busy only
// delays dispatch, while a false idle risks a premature send.
package evidence

// Verdict is the inferred generation state.
type Verdict string

const (
	VerdictBusy Verdict = "busy"
	VerdictIdle Verdict = "idle"
)

// Engine reduces a snapshot to a verdict over an ordered predicate set.
// It holds no state between calls; Infer is pure and idempotent for an
// unchanged snapshot.
type Engine struct {
	predicates []Predicate
}

// NewEngine builds an engine over the given predicates, or the default set
// when none are given.
func NewEngine(predicates ...Predicate) *Engine {
	if len(predicates) == 0 {
		predicates = DefaultPredicates()
	}
	return &Engine{predicates: predicates}
}

// Infer returns busy as soon as any predicate matches, idle otherwise.
func (e *Engine) Infer(s Snapshot) Verdict {
	v, _ := e.Explain(s)
	return v
}

// Explain is Infer plus the name of the first matching predicate, for
// diagnostics. The name is empty for an idle verdict.
func (e *Engine) Explain(s Snapshot) (Verdict, string) {
	for _, p := range e.predicates {
		if p.Match(s) {
			return VerdictBusy, p.Name()
		}
	}
	return VerdictIdle, ""
}
