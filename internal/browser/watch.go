package browser

import (
	"context"
	"time"

	"github.com/go-rod/rod"
)

// observerScript installs a MutationObserver that bumps a counter on every
// DOM mutation. Idempotent across polls; wiped by navigation, in which case
// the poll loop reinstalls it.
const observerScript = `
() => {
	const w = window;
	if (w.__promptdObserved) return true;
	w.__promptdObserved = true;
	w.__promptdSeq = 0;
	try {
		const obs = new MutationObserver(() => { w.__promptdSeq++; });
		obs.observe(document.documentElement || document.body, {
			childList: true, subtree: true, attributes: true, characterData: true,
		});
	} catch (e) {}
	return true;
}
`

// Watch drives observation ticks until ctx is done. A tick fires when the
// page mutated since the last poll; when the counter cannot be read (page
// unattached, navigation in flight) the poll itself degrades into a fixed
// timer tick so the monitor keeps observing.
func (s *Surface) Watch(ctx context.Context, onTick func()) {
	go func() {
		ticker := time.NewTicker(s.cfg.PollInterval())
		defer ticker.Stop()

		var lastSeq float64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				seq, ok := s.mutationSeq(ctx)
				if !ok {
					onTick()
					continue
				}
				if seq != lastSeq {
					lastSeq = seq
					onTick()
				}
			}
		}
	}()
}

// mutationSeq reads (and lazily installs) the mutation counter.
func (s *Surface) mutationSeq(ctx context.Context) (float64, bool) {
	page := s.currentPage()
	if page == nil {
		return 0, false
	}
	if _, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS: observerScript, ByValue: true, AwaitPromise: true,
	}); err != nil {
		return 0, false
	}
	res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS: `() => window.__promptdSeq || 0`, ByValue: true, AwaitPromise: true,
	})
	if err != nil || res == nil {
		return 0, false
	}
	return res.Value.Num(), true
}
