package browser

import (
	"context"
	"encoding/json"

	"github.com/go-rod/rod"

	"promptd/internal/evidence"
)

// maxEvidenceNodes caps the per-snapshot DOM walk so inference stays cheap
// on large pages.
const maxEvidenceNodes = 600

// evidenceScript gathers the raw busy signals in one DOM pass. It must never
// throw: every lookup is guarded so absent structure yields empty arrays.
const evidenceScript = `
(max) => {
	const out = { controls: [], statusTexts: [], visibleTexts: [], animatedClasses: [], markerAttrs: [] };
	const isVisible = (el) => {
		try {
			const st = window.getComputedStyle(el);
			if (st.display === 'none' || st.visibility === 'hidden' || st.opacity === '0') return false;
			const r = el.getBoundingClientRect();
			return r.width > 0 && r.height > 0;
		} catch (e) { return false; }
	};
	try {
		for (const el of document.querySelectorAll('button, [role="button"]')) {
			const label = (el.getAttribute('aria-label') || el.title || el.innerText || '').slice(0, 64);
			out.controls.push({ label, visible: isVisible(el) });
		}
	} catch (e) {}
	try {
		for (const el of document.querySelectorAll('[role="status"], [aria-live]')) {
			out.statusTexts.push((el.innerText || '').slice(0, 128));
		}
	} catch (e) {}
	try {
		const nodes = Array.from(document.querySelectorAll('body *')).slice(0, max);
		for (const el of nodes) {
			try {
				if (el.childElementCount === 0) {
					const text = (el.innerText || '').trim();
					if (text.length > 0 && text.length <= 8 && isVisible(el)) out.visibleTexts.push(text);
				}
				const st = window.getComputedStyle(el);
				if (st.animationName && st.animationName !== 'none' && isVisible(el)) {
					out.animatedClasses.push(String(el.className).slice(0, 128));
				}
				for (const { name, value } of Array.from(el.attributes || [])) {
					if (/busy|streaming|generating/i.test(name)) out.markerAttrs.push(name + '=' + value);
				}
			} catch (e) {}
		}
	} catch (e) {}
	return out;
}
`

type rawSnapshot struct {
	Controls []struct {
		Label   string `json:"label"`
		Visible bool   `json:"visible"`
	} `json:"controls"`
	StatusTexts     []string `json:"statusTexts"`
	VisibleTexts    []string `json:"visibleTexts"`
	AnimatedClasses []string `json:"animatedClasses"`
	MarkerAttrs     []string `json:"markerAttrs"`
}

// Snapshot collects the current evidence from the bound tab. It never
// fails: an unattached surface, a navigated-away page, or a script error
// all yield an empty snapshot, which infers idle downstream.
func (s *Surface) Snapshot(ctx context.Context) evidence.Snapshot {
	page := s.currentPage()
	if page == nil {
		return evidence.Snapshot{}
	}
	res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           evidenceScript,
		JSArgs:       []interface{}{maxEvidenceNodes},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil || res == nil {
		s.log.Debug().Err(err).Msg("evidence snapshot unavailable")
		return evidence.Snapshot{}
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return evidence.Snapshot{}
	}
	var decoded rawSnapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return evidence.Snapshot{}
	}
	snap := evidence.Snapshot{
		StatusTexts:     decoded.StatusTexts,
		VisibleTexts:    decoded.VisibleTexts,
		AnimatedClasses: decoded.AnimatedClasses,
		MarkerAttrs:     decoded.MarkerAttrs,
	}
	for _, c := range decoded.Controls {
		snap.Controls = append(snap.Controls, evidence.Control{Label: c.Label, Visible: c.Visible})
	}
	return snap
}
