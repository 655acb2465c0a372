package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// Trigger fires the chat's submit mechanism, best effort, in priority
// order: click the submit control, ask the input's form to submit, then
// simulate an Enter keypress. The first mechanism that works wins.
func (s *Surface) Trigger(ctx context.Context) error {
	page := s.currentPage()
	if page == nil {
		return errUnattached
	}

	if err := s.clickSubmit(ctx, page); err == nil {
		return nil
	}
	if err := s.requestSubmit(ctx, page); err == nil {
		return nil
	}
	if err := s.pressEnter(ctx); err == nil {
		return nil
	}
	return fmt.Errorf("no submission mechanism worked")
}

func (s *Surface) clickSubmit(ctx context.Context, page *rod.Page) error {
	el, err := page.Context(ctx).Element(s.cfg.SubmitSelector)
	if err != nil {
		return fmt.Errorf("submit control not found: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click submit: %w", err)
	}
	s.log.Debug().Msg("submitted via control click")
	return nil
}

func (s *Surface) requestSubmit(ctx context.Context, page *rod.Page) error {
	res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS: `
		(selector) => {
			try {
				const el = document.querySelector(selector);
				const form = el && el.form ? el.form : (el ? el.closest('form') : null);
				if (!form) return false;
				form.requestSubmit ? form.requestSubmit() : form.submit();
				return true;
			} catch (e) { return false; }
		}
		`,
		JSArgs:       []interface{}{s.cfg.InputSelector},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return fmt.Errorf("form submit: %w", err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("no enclosing form")
	}
	s.log.Debug().Msg("submitted via form")
	return nil
}

func (s *Surface) pressEnter(ctx context.Context) error {
	el, err := s.inputElement(ctx)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return err
	}
	if err := el.Type(input.Enter); err != nil {
		return fmt.Errorf("press enter: %w", err)
	}
	s.log.Debug().Msg("submitted via enter keypress")
	return nil
}
