package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
)

var errUnattached = errors.New("no chat surface attached")

// inputElement locates the chat input via the configured selector chain.
func (s *Surface) inputElement(ctx context.Context) (*rod.Element, error) {
	page := s.currentPage()
	if page == nil {
		return nil, errUnattached
	}
	el, err := page.Context(ctx).Element(s.cfg.InputSelector)
	if err != nil {
		return nil, fmt.Errorf("input element not found: %w", err)
	}
	return el, nil
}

// ReadText returns the unsent text currently in the chat input.
func (s *Surface) ReadText(ctx context.Context) (string, error) {
	el, err := s.inputElement(ctx)
	if err != nil {
		return "", err
	}
	res, err := el.Eval(`() => this.value !== undefined ? this.value : (this.innerText || '')`)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return res.Value.Str(), nil
}

// WriteText replaces the chat input's content. Input goes through real key
// events so the page's own change detection treats it as user typing.
func (s *Surface) WriteText(ctx context.Context, text string) error {
	el, err := s.inputElement(ctx)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("focus input: %w", err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select input: %w", err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("write input: %w", err)
	}
	return nil
}

// Focus moves keyboard focus to the chat input.
func (s *Surface) Focus(ctx context.Context) error {
	el, err := s.inputElement(ctx)
	if err != nil {
		return err
	}
	return el.Focus()
}
