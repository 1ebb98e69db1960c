package facsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Portal is the control surface the workflow drives. The production
// implementation wraps a Rod page; tests substitute an in-memory fake so
// the scripted sequence can run without a browser.
//
// Element references are never exposed: every call re-resolves its target,
// because a reference obtained on one results page is stale after the next
// page loads.
type Portal interface {
	// Navigate loads a URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error

	// ClickID clicks the element with the given id, or fails with
	// ErrElementNotFound.
	ClickID(ctx context.Context, id string) error

	// TryClickID clicks the element with the given id if it exists.
	// A missing element is not an error; the return reports whether a
	// click happened.
	TryClickID(ctx context.Context, id string) (bool, error)

	// TypeID clears the field with the given id and types text into it.
	TypeID(ctx context.Context, id, text string) error

	// SelectValue picks the option with the given value from the select
	// element with the given id.
	SelectValue(ctx context.Context, id, value string) error

	// FollowPagerLink clicks the pager link whose visible text equals
	// label and waits for the next page. It reports false when no such
	// link exists, the normal end-of-results condition.
	FollowPagerLink(ctx context.Context, label string) (bool, error)

	// CompletedDownloads reads the browser's download manager. done is
	// true only once every pending item reports COMPLETE, in which case
	// files holds their local URLs.
	CompletedDownloads(ctx context.Context) (files []string, done bool, err error)

	// Close releases the underlying page.
	Close() error
}

// completedDownloadsJS reads Chrome's own download list. It returns null
// until every item is COMPLETE.
const completedDownloadsJS = `() => {
	var items = downloads.Manager.get().items_;
	if (items.every(e => e.state === "COMPLETE"))
		return items.map(e => e.fileUrl || e.file_url);
	return null;
}`

// rodPortal drives a live Rod page.
type rodPortal struct {
	page        *rod.Page
	findTimeout time.Duration
}

func newRodPortal(page *rod.Page, findTimeout time.Duration) *rodPortal {
	if findTimeout <= 0 {
		findTimeout = 10 * time.Second
	}
	return &rodPortal{page: page, findTimeout: findTimeout}
}

func (p *rodPortal) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)
	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("facsearch: navigate %s: %w", url, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("facsearch: wait load %s: %w", url, err)
	}
	return nil
}

// element resolves an element by id with a bounded wait.
func (p *rodPortal) element(ctx context.Context, id string) (*rod.Element, error) {
	findCtx, cancel := context.WithTimeout(ctx, p.findTimeout)
	defer cancel()

	el, err := p.page.Context(findCtx).Element("#" + id)
	if err != nil {
		return nil, fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	return el, nil
}

func (p *rodPortal) ClickID(ctx context.Context, id string) error {
	el, err := p.element(ctx, id)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("facsearch: click #%s: %w", id, err)
	}
	return nil
}

func (p *rodPortal) TryClickID(ctx context.Context, id string) (bool, error) {
	// Has does not wait: absent slots are the steady state on a short
	// results page and must not each cost a find timeout.
	has, el, err := p.page.Context(ctx).Has("#" + id)
	if err != nil {
		return false, fmt.Errorf("facsearch: probe #%s: %w", id, err)
	}
	if !has {
		return false, nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("facsearch: click #%s: %w", id, err)
	}
	return true, nil
}

func (p *rodPortal) TypeID(ctx context.Context, id, text string) error {
	el, err := p.element(ctx, id)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("facsearch: clear #%s: %w", id, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("facsearch: type into #%s: %w", id, err)
	}
	return nil
}

func (p *rodPortal) SelectValue(ctx context.Context, id, value string) error {
	el, err := p.element(ctx, id)
	if err != nil {
		return err
	}
	sel := fmt.Sprintf(`[value=%q]`, value)
	if err := el.Select([]string{sel}, true, rod.SelectorTypeCSSSector); err != nil {
		return fmt.Errorf("facsearch: select %s in #%s: %w", value, id, err)
	}
	return nil
}

func (p *rodPortal) FollowPagerLink(ctx context.Context, label string) (bool, error) {
	pg := p.page.Context(ctx)

	has, pager, err := pg.Has(selectors.PagerRow)
	if err != nil {
		return false, fmt.Errorf("facsearch: probe pager: %w", err)
	}
	if !has {
		// Single page of results: the grid renders no pager row at all.
		return false, nil
	}

	findCtx, cancel := context.WithTimeout(ctx, p.findTimeout)
	defer cancel()

	link, err := pager.Context(findCtx).ElementR("a", "^"+label+"$")
	if err != nil {
		// No link for the next page number: end of results.
		return false, nil
	}
	if err := link.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("facsearch: follow page %s: %w", label, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return false, fmt.Errorf("facsearch: wait for page %s: %w", label, err)
	}
	return true, nil
}

func (p *rodPortal) CompletedDownloads(ctx context.Context) ([]string, bool, error) {
	pg := p.page.Context(ctx)

	info, err := pg.Info()
	if err != nil {
		return nil, false, fmt.Errorf("facsearch: page info: %w", err)
	}
	if info.URL != downloadsURL {
		if err := p.Navigate(ctx, downloadsURL); err != nil {
			return nil, false, err
		}
	}

	res, err := pg.Eval(completedDownloadsJS)
	if err != nil {
		return nil, false, fmt.Errorf("facsearch: read download list: %w", err)
	}
	if res.Value.Nil() {
		return nil, false, nil
	}

	var files []string
	for _, v := range res.Value.Arr() {
		files = append(files, v.Str())
	}
	return files, true, nil
}

func (p *rodPortal) Close() error {
	if p.page != nil {
		return p.page.Close()
	}
	return nil
}
