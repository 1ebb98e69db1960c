package facsearch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

// Category identifies one kind of downloadable result file. The value is the
// suffix embedded in the portal's per-row link ids.
type Category string

const (
	// CategoryForm is the SF-SAC reporting form (spreadsheet download).
	CategoryForm Category = "Form"
	// CategoryAudit is the single audit package (document download).
	CategoryAudit Category = "Audit"
)

// categories lists the document kinds fetched from each results page. The
// two are processed independently; pairing a form with its audit package is
// deliberately left to downstream tooling.
var categories = []Category{CategoryForm, CategoryAudit}

// slotCounts tallies download triggers for one category on one page.
type slotCounts struct {
	Triggered int
	Skipped   int
}

// downloadCategory attempts to trigger a download for every candidate slot
// of one category on the current results page. Slot ids are deterministic:
// {prefix}{category}_{slot}. A missing slot is the expected steady state
// once a page holds fewer than slotsPerPage results and is skipped
// silently. Clicks are fire-and-forget; completion is verified in aggregate
// by the download waiter.
func downloadCategory(ctx context.Context, p Portal, cat Category, slotsPerPage int) (slotCounts, error) {
	var counts slotCounts
	for slot := 0; slot < slotsPerPage; slot++ {
		id := selectors.ResultLinkPrefix + string(cat) + "_" + strconv.Itoa(slot)
		clicked, err := p.TryClickID(ctx, id)
		if err != nil {
			return counts, fmt.Errorf("%s slot %d: %w", cat, slot, err)
		}
		if clicked {
			counts.Triggered++
		} else {
			counts.Skipped++
		}
	}
	return counts, nil
}

// downloadLinkedFiles runs every category over the current page and folds
// the counts into totals.
func downloadLinkedFiles(ctx context.Context, p Portal, slotsPerPage int, totals map[Category]slotCounts, log *slog.Logger) error {
	for _, cat := range categories {
		counts, err := downloadCategory(ctx, p, cat, slotsPerPage)
		if err != nil {
			return err
		}
		t := totals[cat]
		t.Triggered += counts.Triggered
		t.Skipped += counts.Skipped
		totals[cat] = t
		log.Debug("facsearch: page downloads triggered",
			"category", string(cat), "triggered", counts.Triggered, "skipped", counts.Skipped)
	}
	return nil
}
