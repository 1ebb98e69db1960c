package facsearch

import (
	"context"
	"log/slog"
	"strconv"
)

// walkResultPages visits every results page in order, invoking visit on
// each, and advances through the grid's pager until no link for the next
// page number exists. Page indexes are 1-based to match the pager labels.
//
// The pager link is re-resolved on every page: a link element located on
// page N is stale once page N+1 has loaded.
func walkResultPages(ctx context.Context, p Portal, visit func(page int) error, log *slog.Logger) (int, error) {
	page := 1
	for {
		if err := visit(page); err != nil {
			return page, err
		}

		followed, err := p.FollowPagerLink(ctx, strconv.Itoa(page+1))
		if err != nil {
			return page, err
		}
		if !followed {
			// No further pager link: normal end of results.
			log.Debug("facsearch: last results page reached", "pages", page)
			return page, nil
		}
		page++
	}
}
