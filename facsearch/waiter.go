package facsearch

import (
	"context"
	"fmt"
	"time"
)

// DownloadLister reports on the browser's pending downloads. done is true
// only once every item is complete.
type DownloadLister interface {
	CompletedDownloads(ctx context.Context) (files []string, done bool, err error)
}

// waitForDownloads polls src once per interval until it reports done, up to
// budget polls. Exhausting the budget is a hard failure: a partial download
// set must never be passed off as success.
func waitForDownloads(ctx context.Context, src DownloadLister, budget int, interval time.Duration) ([]string, error) {
	for poll := 1; poll <= budget; poll++ {
		files, done, err := src.CompletedDownloads(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			return files, nil
		}
		if poll == budget {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, fmt.Errorf("%w: after %d polls", ErrDownloadTimeout, budget)
}
