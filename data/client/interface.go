package client

import (
	"context"
	"errors"

	"github.com/acmeid/go-libacmeid/data/model"
	"github.com/hashicorp/go-multierror"
)

// Fetcher is the interface implemented by identity-data clients.
type Fetcher interface {
	// FetchSection returns the display section for an identity locator.
	FetchSection(context.Context, string) (*model.Section, error)
}

// FetchMany is a convenience function to fetch sections for multiple
// locators, one request at a time. Sections that were fetched are returned
// keyed by locator, and all failures are returned together. Fetching stops
// early only if the context is canceled.
func FetchMany(ctx context.Context, fetcher Fetcher, locs []string) (map[string]*model.Section, error) {
	sections := make(map[string]*model.Section, len(locs))
	var errs error
	for _, loc := range locs {
		s, err := fetcher.FetchSection(ctx, loc)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return sections, err
			}
			errs = multierror.Append(errs, err)
			continue
		}
		sections[loc] = s
	}
	return sections, errs
}
