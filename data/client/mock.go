package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/acmeid/go-libacmeid/data/model"
	"github.com/acmeid/go-libacmeid/locator"
)

const mockLastUpdated = "2024-01-01T00:00:00Z"

// MockSection returns placeholder display fields derived from rootName. The
// same rootName always yields the same section.
func MockSection(rootName string) *model.Section {
	text := url.QueryEscape(rootName)
	s := &model.Section{
		Name:               model.MainSection,
		LogoURL:            fmt.Sprintf("https://placehold.co/200x200/png?text=%s", text),
		Description:        fmt.Sprintf("Welcome to %s! This is placeholder content served in development mode.", rootName),
		BackgroundImageURL: fmt.Sprintf("https://placehold.co/1200x400/png?text=%s", text),
		LastUpdated:        mockLastUpdated,
	}
	s.Raw = map[string]any{
		model.NameKey:               s.Name,
		model.LogoURLKey:            s.LogoURL,
		model.DescriptionKey:        s.Description,
		model.BackgroundImageURLKey: s.BackgroundImageURL,
		model.LastUpdatedKey:        s.LastUpdated,
	}
	return s
}

// mockSection waits for the simulated latency and returns MockSection for the
// locator's root name. The locator is normalized first, so any identity the
// live API would accept is accepted here too.
func (c *Client) mockSection(ctx context.Context, loc string) (*model.Section, error) {
	parsed, err := locator.ParseRaw(loc)
	if err != nil {
		return nil, err
	}
	if c.mockLatency > 0 {
		timer := time.NewTimer(c.mockLatency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	log.Debugw("Serving mock section", "locator", loc)
	return MockSection(parsed.RootName), nil
}
