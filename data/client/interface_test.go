package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/acmeid/go-libacmeid/apierror"
	"github.com/acmeid/go-libacmeid/data/client"
	"github.com/acmeid/go-libacmeid/data/model"
	"github.com/acmeid/go-libacmeid/test"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func TestFetchMany(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	names := test.RandomRootNames(3)
	ds.Set(names[0]+".acme", http.StatusOK, test.RandomSectionsJSON(names[0]))
	ds.Set(names[1]+".acme", http.StatusOK, `[{"name": "header"}]`)

	c := newClient(t, ds)
	locs := []string{"acc://" + names[0] + ".acme", "acc://" + names[1] + ".acme", "acc://" + names[2] + ".acme"}
	sections, err := client.FetchMany(context.Background(), c, locs)
	require.Len(t, sections, 1)
	require.Contains(t, sections, locs[0])

	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.Len(t, merr.Errors, 2)
	require.True(t, apierror.IsKind(merr.Errors[0], apierror.KindNoMainSection))
	require.True(t, apierror.IsKind(merr.Errors[1], apierror.KindStatus))
}

type cancelingFetcher struct {
	calls int
}

func (f *cancelingFetcher) FetchSection(ctx context.Context, _ string) (*model.Section, error) {
	f.calls++
	return nil, context.Canceled
}

func TestFetchManyStopsOnCancel(t *testing.T) {
	f := &cancelingFetcher{}
	_, err := client.FetchMany(context.Background(), f, []string{"a", "b"})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, f.calls)
}
