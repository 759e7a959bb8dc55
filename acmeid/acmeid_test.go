package acmeid_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/acmeid/go-libacmeid/acmeid"
	"github.com/acmeid/go-libacmeid/apierror"
	"github.com/acmeid/go-libacmeid/config"
	"github.com/acmeid/go-libacmeid/partner"
	"github.com/acmeid/go-libacmeid/record"
	"github.com/acmeid/go-libacmeid/test"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newService(t *testing.T, ds *test.DataServer, options ...acmeid.Option) *acmeid.Service {
	cfg := config.Default()
	cfg.APIURL = ds.URL
	svc, err := acmeid.New(cfg, options...)
	require.NoError(t, err)
	return svc
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.APIURL = "ftp://nope"
	_, err := acmeid.New(cfg)
	require.Error(t, err)

	_, err = acmeid.New(config.Default(), acmeid.WithMockLatency(-time.Second))
	require.ErrorContains(t, err, "option 0 failed")
}

func TestPartnerURLs(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	svc := newService(t, ds)

	require.Equal(t, "https://sunstream.BankOnLedger.com/?current-network=mainnet", svc.BankOnLedgerURL("sunstream"))
	require.Equal(t, "https://sunstream.Qoboto.com/shop/cart?current-network=mainnet", svc.QobotoURL("ACC://SunStream.acme/shop/cart"))
	require.Equal(t, partner.Invalid, svc.BankOnLedgerURL(""))
	require.Equal(t, partner.Invalid, svc.QobotoURL("a.b"))

	svc.SwitchNetwork("testnet")
	require.Equal(t, "testnet", svc.Network())
	require.Equal(t, "https://sunstream.BankOnLedger.com/?current-network=testnet", svc.BankOnLedgerURL("sunstream"))
}

func TestNormalizeAndParse(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	svc := newService(t, ds)

	canonical, err := svc.Normalize("  SunStream/Shop ")
	require.NoError(t, err)
	require.Equal(t, "acc://sunstream.acme/shop", canonical)

	parsed, err := svc.Parse("sunstream.acme/a//b")
	require.NoError(t, err)
	require.Equal(t, "sunstream", parsed.RootName)
	require.Equal(t, "a.b", parsed.PathTrain)

	_, err = svc.Parse("   ")
	require.True(t, apierror.IsKind(err, apierror.KindMalformedLocator))
}

func TestRecordIsShared(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	svc := newService(t, ds)

	a, err := svc.Record("sunstream")
	require.NoError(t, err)
	b, err := svc.Record("acc://SUNSTREAM.acme")
	require.NoError(t, err)
	c, err := svc.RecordByName("sunstream")
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Same(t, a, c)

	_, err = svc.RecordByName("a/b")
	require.Error(t, err)
	_, err = svc.Record("")
	require.Error(t, err)
}

func TestClearCache(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	ds.Set("sunstream.acme", http.StatusOK, test.SectionsJSON("L", "D", "B"))
	svc := newService(t, ds)
	ctx := context.Background()

	r, err := svc.Record("sunstream")
	require.NoError(t, err)
	r.SetOverride(record.Description, "mine")
	require.Equal(t, "L", r.Logo(ctx).Text)

	ds.Set("sunstream.acme", http.StatusOK, test.SectionsJSON("L2", "D", "B"))
	require.Equal(t, "L", r.Logo(ctx).Text)

	require.NoError(t, svc.ClearIdentity("SunStream"))
	require.Equal(t, "L2", r.Logo(ctx).Text)
	require.Equal(t, 2, ds.Hits())

	ds.Set("sunstream.acme", http.StatusOK, test.SectionsJSON("L3", "D", "B"))
	svc.ClearCache()
	require.Equal(t, "L3", r.Logo(ctx).Text)
	require.Equal(t, "mine", r.Description(ctx).Text)

	require.Error(t, svc.ClearIdentity(" "))
}

func TestSetAPIBaseURL(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	other := test.NewDataServer()
	defer other.Close()
	other.Set("sunstream.acme", http.StatusOK, test.SectionsJSON("L", "D", "B"))

	svc := newService(t, ds)
	require.Error(t, svc.SetAPIBaseURL("nope"))
	require.NoError(t, svc.SetAPIBaseURL(other.URL))
	require.Equal(t, other.URL, svc.Client().BaseURL())

	r, err := svc.Record("sunstream")
	require.NoError(t, err)
	require.Equal(t, "L", r.Logo(context.Background()).Text)
	require.Zero(t, ds.Hits())
}

func TestDevMode(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	cfg := config.Default()
	cfg.APIURL = ds.URL
	cfg.DevMode = true
	svc, err := acmeid.New(cfg, acmeid.WithMockLatency(0))
	require.NoError(t, err)
	require.True(t, svc.DevMode())

	r, err := svc.Record("sunstream")
	require.NoError(t, err)
	fields, err := r.AllFields(context.Background())
	require.NoError(t, err)
	require.Contains(t, fields.Description, "sunstream")
	require.Zero(t, ds.Hits())

	svc.SetDevMode(false)
	require.False(t, svc.DevMode())
}

func TestSetDebug(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	cfg := config.Default()
	cfg.APIURL = ds.URL
	cfg.Debug = true
	svc, err := acmeid.New(cfg)
	require.NoError(t, err)

	require.True(t, logging.Logger("acmeid-client").Desugar().Core().Enabled(zapcore.DebugLevel))
	svc.SetDebug(false)
	require.False(t, logging.Logger("acmeid-record").Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestMetricsRegistered(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	ds.Set("sunstream.acme", http.StatusOK, test.SectionsJSON("L", "D", "B"))

	reg := prometheus.NewRegistry()
	svc := newService(t, ds, acmeid.WithRegisterer(reg), acmeid.WithClock(test.NewClock().Now))
	r, err := svc.Record("sunstream")
	require.NoError(t, err)
	_, err = r.AllFields(context.Background())
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "acmeid_client_fetch_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestPrefetch(t *testing.T) {
	ds := test.NewDataServer()
	defer ds.Close()
	ds.Set("sunstream.acme", http.StatusOK, test.SectionsJSON("L", "D", "B"))
	svc := newService(t, ds)
	ctx := context.Background()

	err := svc.Prefetch(ctx, "SunStream", "  ", "moonbeam")
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.Len(t, merr.Errors, 2)
	require.True(t, apierror.IsKind(merr.Errors[0], apierror.KindMalformedLocator))
	require.True(t, apierror.IsKind(merr.Errors[1], apierror.KindStatus))
	require.Equal(t, 2, ds.Hits())

	// Served from the cache filled by Prefetch.
	r, err := svc.Record("sunstream")
	require.NoError(t, err)
	v := r.Logo(ctx)
	require.Equal(t, "L", v.Text)
	require.Equal(t, record.SourceLive, v.Source)
	require.Equal(t, 2, ds.Hits())

	require.NoError(t, svc.Prefetch(ctx))
}
