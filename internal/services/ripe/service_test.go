package ripe_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/imroc/req/v3"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarityio/ripe/internal/services"
	"github.com/polarityio/ripe/internal/services/ripe"
	"github.com/polarityio/ripe/internal/testutil"
)

func newTestClient(t *testing.T) *req.Client {
	t.Helper()
	client := req.NewClient()
	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

// registerSearch routes every search request to fn, keyed by the query-string
// parameter. Requests without the JSON Accept header are rejected.
func registerSearch(fn func(query string) (*http.Response, error)) {
	httpmock.RegisterResponder(http.MethodGet, ripe.SearchURL,
		func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("Accept") != "application/json" {
				return httpmock.NewStringResponse(http.StatusUnsupportedMediaType, `{"query_status":"missing accept"}`), nil
			}
			return fn(r.URL.Query().Get("query-string"))
		},
	)
}

func ipv4s(values ...string) []services.Entity {
	out := make([]services.Entity, len(values))
	for i, v := range values {
		out[i] = services.Entity{Value: v, Type: services.EntityIPv4}
	}
	return out
}

func TestDoLookup_Fixture(t *testing.T) {
	fixture := readFixture(t, "inetnum_193.0.6.139.json")
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet,
		"https://rest.db.ripe.net/search.json?query-string=193.0.6.139",
		httpmock.NewBytesResponder(http.StatusOK, fixture),
	)

	svc := ripe.NewClient(client, testutil.NopLogger())
	entities := ipv4s("193.0.6.139")
	results, err := svc.DoLookup(context.Background(), entities)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, entities[0], results[0].Entity)
	require.NotNil(t, results[0].Data)
	assert.Equal(t, []string{"RIPE-NCC", "RIPE Network Coordination Centre", "NL"}, results[0].Data.Summary)
	assert.JSONEq(t, string(fixture), string(results[0].Data.Details))
}

func TestDoLookup_EscapesQueryString(t *testing.T) {
	client := newTestClient(t)
	var got atomic.Value
	registerSearch(func(query string) (*http.Response, error) {
		got.Store(query)
		return httpmock.NewStringResponse(http.StatusOK, `[]`), nil
	})

	svc := ripe.NewClient(client, testutil.NopLogger())
	_, err := svc.DoLookup(context.Background(), []services.Entity{{Value: "193.0.0.0/21", Type: services.EntityCIDR}})
	require.NoError(t, err)
	assert.Equal(t, "193.0.0.0/21", got.Load())
}

func TestDoLookup_PreservesInputOrder(t *testing.T) {
	client := newTestClient(t)
	delays := map[string]time.Duration{
		"10.0.0.1": 40 * time.Millisecond,
		"10.0.0.2": 5 * time.Millisecond,
		"10.0.0.3": 25 * time.Millisecond,
		"10.0.0.4": 0,
		"10.0.0.5": 15 * time.Millisecond,
	}
	registerSearch(func(query string) (*http.Response, error) {
		time.Sleep(delays[query])
		body := fmt.Sprintf(`{"objects":{"object":[{"attributes":{"attribute":[{"name":"netname","value":"NET-%s"}]}}]}}`, query)
		return httpmock.NewStringResponse(http.StatusOK, body), nil
	})

	svc := ripe.NewClient(client, testutil.NopLogger())
	entities := ipv4s("10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5")
	results, err := svc.DoLookup(context.Background(), entities)
	require.NoError(t, err)
	require.Len(t, results, len(entities))
	for i, r := range results {
		assert.Equal(t, entities[i], r.Entity)
		require.NotNil(t, r.Data)
		assert.Equal(t, []string{"NET-" + entities[i].Value}, r.Data.Summary)
	}
}

func TestDoLookup_EmptyBatch(t *testing.T) {
	client := newTestClient(t)
	svc := ripe.NewClient(client, testutil.NopLogger())

	results, err := svc.DoLookup(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestDoLookup_EmptyRecordHasNoData(t *testing.T) {
	autnum := readFixture(t, "autnum_AS3333.json")
	client := newTestClient(t)
	registerSearch(func(query string) (*http.Response, error) {
		switch query {
		case "10.0.0.1":
			return httpmock.NewStringResponse(http.StatusOK, `[]`), nil
		default:
			return httpmock.NewBytesResponse(http.StatusOK, autnum), nil
		}
	})

	svc := ripe.NewClient(client, testutil.NopLogger())
	entities := []services.Entity{
		{Value: "10.0.0.1", Type: services.EntityIPv4},
		{Value: "AS3333", Type: services.EntityASN},
	}
	results, err := svc.DoLookup(context.Background(), entities)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Nil(t, results[0].Data)

	// A record without summary attributes still carries its details.
	require.NotNil(t, results[1].Data)
	assert.NotNil(t, results[1].Data.Summary)
	assert.Empty(t, results[1].Data.Summary)
	assert.NotEmpty(t, results[1].Data.Details)
}

func TestDoLookup_NotFoundFailsBatch(t *testing.T) {
	client := newTestClient(t)
	registerSearch(func(string) (*http.Response, error) {
		return httpmock.NewStringResponse(http.StatusNotFound, `{"query_status":"No entries found"}`), nil
	})

	svc := ripe.NewClient(client, testutil.NopLogger())
	results, err := svc.DoLookup(context.Background(), ipv4s("192.0.2.1"))
	require.Error(t, err)
	assert.Nil(t, results)

	var cerr *ripe.ClassifiedError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ripe.NotFound, cerr.Kind)
	assert.Equal(t, "No entries found", cerr.Detail)
	assert.Equal(t, http.StatusNotFound, cerr.StatusCode)
	assert.ErrorIs(t, err, services.ErrRequestFailed)
}

func TestDoLookup_RegistryNotFoundBody(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, ripe.SearchURL,
		httpmock.NewBytesResponder(http.StatusNotFound, readFixture(t, "not_found.json")),
	)

	svc := ripe.NewClient(client, testutil.NopLogger())
	_, err := svc.DoLookup(context.Background(), []services.Entity{{Value: "192.0.2.0/24", Type: services.EntityCIDR}})

	var cerr *ripe.ClassifiedError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ripe.NotFound, cerr.Kind)
	assert.Contains(t, cerr.Detail, "no entries found")
}

func TestDoLookup_OKWithNullBody(t *testing.T) {
	client := newTestClient(t)
	registerSearch(func(string) (*http.Response, error) {
		return httpmock.NewStringResponse(http.StatusOK, `null`), nil
	})

	svc := ripe.NewClient(client, testutil.NopLogger())
	_, err := svc.DoLookup(context.Background(), ipv4s("192.0.2.1"))

	var cerr *ripe.ClassifiedError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ripe.UnexpectedError, cerr.Kind)
	assert.Equal(t, http.StatusOK, cerr.StatusCode)
}

func TestDoLookup_TransportErrorFailsBatch(t *testing.T) {
	client := newTestClient(t)
	cause := errors.New("connection reset by peer")
	registerSearch(func(query string) (*http.Response, error) {
		if query == "10.0.0.3" {
			return nil, cause
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"objects":{"object":[]}}`), nil
	})

	svc := ripe.NewClient(client, testutil.NopLogger())
	results, err := svc.DoLookup(context.Background(), ipv4s("10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5"))
	require.Error(t, err)
	assert.Nil(t, results)

	var cerr *ripe.ClassifiedError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ripe.TransportError, cerr.Kind)
	assert.Equal(t, "HTTP Request Error", cerr.Detail)
	require.NotNil(t, cerr.Entity)
	assert.Equal(t, "10.0.0.3", cerr.Entity.Value)
	assert.ErrorIs(t, err, cause)
}

func TestDoLookup_ConcurrencyCeiling(t *testing.T) {
	client := newTestClient(t)
	var inFlight, peak, calls atomic.Int32
	registerSearch(func(string) (*http.Response, error) {
		calls.Add(1)
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return httpmock.NewStringResponse(http.StatusOK, `{"objects":{"object":[]}}`), nil
	})

	entities := make([]services.Entity, 50)
	for i := range entities {
		entities[i] = services.Entity{Value: fmt.Sprintf("10.0.%d.1", i), Type: services.EntityIPv4}
	}

	svc := ripe.NewClient(client, testutil.NopLogger())
	results, err := svc.DoLookup(context.Background(), entities)
	require.NoError(t, err)
	assert.Len(t, results, 50)
	assert.Equal(t, int32(50), calls.Load())
	assert.LessOrEqual(t, peak.Load(), int32(ripe.MaxParallelLookups))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestDoLookup_StopsDispatchAfterFailure(t *testing.T) {
	client := newTestClient(t)
	var calls atomic.Int32
	registerSearch(func(query string) (*http.Response, error) {
		calls.Add(1)
		if query == "10.0.0.0" {
			return httpmock.NewStringResponse(http.StatusForbidden, `{"query_status":"blocked"}`), nil
		}
		time.Sleep(20 * time.Millisecond)
		return httpmock.NewStringResponse(http.StatusOK, `{"objects":{"object":[]}}`), nil
	})

	entities := make([]services.Entity, 40)
	for i := range entities {
		entities[i] = services.Entity{Value: fmt.Sprintf("10.0.0.%d", i), Type: services.EntityIPv4}
	}

	svc := ripe.NewClient(client, testutil.NopLogger())
	_, err := svc.DoLookup(context.Background(), entities)

	var cerr *ripe.ClassifiedError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ripe.Forbidden, cerr.Kind)
	assert.Equal(t, "blocked", cerr.Detail)
	assert.Less(t, calls.Load(), int32(len(entities)))
}

func TestDoLookup_Logging(t *testing.T) {
	client := newTestClient(t)
	registerSearch(func(string) (*http.Response, error) {
		return httpmock.NewStringResponse(http.StatusOK, `{"objects":{"object":[]}}`), nil
	})

	logger, h := testutil.NewCaptureLogger(services.LevelTrace)
	svc := ripe.NewClient(client, logger)
	_, err := svc.DoLookup(context.Background(), ipv4s("10.0.0.1", "10.0.0.2"))
	require.NoError(t, err)

	assert.Equal(t, []string{"request URI", "request URI"}, h.Messages(services.LevelTrace))
	assert.Equal(t, []string{"lookup batch", "lookup results"}, h.Messages(slog.LevelDebug))
	assert.Empty(t, h.Messages(slog.LevelError))

	var uris []any
	for _, r := range h.Records() {
		if r.Message == "request URI" {
			uris = append(uris, r.Attrs["uri"])
		}
	}
	assert.Equal(t, []any{
		"https://rest.db.ripe.net/search.json?query-string=10.0.0.1",
		"https://rest.db.ripe.net/search.json?query-string=10.0.0.2",
	}, uris)
}

func TestDoLookup_LogsBatchFailure(t *testing.T) {
	client := newTestClient(t)
	registerSearch(func(string) (*http.Response, error) {
		return httpmock.NewStringResponse(http.StatusInternalServerError, `{"query_status":"boom"}`), nil
	})

	logger, h := testutil.NewCaptureLogger(slog.LevelInfo)
	svc := ripe.NewClient(client, logger)
	_, err := svc.DoLookup(context.Background(), ipv4s("10.0.0.1"))
	require.Error(t, err)

	assert.Equal(t, []string{"lookup batch failed"}, h.Messages(slog.LevelError))
	assert.Empty(t, h.Messages(slog.LevelDebug))
}

func TestClient_Name(t *testing.T) {
	svc := ripe.NewClient(req.NewClient(), testutil.NopLogger())
	assert.Equal(t, "ripe", svc.Name())
}
