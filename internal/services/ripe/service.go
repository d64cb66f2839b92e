// Package ripe enriches IP addresses, CIDR blocks and ASNs with registration
// metadata from the RIPE database REST API.
package ripe

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/imroc/req/v3"

	"github.com/polarityio/ripe/internal/services"
	"github.com/polarityio/ripe/internal/worker"
)

const (
	// Name is the service identifier.
	Name = "ripe"
	// SearchURL is the registry search endpoint queried once per entity.
	SearchURL = "https://rest.db.ripe.net/search.json"
	// MaxParallelLookups is the ceiling on concurrently in-flight requests.
	MaxParallelLookups = 10
)

// Client runs batch lookups against the registry. It holds the HTTP client
// and logger bound once at startup and is safe for concurrent use.
type Client struct {
	http   *req.Client
	logger *slog.Logger
}

// NewClient creates a Client. The req.Client carries all static request
// settings (TLS material, proxy, user agent) for the process lifetime.
func NewClient(client *req.Client, logger *slog.Logger) *Client {
	return &Client{http: client, logger: logger}
}

// Name returns the service identifier.
func (c *Client) Name() string { return Name }

type job struct {
	entity services.Entity
	uri    string
}

// DoLookup issues one search request per entity, at most MaxParallelLookups
// at a time, and returns one LookupResult per entity in input order.
//
// The batch fails on the first *ClassifiedError; no partial results are
// returned. Requests already in flight when that happens run to completion
// but their outcomes are discarded, and no further requests are started.
func (c *Client) DoLookup(ctx context.Context, entities []services.Entity) ([]LookupResult, error) {
	c.logger.Debug("lookup batch", "count", len(entities), "entities", entities)

	jobs := make([]job, len(entities))
	for i, e := range entities {
		jobs[i] = job{entity: e, uri: requestURI(e.Value)}
		c.logger.Log(ctx, services.LevelTrace, "request URI", "uri", jobs[i].uri)
	}

	records, err := worker.Run(ctx, jobs, MaxParallelLookups, c.lookup)
	if err != nil {
		c.logger.Error("lookup batch failed", "error", err)
		return nil, err
	}

	results := make([]LookupResult, len(records))
	for i, rec := range records {
		results[i] = newLookupResult(rec)
	}
	c.logger.Debug("lookup results", "results", BatchResult{Results: results})
	return results, nil
}

// lookup performs a single search request and classifies its outcome.
func (c *Client) lookup(ctx context.Context, j job) (Record, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(j.uri)
	if err != nil {
		return Classify(err, 0, nil, j.entity)
	}
	if resp.Response == nil {
		return Classify(nil, 0, nil, j.entity)
	}
	return Classify(nil, resp.StatusCode, resp.Bytes(), j.entity)
}

func requestURI(value string) string {
	return SearchURL + "?" + url.Values{"query-string": {value}}.Encode()
}

func newLookupResult(rec Record) LookupResult {
	if isEmptyRecord(rec.Body) {
		return LookupResult{Entity: rec.Entity}
	}
	return LookupResult{
		Entity: rec.Entity,
		Data: &LookupData{
			Summary: ExtractSummary(rec.Body),
			Details: rec.Body,
		},
	}
}
