package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	metaPath   = "/product-meta"
	eventsPath = "/product-events"

	// Count probes must answer fast; full fetches get more room.
	probeTimeout = 5 * time.Second
	fetchTimeout = 25 * time.Second
)

// ProductMeta is the metadata document an upstream serves about itself
type ProductMeta struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	Tagline  string `json:"tagline"`
	URL      string `json:"url"`
}

type metaEnvelope struct {
	StratusProductMeta *ProductMeta `json:"stratusProductMeta"`
}

type eventsEnvelope struct {
	StratusProductEvents []json.RawMessage `json:"stratusProductEvents"`
}

// Client talks to the upstream partner APIs
type Client struct {
	http *http.Client
}

// NewClient creates an upstream API client
func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: fetchTimeout},
	}
}

func (c *Client) get(ctx context.Context, cfg ProductConfig, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.APIURL+path, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range APIHeaders(cfg.APIKey) {
		req.Header.Set(key, value)
	}
	return c.http.Do(req)
}

// FetchMeta retrieves the product metadata document. Unlike event
// fetches, any failure here is an error: without metadata we cannot
// establish the product's identity.
func (c *Client) FetchMeta(ctx context.Context, cfg ProductConfig) (*ProductMeta, error) {
	resp, err := c.get(ctx, cfg, metaPath)
	if err != nil {
		return nil, fmt.Errorf("meta request for %s failed: %w", cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("meta request for %s returned status %d", cfg.Name, resp.StatusCode)
	}

	var envelope metaEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("meta response for %s is malformed: %w", cfg.Name, err)
	}
	if envelope.StratusProductMeta == nil {
		return nil, fmt.Errorf("meta response for %s has no stratusProductMeta", cfg.Name)
	}
	return envelope.StratusProductMeta, nil
}

// FetchEvents retrieves and normalizes the upstream's full event list.
// 403/404 mean the events feature is not available yet on that upstream
// and yield an empty list; other non-2xx codes are logged and also yield
// an empty list. Only transport and decode failures surface as errors.
func (c *Client) FetchEvents(ctx context.Context, cfg ProductConfig) ([]ProductEvent, error) {
	resp, err := c.get(ctx, cfg, eventsPath)
	if err != nil {
		return nil, fmt.Errorf("events request for %s failed: %w", cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		switch {
		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
			log.Debugf("[Upstream] %s events not available yet (status %d)", cfg.Name, resp.StatusCode)
		case resp.StatusCode >= 500:
			log.Errorf("[Upstream] %s events API server error (status %d)", cfg.Name, resp.StatusCode)
		default:
			log.Warnf("[Upstream] %s events API unavailable (status %d)", cfg.Name, resp.StatusCode)
		}
		io.Copy(io.Discard, resp.Body)
		return []ProductEvent{}, nil
	}

	var envelope eventsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("events response for %s is malformed: %w", cfg.Name, err)
	}

	events, dropped := normalizeBatch(envelope.StratusProductEvents)
	if dropped > 0 {
		log.Warnf("[Upstream] %s: dropped %d events with missing fields", cfg.Name, dropped)
	}
	return events, nil
}

// FetchEventCount is the cheap change-signal probe: it fetches the event
// list under a hard 5s budget and reports only its length.
func (c *Client) FetchEventCount(ctx context.Context, cfg ProductConfig) (int, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	resp, err := c.get(probeCtx, cfg, eventsPath)
	if err != nil {
		return 0, fmt.Errorf("probe for %s failed: %w", cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("probe for %s returned status %d", cfg.Name, resp.StatusCode)
	}

	var envelope eventsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("probe response for %s is malformed: %w", cfg.Name, err)
	}
	return len(envelope.StratusProductEvents), nil
}
