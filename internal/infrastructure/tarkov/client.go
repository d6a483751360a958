package tarkov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/tarkovlens/backend/internal/domain"
)

// DefaultBaseURL is the public tarkov.dev GraphQL endpoint
const DefaultBaseURL = "https://api.tarkov.dev/graphql"

// errRateLimitWait means the client-side limiter refused to wait for a slot,
// usually because the wait would outlast the context deadline. No request was sent.
var errRateLimitWait = errors.New("rate limiter wait")

// ClientConfig holds connection parameters for the tarkov.dev client
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	RetryWait         time.Duration
}

// Client handles communication with the tarkov.dev GraphQL API
type Client struct {
	http        *resty.Client
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type itemsListData struct {
	Items []*domain.CatalogRecord `json:"items"`
}

type itemDetailsData struct {
	Item *domain.ItemDetails `json:"item"`
}

// NewClient creates a new tarkov.dev API client
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 500 * time.Millisecond
	}

	c := &Client{
		baseURL:     cfg.BaseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}

	c.http = resty.New().
		SetLogger(restyLogger{}).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "TarkovLens/1.0").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(4 * cfg.RetryWait).
		AddRetryCondition(shouldRetry)

	// Every attempt, retries included, waits for the limiter
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if err := c.rateLimiter.Wait(req.Context()); err != nil {
			return fmt.Errorf("%w: %v", errRateLimitWait, err)
		}
		return nil
	})

	return c
}

// restyLogger routes resty's internal messages through the standard logger
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	log.Printf("[TARKOV] resty error: "+format, v...)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	log.Printf("[TARKOV] resty warning: "+format, v...)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	log.Printf("[TARKOV] resty debug: "+format, v...)
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// shouldRetry retries transport errors, throttling and server errors
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, errRateLimitWait) &&
			!errors.Is(err, context.Canceled) &&
			!errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// ListItems fetches the full item catalog. A null entry or an entry missing
// any name field fails the whole fetch.
func (c *Client) ListItems(ctx context.Context) ([]domain.CatalogRecord, error) {
	var data itemsListData
	if _, err := c.query(ctx, "ItemsList", itemsListQuery, nil, &data); err != nil {
		return nil, err
	}

	if data.Items == nil {
		return nil, &domain.MissingFieldError{Field: "items"}
	}

	records, err := validateCatalog(data.Items)
	if err != nil {
		log.Printf("[TARKOV] Malformed catalog: %v", err)
		return nil, err
	}

	log.Printf("[TARKOV] Fetched catalog with %d items", len(records))
	return records, nil
}

// GetItemDetails fetches pricing details for a single item by id
func (c *Client) GetItemDetails(ctx context.Context, id string) (*domain.ItemDetails, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}

	var data itemDetailsData
	vars := map[string]interface{}{"id": id}
	gqlErrors, err := c.query(ctx, "ItemDetails", itemDetailsQuery, vars, &data)
	if err != nil {
		return nil, err
	}

	if data.Item == nil {
		// A null item next to errors is a resolver failure, not a missing item
		if len(gqlErrors) > 0 {
			return nil, fmt.Errorf("%w: item %s: %s", domain.ErrUpstreamFailure, id, strings.Join(gqlErrors, "; "))
		}
		log.Printf("[TARKOV] No item found for id: %s", id)
		return nil, domain.ErrItemNotFound
	}

	return data.Item, nil
}

// query posts a GraphQL operation and decodes its data member into out.
// It returns the messages of any GraphQL errors that accompanied the data.
func (c *Client) query(ctx context.Context, operation, query string, vars map[string]interface{}, out interface{}) ([]string, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: query, Variables: vars}).
		Post(c.baseURL)
	if err != nil {
		log.Printf("[TARKOV] %s request error: %v", operation, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, errRateLimitWait) {
			return nil, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	if c.debug {
		log.Printf("[TARKOV] %s -> status %d, %d bytes in %s",
			operation, resp.StatusCode(), len(resp.Body()), time.Since(start))
	}

	if resp.StatusCode() != http.StatusOK {
		log.Printf("[TARKOV] %s API error - Status: %d, Body: %s", operation, resp.StatusCode(), truncate(resp.String(), 512))
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, resp.StatusCode())
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstreamFailure, err)
	}

	hasData := len(envelope.Data) > 0 && string(envelope.Data) != "null"
	var messages []string
	if len(envelope.Errors) > 0 {
		messages = make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		if !hasData {
			return nil, fmt.Errorf("%w: %s", domain.ErrUpstreamFailure, strings.Join(messages, "; "))
		}
		log.Printf("[TARKOV] %s returned partial data with errors: %s", operation, strings.Join(messages, "; "))
	}
	if !hasData {
		return nil, fmt.Errorf("%w: response has no data", domain.ErrUpstreamFailure)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s data: %v", domain.ErrUpstreamFailure, operation, err)
	}

	return messages, nil
}

// validateCatalog dereferences catalog entries, rejecting null entries and
// entries without a name, short name or normalized name.
func validateCatalog(items []*domain.CatalogRecord) ([]domain.CatalogRecord, error) {
	records := make([]domain.CatalogRecord, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, &domain.MissingFieldError{Record: fmt.Sprintf("#%d", i), Field: "item"}
		}
		switch {
		case item.ID == "":
			return nil, &domain.MissingFieldError{Record: fmt.Sprintf("#%d", i), Field: "id"}
		case item.Name == nil:
			return nil, &domain.MissingFieldError{Record: item.ID, Field: "name"}
		case item.ShortName == nil:
			return nil, &domain.MissingFieldError{Record: item.ID, Field: "shortName"}
		case item.NormalizedName == nil:
			return nil, &domain.MissingFieldError{Record: item.ID, Field: "normalizedName"}
		}
		records = append(records, *item)
	}
	return records, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
