// Package client talks to the listing API and provides the fetch functions listings are built upon.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/schema"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
)

// APIError represents an error response of the API
type APIError struct {
	Status int
	Errors []*schema.Error
}

func (err *APIError) Error() string {
	messages := make([]string, 0, len(err.Errors))
	for _, apiErr := range err.Errors {
		messages = append(messages, apiErr.Message)
	}
	if len(messages) == 0 {
		return fmt.Sprintf("the API responded with status %d", err.Status)
	}
	return fmt.Sprintf("the API responded with status %d: %s", err.Status, strings.Join(messages, " "))
}

// Client represents an API client
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a new API client for the API reachable at baseURL; a nil httpClient uses a client with a 30s timeout
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("the API URL %q has to be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: base, http: httpClient}, nil
}

// Offers returns the fetch function of the offer listing
func (client *Client) Offers() listing.FetchFunc[*offer.Offer] {
	return func(ctx context.Context, query listing.Query) (listing.Result[*offer.Offer], error) {
		return fetchPage[*offer.Offer](ctx, client, "/v1/offers", query)
	}
}

// Universities returns the fetch function of the university listing
func (client *Client) Universities() listing.FetchFunc[*university.University] {
	return func(ctx context.Context, query listing.Query) (listing.Result[*university.University], error) {
		return fetchPage[*university.University](ctx, client, "/v1/universities", query)
	}
}

// ClearCache drops the cached listing results of the API whose keys start with prefix and returns their amount
func (client *Client) ClearCache(ctx context.Context, prefix string) (int, error) {
	var res struct {
		Removed int `json:"removed"`
	}
	if err := client.do(ctx, http.MethodDelete, "/v1/cache", url.Values{"prefix": {prefix}}, &res); err != nil {
		return 0, err
	}
	return res.Removed, nil
}

func fetchPage[T any](ctx context.Context, client *Client, path string, query listing.Query) (listing.Result[T], error) {
	var res schema.PaginatedResponse[T]
	if err := client.do(ctx, http.MethodGet, path, query.Values(), &res); err != nil {
		return listing.Result[T]{}, err
	}
	result := listing.Result[T]{Data: res.Data}
	if result.Data == nil {
		result.Data = []T{}
	}
	if res.Pagination != nil {
		result.Total = res.Pagination.Total
	}
	return result, nil
}

func (client *Client) do(ctx context.Context, method, path string, values url.Values, target any) error {
	endpoint := *client.base
	endpoint.Path += path
	endpoint.RawQuery = values.Encode()

	request, err := http.NewRequestWithContext(ctx, method, endpoint.String(), nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: response.StatusCode}
		var body schema.ErrorResponse
		if err := json.NewDecoder(response.Body).Decode(&body); err == nil {
			apiErr.Errors = body.Errors
		}
		return apiErr
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("could not decode the API response: %w", err)
	}
	return nil
}
