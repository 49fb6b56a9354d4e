package main

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/client"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/querycache"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
	"github.com/rs/zerolog"
)

// resource describes how a listable collection is fetched and printed
type resource[T any] struct {
	key       string
	path      string
	sortBy    string
	sortOrder listing.SortOrder
	fetch     func(api *client.Client) listing.FetchFunc[T]
	header    []string
	row       func(obj T) []string
}

var offers = resource[*offer.Offer]{
	key:       offer.QueryKey,
	path:      "/v1/offers",
	sortBy:    offer.SortCreatedAt,
	sortOrder: listing.Desc,
	fetch:     (*client.Client).Offers,
	header:    []string{"TITLE", "CATEGORY", "CITY", "COUNTRY", "TUITION", "DEADLINE", "SCHOLARSHIP"},
	row: func(obj *offer.Offer) []string {
		return []string{
			obj.Title,
			string(obj.Category),
			obj.City,
			obj.Country,
			strconv.FormatFloat(obj.Tuition, 'f', 2, 64),
			obj.Deadline.Format(time.DateOnly),
			strconv.FormatBool(obj.Scholarship),
		}
	},
}

var universities = resource[*university.University]{
	key:       university.QueryKey,
	path:      "/v1/universities",
	sortBy:    university.SortName,
	sortOrder: listing.Asc,
	fetch:     (*client.Client).Universities,
	header:    []string{"NAME", "CITY", "COUNTRY", "RANKING"},
	row: func(obj *university.University) []string {
		return []string{obj.Name, obj.City, obj.Country, strconv.Itoa(obj.Ranking)}
	},
}

// session bundles a listing with the address it is synchronized with
type session[T any] struct {
	listing *listing.Listing[T]
	address *listing.MemoryAddress
	queries *querycache.Client
}

func (sess *session[T]) Close() {
	sess.listing.Close()
	_ = sess.queries.Close()
}

// openSession creates a listing of the given resource whose state lives in the query of the given address
func openSession[T any](res resource[T], api *client.Client, address *listing.MemoryAddress, debounce time.Duration, logger zerolog.Logger) (*session[T], error) {
	queries := querycache.New(querycache.Options{
		Backend:   querycache.NewMemoryBackend(querycache.DefaultGCTime),
		StaleTime: 30 * time.Second,
		Logger:    &logger,
	})
	lst, err := listing.New(listing.Options[T]{
		QueryKey:         res.key,
		DefaultSortBy:    res.sortBy,
		DefaultSortOrder: res.sortOrder,
		SearchDebounce:   debounce,
		QueryFn:          res.fetch(api),
		SyncWithURL:      true,
		Address:          address,
		Client:           queries,
		Logger:           &logger,
	})
	if err != nil {
		_ = queries.Close()
		return nil, err
	}
	return &session[T]{listing: lst, address: address, queries: queries}, nil
}

// render prints one listing view as a table followed by its pagination summary
func render[T any](out io.Writer, res resource[T], view listing.View[T]) {
	table := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, strings.Join(res.header, "\t"))
	for _, obj := range view.Data {
		fmt.Fprintln(table, strings.Join(res.row(obj), "\t"))
	}
	_ = table.Flush()

	fmt.Fprintf(out, "page %d of %d, %d total (sorted by %s %s)\n", view.Page, max(view.TotalPages, 1), view.Total, view.SortBy, view.SortOrder)
	if view.IsError {
		fmt.Fprintf(out, "the last fetch failed: %s\n", view.Err)
	}
}

// resolveAddress builds the address a listing starts from: the given link or the resource's API endpoint
func resolveAddress(api string, res string, link string) (*listing.MemoryAddress, error) {
	if link != "" {
		return listing.NewMemoryAddress(link)
	}
	location, err := url.Parse(strings.TrimSuffix(api, "/"))
	if err != nil {
		return nil, err
	}
	location.Path += res
	return listing.NewMemoryAddress(location.String())
}
