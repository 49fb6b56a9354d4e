package data

import (
	"context"
	"math"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/schema"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/validation"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/querycache"
)

// listingEndpoint describes a paginated, filterable collection of type T whose storage filter is of type F
type listingEndpoint[T, F any] struct {
	key      string
	defaults listing.State

	// filter turns a canonical query into a storage filter; a non-nil *schema.Error rejects the query
	filter func(query listing.Query) (F, *schema.Error)
	fetch  func(ctx context.Context, filter F) ([]T, uint64, error)
}

// serveListing handles 'GET {collection}?{filter}={value}&search={string?}&page={number?:1}&limit={number?}&sortBy={string?}&sortOrder={asc|desc?}'.
// Identical queries are answered through the query cache, so concurrent requests hit the storage once.
func serveListing[T, F any](service *Service, writer http.ResponseWriter, request *http.Request, endpoint listingEndpoint[T, F]) {
	var validationErrs []*schema.Error

	_, validationErr := validation.QueryNumber(request, listing.ParamPage, false, 1, 1, math.MaxInt32)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}
	_, validationErr = validation.QueryNumber(request, listing.ParamLimit, false, int64(endpoint.defaults.Limit), 1, int64(service.Config.MaxPageSize))
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}
	if raw := request.URL.Query().Get(listing.ParamSortOrder); raw != "" && !listing.SortOrder(raw).Valid() {
		validationErrs = append(validationErrs, validation.InvalidQueryParameter(listing.ParamSortOrder, raw, "must be 'asc' or 'desc'"))
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	state := listing.ParseState(request.URL.Query(), endpoint.defaults)
	query := state.Query(state.Search)
	filter, validationErr := endpoint.filter(query)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	result, err := querycache.Fetch(request.Context(), service.Queries, query.Key(endpoint.key), func(ctx context.Context) (listing.Result[T], error) {
		objs, n, err := endpoint.fetch(ctx, filter)
		if err != nil {
			return listing.Result[T]{}, err
		}
		return listing.Result[T]{Data: objs, Total: int(n)}, nil
	})
	if err != nil {
		// the client went away; the fetch itself keeps running and fills the cache
		if request.Context().Err() != nil {
			return
		}
		service.writer.WriteInternalError(writer, err)
		return
	}

	pagination := listing.Paginate(query.Page, query.Limit, result.Total)
	links := &schema.PaginationLinks{
		Self: pageLink(request.URL, state, endpoint.defaults, state.Page),
	}
	if pagination.HasNextPage {
		links.Next = pageLink(request.URL, state, endpoint.defaults, state.Page+1)
	}
	if pagination.HasPrevPage {
		links.Prev = pageLink(request.URL, state, endpoint.defaults, state.Page-1)
	}
	service.writer.WriteJSON(writer, schema.BuildPaginatedResponse(pagination, result.Data, links))
}

// pageLink renders the canonical link of a page of the given state; default values are left out
func pageLink(location *url.URL, state, defaults listing.State, page int) string {
	state.Page = page
	encoded := listing.EncodeState(state, defaults).Encode()
	if encoded == "" {
		return location.Path
	}
	return location.Path + "?" + encoded
}

// pathID extracts the UUID path parameter 'id'
func pathID(request *http.Request) (uuid.UUID, *schema.Error) {
	raw := chi.URLParam(request, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, validation.InvalidPathParameter("id", raw, "uuid")
	}
	return id, nil
}

// EndpointClearCache handles the 'DELETE /v1/cache?prefix={string?}' endpoint
func (service *Service) EndpointClearCache(writer http.ResponseWriter, request *http.Request) {
	prefix := request.URL.Query().Get("prefix")
	n, err := service.Queries.InvalidatePrefix(request.Context(), prefix)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, map[string]any{
		"prefix":  prefix,
		"removed": n,
	})
}
