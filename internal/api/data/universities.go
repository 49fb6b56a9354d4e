package data

import (
	"context"
	"errors"
	"net/http"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/schema"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/validation"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
)

func (service *Service) universityListing() listingEndpoint[*university.University, *university.Filter] {
	return listingEndpoint[*university.University, *university.Filter]{
		key: university.QueryKey,
		defaults: listing.State{
			Filters:   listing.Filters{},
			Page:      1,
			Limit:     service.Config.DefaultPageSize,
			SortBy:    university.SortName,
			SortOrder: listing.Asc,
		},
		filter: func(query listing.Query) (*university.Filter, *schema.Error) {
			filter, err := university.FilterOfQuery(query)
			if err != nil {
				var validationErr *university.ValidationError
				if errors.As(err, &validationErr) {
					return nil, validation.InvalidQueryParameter(validationErr.Field, validationErr.Value, validationErr.Reason)
				}
				return nil, validation.InvalidQueryParameter("", nil, err.Error())
			}
			return filter, nil
		},
		fetch: func(ctx context.Context, filter *university.Filter) ([]*university.University, uint64, error) {
			return service.Storage.Universities().GetByFilter(ctx, filter)
		},
	}
}

// EndpointGetUniversities handles the 'GET /v1/universities' listing endpoint.
// Accepted filters: country, city.
func (service *Service) EndpointGetUniversities(writer http.ResponseWriter, request *http.Request) {
	serveListing(service, writer, request, service.universityListing())
}

// EndpointGetUniversity handles the 'GET /v1/universities/{id}' endpoint
func (service *Service) EndpointGetUniversity(writer http.ResponseWriter, request *http.Request) {
	id, validationErr := pathID(request)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	obj, err := service.Storage.Universities().GetByID(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if obj == nil {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}
	service.writer.WriteJSON(writer, obj)
}

// EndpointCreateUniversity handles the 'POST /v1/universities' endpoint
func (service *Service) EndpointCreateUniversity(writer http.ResponseWriter, request *http.Request) {
	draft, validationErrs, err := schema.UnmarshalBody[university.Draft](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	obj, err := university.OfDraft(draft, service.now())
	if err != nil {
		var validationErr *university.ValidationError
		if errors.As(err, &validationErr) {
			service.writer.WriteErrors(writer, http.StatusBadRequest, validation.InvalidBodyParameter(validationErr.Field, validationErr.Value, validationErr.Reason))
			return
		}
		service.writer.WriteInternalError(writer, err)
		return
	}

	if err := service.Storage.Universities().Create(request.Context(), obj); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSONCode(writer, http.StatusCreated, obj)
}

// EndpointDeleteUniversity handles the 'DELETE /v1/universities/{id}' endpoint; the offers of the university are
// deleted as well
func (service *Service) EndpointDeleteUniversity(writer http.ResponseWriter, request *http.Request) {
	id, validationErr := pathID(request)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	deleted, err := service.Storage.Universities().Delete(request.Context(), id)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if !deleted {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}
