package data

import (
	"context"
	"errors"
	"net/http"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/schema"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/validation"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
)

func (service *Service) offerListing() listingEndpoint[*offer.Offer, *offer.Filter] {
	return listingEndpoint[*offer.Offer, *offer.Filter]{
		key: offer.QueryKey,
		defaults: listing.State{
			Filters:   listing.Filters{},
			Page:      1,
			Limit:     service.Config.DefaultPageSize,
			SortBy:    offer.SortCreatedAt,
			SortOrder: listing.Desc,
		},
		filter: func(query listing.Query) (*offer.Filter, *schema.Error) {
			filter, err := offer.FilterOfQuery(query)
			if err != nil {
				var validationErr *offer.ValidationError
				if errors.As(err, &validationErr) {
					return nil, validation.InvalidQueryParameter(validationErr.Field, validationErr.Value, validationErr.Reason)
				}
				return nil, validation.InvalidQueryParameter("", nil, err.Error())
			}
			return filter, nil
		},
		fetch: func(ctx context.Context, filter *offer.Filter) ([]*offer.Offer, uint64, error) {
			return service.Storage.Offers().GetByFilter(ctx, filter)
		},
	}
}

// EndpointGetOffers handles the 'GET /v1/offers' listing endpoint.
// Accepted filters: category, country, city, language, universityId, scholarship, minTuition, maxTuition.
func (service *Service) EndpointGetOffers(writer http.ResponseWriter, request *http.Request) {
	serveListing(service, writer, request, service.offerListing())
}

// EndpointGetOffer handles the 'GET /v1/offers/{id}' endpoint
func (service *Service) EndpointGetOffer(writer http.ResponseWriter, request *http.Request) {
	id, validationErr := pathID(request)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	obj, err := service.Storage.Offers().GetByID(request.Context(), id)
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

// EndpointCreateOffer handles the 'POST /v1/offers' endpoint
func (service *Service) EndpointCreateOffer(writer http.ResponseWriter, request *http.Request) {
	draft, validationErrs, err := schema.UnmarshalBody[offer.Draft](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	obj, err := offer.OfDraft(draft, service.now())
	if err != nil {
		var validationErr *offer.ValidationError
		if errors.As(err, &validationErr) {
			service.writer.WriteErrors(writer, http.StatusBadRequest, validation.InvalidBodyParameter(validationErr.Field, validationErr.Value, validationErr.Reason))
			return
		}
		service.writer.WriteInternalError(writer, err)
		return
	}

	owner, err := service.Storage.Universities().GetByID(request.Context(), obj.UniversityID)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if owner == nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validation.InvalidBodyParameter("university_id", obj.UniversityID, "the university does not exist"))
		return
	}

	if err := service.Storage.Offers().Create(request.Context(), obj); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSONCode(writer, http.StatusCreated, obj)
}

// EndpointDeleteOffer handles the 'DELETE /v1/offers/{id}' endpoint
func (service *Service) EndpointDeleteOffer(writer http.ResponseWriter, request *http.Request) {
	id, validationErr := pathID(request)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	deleted, err := service.Storage.Offers().Delete(request.Context(), id)
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
