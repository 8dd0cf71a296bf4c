package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peopleregistry/peopleregistry/internal/api/models"
	"github.com/peopleregistry/peopleregistry/internal/api/response"
	"github.com/peopleregistry/peopleregistry/internal/person"
	"github.com/peopleregistry/peopleregistry/internal/project"
	"github.com/peopleregistry/peopleregistry/internal/subscription"
)

// SubscriptionHandler handles subscription endpoints.
type SubscriptionHandler struct {
	subscriptionService *subscription.Service
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService *subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// List handles GET /v1/subscriptions - paginated subscription listing.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20, 100)
	cursor := r.URL.Query().Get("cursor")

	page, err := h.subscriptionService.List(r.Context(), limit, cursor)
	if err != nil {
		response.InternalError(w, r, "failed to list subscriptions")
		return
	}

	response.JSON(w, r, http.StatusOK, page)
}

// Get handles GET /v1/subscriptions/{subscriptionId}.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	subscriptionID := chi.URLParam(r, "subscriptionId")

	sub, err := h.subscriptionService.Get(r.Context(), subscriptionID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			response.NotFound(w, r, "subscription not found")
			return
		}
		response.InternalError(w, r, "failed to fetch subscription")
		return
	}

	response.JSON(w, r, http.StatusOK, sub)
}

// ListForPerson handles GET /v1/people/{personId}/subscriptions.
func (h *SubscriptionHandler) ListForPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")

	subs, err := h.subscriptionService.ListForPerson(r.Context(), personID)
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			response.NotFound(w, r, "person not found")
			return
		}
		response.InternalError(w, r, "failed to list subscriptions")
		return
	}

	response.JSON(w, r, http.StatusOK, subs)
}

// Create handles POST /v1/subscriptions.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SubscriptionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	sub, err := h.subscriptionService.Create(r.Context(), &req)
	if err != nil {
		var validationErr *subscription.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		if errors.Is(err, person.ErrPersonNotFound) {
			response.NotFound(w, r, "person not found")
			return
		}
		if errors.Is(err, project.ErrProjectNotFound) {
			response.NotFound(w, r, "project not found")
			return
		}
		if errors.Is(err, subscription.ErrDuplicate) {
			response.Conflict(w, r, "person is already subscribed to this project")
			return
		}
		response.InternalError(w, r, "failed to create subscription")
		return
	}

	response.Created(w, r, "/v1/subscriptions/"+sub.ID, sub)
}

// Update handles PATCH /v1/subscriptions/{subscriptionId}.
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	subscriptionID := chi.URLParam(r, "subscriptionId")

	var req models.SubscriptionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	sub, err := h.subscriptionService.Update(r.Context(), subscriptionID, &req)
	if err != nil {
		var validationErr *subscription.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			response.NotFound(w, r, "subscription not found")
			return
		}
		response.InternalError(w, r, "failed to update subscription")
		return
	}

	response.JSON(w, r, http.StatusOK, sub)
}

// Delete handles DELETE /v1/subscriptions/{subscriptionId}.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subscriptionID := chi.URLParam(r, "subscriptionId")

	if err := h.subscriptionService.Delete(r.Context(), subscriptionID); err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			response.NotFound(w, r, "subscription not found")
			return
		}
		response.InternalError(w, r, "failed to delete subscription")
		return
	}

	response.NoContent(w, r)
}
