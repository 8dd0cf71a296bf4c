package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/peopleregistry/peopleregistry/internal/api/models"
	"github.com/peopleregistry/peopleregistry/internal/api/response"
	"github.com/peopleregistry/peopleregistry/internal/deletion"
	"github.com/peopleregistry/peopleregistry/internal/person"
)

// PersonHandler handles person CRUD and deletion endpoints.
type PersonHandler struct {
	personService   *person.Service
	deletionService *deletion.Service
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personService *person.Service, deletionService *deletion.Service) *PersonHandler {
	return &PersonHandler{
		personService:   personService,
		deletionService: deletionService,
	}
}

// List handles GET /v1/people - paginated person listing.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20, 100)
	cursor := r.URL.Query().Get("cursor")

	page, err := h.personService.List(r.Context(), limit, cursor)
	if err != nil {
		response.InternalError(w, r, "failed to list people")
		return
	}

	response.JSON(w, r, http.StatusOK, page)
}

// Get handles GET /v1/people/{personId}.
func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")

	p, err := h.personService.Get(r.Context(), personID)
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			response.NotFound(w, r, "person not found")
			return
		}
		response.InternalError(w, r, "failed to fetch person")
		return
	}

	response.JSON(w, r, http.StatusOK, p)
}

// Create handles POST /v1/people.
func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PersonCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	p, err := h.personService.Create(r.Context(), &req)
	if err != nil {
		var validationErr *person.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		if errors.Is(err, person.ErrEmailTaken) {
			response.Conflict(w, r, "email already registered")
			return
		}
		response.InternalError(w, r, "failed to create person")
		return
	}

	response.Created(w, r, "/v1/people/"+p.ID, p)
}

// Update handles PATCH /v1/people/{personId} - partial update.
func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")

	var req models.PersonUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	p, err := h.personService.Update(r.Context(), personID, &req)
	if err != nil {
		var validationErr *person.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation error", validationErr.Errors)
			return
		}
		if errors.Is(err, person.ErrPersonNotFound) {
			response.NotFound(w, r, "person not found")
			return
		}
		if errors.Is(err, person.ErrEmailTaken) {
			response.Conflict(w, r, "email already registered")
			return
		}
		response.InternalError(w, r, "failed to update person")
		return
	}

	response.JSON(w, r, http.StatusOK, p)
}

// InitiateDeletion handles POST /v1/people/{personId}/delete/initiate.
// Returns a single-use confirmation token when no dependent records
// block the deletion, or a 409 enumerating the blocking records.
func (h *PersonHandler) InitiateDeletion(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")

	var req models.DeletionInitiateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, r, "invalid JSON body", nil)
			return
		}
	}
	if !validReason(req.Reason) {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "reason", Message: "must be at most 500 characters"},
		})
		return
	}

	result, err := h.deletionService.Initiate(r.Context(), personID, actorFromRequest(r), req.Reason)
	if err != nil {
		var integrityErr *deletion.IntegrityError
		if errors.As(err, &integrityErr) {
			writeIntegrityError(w, r, integrityErr)
			return
		}
		if errors.Is(err, person.ErrPersonNotFound) {
			response.NotFound(w, r, "person not found")
			return
		}
		response.InternalError(w, r, "failed to initiate deletion")
		return
	}

	response.JSON(w, r, http.StatusOK, models.DeletionInitiateResponse{
		Success:              true,
		ConfirmationToken:    result.Token,
		ExpiresAt:            models.Timestamp(result.ExpiresAt),
		BlockingRecordsFound: result.BlockingRecordsFound,
	})
}

// ConfirmDeletion handles DELETE /v1/people/{personId}. The body must
// carry the confirmation token issued by InitiateDeletion.
func (h *PersonHandler) ConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personId")

	var req models.DeletionConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.ConfirmationToken == "" {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "confirmation_token", Message: "is required"},
		})
		return
	}
	if !validReason(req.Reason) {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "reason", Message: "must be at most 500 characters"},
		})
		return
	}

	err := h.deletionService.Confirm(r.Context(), personID, req.ConfirmationToken, actorFromRequest(r), req.Reason)
	if err != nil {
		var integrityErr *deletion.IntegrityError
		if errors.As(err, &integrityErr) {
			writeIntegrityError(w, r, integrityErr)
			return
		}
		if errors.Is(err, deletion.ErrInvalidOrExpiredToken) {
			response.BadRequest(w, r, "invalid or expired confirmation token", nil)
			return
		}
		if errors.Is(err, deletion.ErrForbidden) {
			response.Forbidden(w, r, "confirmation token was issued to a different user")
			return
		}
		if errors.Is(err, person.ErrPersonNotFound) {
			response.NotFound(w, r, "person not found")
			return
		}
		response.InternalError(w, r, "failed to delete person")
		return
	}

	response.NoContent(w, r)
}

// writeIntegrityError writes the referential-integrity 409 body. This
// endpoint predates the RFC7807 standardization and keeps its original
// snake_case shape for existing clients.
func writeIntegrityError(w http.ResponseWriter, r *http.Request, integrityErr *deletion.IntegrityError) {
	records := make([]models.RelatedRecord, len(integrityErr.RelatedRecords))
	for i, rec := range integrityErr.RelatedRecords {
		records[i] = models.RelatedRecord{
			ID:         rec.ID,
			ParentID:   rec.ParentID,
			ParentName: rec.ParentName,
			Status:     rec.Status,
			CreatedAt:  models.Timestamp(rec.CreatedAt),
		}
	}
	response.JSON(w, r, http.StatusConflict, models.ReferentialIntegrityError{
		Error:          models.ErrCodeReferentialIntegrity,
		Message:        "person has active or pending related records and cannot be deleted",
		RelatedRecords: records,
	})
}

// actorFromRequest builds the audit actor from the authenticated user
// and request metadata.
func actorFromRequest(r *http.Request) deletion.Actor {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return deletion.Actor{
		ID:        GetUserID(r.Context()),
		IP:        ip,
		UserAgent: r.UserAgent(),
	}
}

func validReason(reason *string) bool {
	return reason == nil || len(*reason) <= deletion.MaxReasonLength
}

// parseLimit reads the limit query parameter, clamped to [1, max].
func parseLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
