package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// GrantCourtesyRequest is the request body for POST /events/{eventID}/courtesies.
// Exactly one of person_id and person_data identifies the beneficiary.
type GrantCourtesyRequest struct {
	PersonID         *string               `json:"person_id,omitempty"`
	PersonData       *domain.RawPersonData `json:"person_data,omitempty"`
	Type             domain.CourtesyType   `json:"type"`
	Scope            domain.CourtesyScope  `json:"scope"`
	SpecificBlockIDs []string              `json:"specific_block_ids,omitempty"`
	SpeakerID        *string               `json:"speaker_id,omitempty"`
	Reason           *string               `json:"reason,omitempty"`
	Notes            *string               `json:"notes,omitempty"`
	ValidUntil       *time.Time            `json:"valid_until,omitempty"`
	Locale           string                `json:"locale,omitempty"`
}

// Validate implements Validator. Only id formats are checked here; grant rules are the service's.
func (g GrantCourtesyRequest) Validate() []string {
	var errs []string
	if g.PersonID != nil && !isUUID(*g.PersonID) {
		errs = append(errs, "person_id must be a UUID")
	}
	if g.SpeakerID != nil && !isUUID(*g.SpeakerID) {
		errs = append(errs, "speaker_id must be a UUID")
	}
	for _, id := range g.SpecificBlockIDs {
		if !isUUID(id) {
			errs = append(errs, "specific_block_ids must contain UUIDs")
			break
		}
	}
	return errs
}

func (g GrantCourtesyRequest) toDomain(eventID string) domain.GrantRequest {
	return domain.GrantRequest{
		EventID:          eventID,
		PersonID:         g.PersonID,
		PersonData:       g.PersonData,
		Type:             g.Type,
		Scope:            g.Scope,
		SpecificBlockIDs: g.SpecificBlockIDs,
		SpeakerID:        g.SpeakerID,
		Reason:           g.Reason,
		Notes:            g.Notes,
		ValidUntil:       g.ValidUntil,
		Locale:           g.Locale,
	}
}

// GrantSpeakerCourtesiesRequest is the request body for POST /events/{eventID}/courtesies/speakers.
type GrantSpeakerCourtesiesRequest struct {
	Scope domain.CourtesyScope `json:"scope"`
}

// GrantSpeakerCourtesiesResponse lists the courtesies created by a bulk speaker grant.
type GrantSpeakerCourtesiesResponse struct {
	Courtesies []*domain.Courtesy `json:"courtesies"`
	Created    int                `json:"created"`
}

// CourtesyListResponse is a page of courtesies.
type CourtesyListResponse struct {
	Items      []*domain.Courtesy     `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// CourtesySuccessResponse is the success envelope for single-courtesy responses.
type CourtesySuccessResponse struct {
	Data  *domain.Courtesy  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CourtesyListSuccessResponse is the success envelope for courtesy list responses.
type CourtesyListSuccessResponse struct {
	Data  CourtesyListResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GrantSpeakerCourtesiesSuccessResponse is the success envelope for bulk speaker grants.
type GrantSpeakerCourtesiesSuccessResponse struct {
	Data  GrantSpeakerCourtesiesResponse `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// CourtesyStatsSuccessResponse is the success envelope for courtesy stats.
type CourtesyStatsSuccessResponse struct {
	Data  *domain.CourtesyStats `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type CourtesyController struct {
	Logger    *slog.Logger
	Service   domain.CourtesyService
	Localizer domain.MessageLocalizer
}

func NewCourtesyController(logger *slog.Logger, svc domain.CourtesyService, loc domain.MessageLocalizer) *CourtesyController {
	return &CourtesyController{
		Logger:    logger,
		Service:   svc,
		Localizer: loc,
	}
}

// Grant godoc
// @Summary Grant a courtesy
// @Description Grants complimentary access to an event for an existing person (person_id) or one resolved from person_data. FULL_EVENT creates a zero-price registration, SPECIFIC_BLOCKS one zero-price enrollment per block.
// @Tags courtesies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body GrantCourtesyRequest true "Grant request"
// @Success 201 {object} controllers.CourtesySuccessResponse "data contains the created courtesy"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/courtesies [post]
func (c *CourtesyController) Grant(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.pathID(w, r, "eventID")
	if !ok {
		return
	}
	var req GrantCourtesyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := c.userID(w, r)
	if !ok {
		return
	}
	in := req.toDomain(eventID)
	if in.Locale == "" {
		in.Locale = requestLocale(r)
	}
	courtesy, err := c.Service.Grant(r.Context(), in, userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Localizer, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, courtesy)
}

// GrantSpeakerCourtesies godoc
// @Summary Grant courtesies to every speaker of an event
// @Description Creates one SPEAKER courtesy per speaker that does not already hold an active or used courtesy. Speakers that fail are skipped. SPECIFIC_BLOCKS is not accepted.
// @Tags courtesies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body GrantSpeakerCourtesiesRequest true "Scope for every speaker courtesy"
// @Success 201 {object} controllers.GrantSpeakerCourtesiesSuccessResponse "data contains the created courtesies and their count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/courtesies/speakers [post]
func (c *CourtesyController) GrantSpeakerCourtesies(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.pathID(w, r, "eventID")
	if !ok {
		return
	}
	var req GrantSpeakerCourtesiesRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := c.userID(w, r)
	if !ok {
		return
	}
	created, err := c.Service.GrantSpeakerCourtesies(r.Context(), eventID, req.Scope, userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Localizer, c.Logger, err)
		return
	}
	if created == nil {
		created = []*domain.Courtesy{}
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, GrantSpeakerCourtesiesResponse{Courtesies: created, Created: len(created)})
}

// ListByEvent godoc
// @Summary List an event's courtesies
// @Description Returns the event's courtesies, newest first, paginated.
// @Tags courtesies
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.CourtesyListSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/courtesies [get]
func (c *CourtesyController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.pathID(w, r, "eventID")
	if !ok {
		return
	}
	courtesies, err := c.Service.FindByEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Localizer, c.Logger, err)
		return
	}
	c.writePage(w, r, courtesies)
}

// ListByPerson godoc
// @Summary List a person's courtesies
// @Description Returns the person's courtesies across events, newest first, paginated.
// @Tags courtesies
// @Produce json
// @Security BearerAuth
// @Param personID path string true "Person ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.CourtesyListSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /persons/{personID}/courtesies [get]
func (c *CourtesyController) ListByPerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := c.pathID(w, r, "personID")
	if !ok {
		return
	}
	courtesies, err := c.Service.FindByPerson(r.Context(), personID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Localizer, c.Logger, err)
		return
	}
	c.writePage(w, r, courtesies)
}

// Get godoc
// @Summary Get a courtesy
// @Description Returns the courtesy with its event, person, attendee and provisioned access.
// @Tags courtesies
// @Produce json
// @Security BearerAuth
// @Param courtesyID path string true "Courtesy ID (UUID)"
// @Success 200 {object} controllers.CourtesySuccessResponse "data contains the courtesy"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /courtesies/{courtesyID} [get]
func (c *CourtesyController) Get(w http.ResponseWriter, r *http.Request) {
	courtesyID, ok := c.pathID(w, r, "courtesyID")
	if !ok {
		return
	}
	courtesy, err := c.Service.FindOne(r.Context(), courtesyID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Localizer, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, courtesy)
}

// Cancel godoc
// @Summary Cancel a courtesy
// @Description Cancels an ACTIVE courtesy and the zero-price access it provisioned. A reason is required.
// @Tags courtesies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courtesyID path string true "Courtesy ID (UUID)"
// @Param body body domain.CancelRequest true "Cancellation reason"
// @Success 200 {object} controllers.CourtesySuccessResponse "data contains the cancelled courtesy"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not active)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /courtesies/{courtesyID}/cancel [post]
func (c *CourtesyController) Cancel(w http.ResponseWriter, r *http.Request) {
	courtesyID, ok := c.pathID(w, r, "courtesyID")
	if !ok {
		return
	}
	var req domain.CancelRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := c.userID(w, r)
	if !ok {
		return
	}
	courtesy, err := c.Service.Cancel(r.Context(), courtesyID, req, userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Localizer, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, courtesy)
}

// Stats godoc
// @Summary Courtesy stats for an event
// @Description Counts the event's courtesies by status, type and scope.
// @Tags courtesies
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CourtesyStatsSuccessResponse "data contains the stats"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/courtesies/stats [get]
func (c *CourtesyController) Stats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.pathID(w, r, "eventID")
	if !ok {
		return
	}
	stats, err := c.Service.GetEventStats(r.Context(), eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Localizer, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

func (c *CourtesyController) writePage(w http.ResponseWriter, r *http.Request, courtesies []*domain.Courtesy) {
	items, meta := helpers.Page(courtesies, helpers.ParsePagination(r))
	helpers.WriteJSONSuccess(w, http.StatusOK, CourtesyListResponse{Items: items, Pagination: meta})
}

// pathID reads a UUID path value, writing a localized 400 when it is missing or malformed.
func (c *CourtesyController) pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if !isUUID(id) {
		helpers.WriteKeyError(w, r, c.Localizer, http.StatusBadRequest, helpers.ErrCodeBadRequest, domain.KeyBadRequest)
		return "", false
	}
	return id, true
}

func (c *CourtesyController) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteKeyError(w, r, c.Localizer, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, domain.KeyUnauthorized)
		return "", false
	}
	return userID, true
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// requestLocale returns the base language of the caller's first Accept-Language preference.
func requestLocale(r *http.Request) string {
	tags, _, err := language.ParseAcceptLanguage(strings.TrimSpace(r.Header.Get("Accept-Language")))
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, _ := tags[0].Base()
	return base.String()
}
