package api

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/draft"
	"alcyxob/team-workouts/internal/service"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DraftHandler exposes editing sessions over HTTP.
type DraftHandler struct {
	draftService service.DraftService
}

func NewDraftHandler(draftService service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// --- DTOs ---

// DraftPatchRequest is a partial update. Absent fields are left untouched.
// At most one content field may be set and it must match the workout type.
type DraftPatchRequest struct {
	Name              *string                     `json:"name"`
	Date              *string                     `json:"date"` // YYYY-MM-DD or RFC 3339
	DurationMinutes   *int                        `json:"durationMinutes"`
	Location          *string                     `json:"location"`
	AssignedPlayerIDs *[]string                   `json:"assignedPlayerIds"`
	AssignedTeamIDs   *[]string                   `json:"assignedTeamIds"`
	Intensity         *domain.Intensity           `json:"intensity" binding:"omitempty,oneof=low moderate high max"`
	Tags              *[]string                   `json:"tags"`
	Notes             *string                     `json:"notes"`
	Strength          *domain.StrengthContent     `json:"strength"`
	Conditioning      *domain.ConditioningContent `json:"conditioning"`
	Hybrid            *domain.HybridContent       `json:"hybrid"`
	Agility           *domain.AgilityContent      `json:"agility"`
}

// ToPatch converts the request into a domain patch.
func (r DraftPatchRequest) ToPatch() (domain.DraftPatch, error) {
	p := domain.DraftPatch{
		Name:              r.Name,
		DurationMinutes:   r.DurationMinutes,
		Location:          r.Location,
		AssignedPlayerIDs: r.AssignedPlayerIDs,
		AssignedTeamIDs:   r.AssignedTeamIDs,
		Intensity:         r.Intensity,
		Tags:              r.Tags,
		Notes:             r.Notes,
	}
	if r.Date != nil {
		d, err := parseDate(*r.Date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}

	var contents []domain.Content
	if r.Strength != nil {
		contents = append(contents, r.Strength)
	}
	if r.Conditioning != nil {
		contents = append(contents, r.Conditioning)
	}
	if r.Hybrid != nil {
		contents = append(contents, r.Hybrid)
	}
	if r.Agility != nil {
		contents = append(contents, r.Agility)
	}
	switch len(contents) {
	case 0:
	case 1:
		p.Content = contents[0]
	default:
		return p, errors.New("only one content payload may be sent")
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

type StartDraftRequest struct {
	DocumentType domain.DocumentType `json:"documentType"`
	UseTemplate  bool                `json:"useTemplate"`
	WorkoutID    string              `json:"workoutId"`
	Initial      *DraftPatchRequest  `json:"initial"`
}

type AutoSaveRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type DraftResponse struct {
	ID                string                   `json:"id"`
	WorkoutID         string                   `json:"workoutId,omitempty"`
	Draft             *domain.WorkoutDraft     `json:"draft"`
	TotalSeconds      int                      `json:"totalSeconds"`
	Status            domain.SaveStatus        `json:"status"`
	Dirty             bool                     `json:"dirty"`
	HasUnsavedChanges bool                     `json:"hasUnsavedChanges"`
	CanUndo           bool                     `json:"canUndo"`
	CanRedo           bool                     `json:"canRedo"`
	Version           int                      `json:"version"`
	HistoryLength     int                      `json:"historyLength"`
	LastSavedAt       *time.Time               `json:"lastSavedAt,omitempty"`
	LastSaveError     string                   `json:"lastSaveError,omitempty"`
	AutoSaveEnabled   bool                     `json:"autoSaveEnabled"`
	AutoSavePending   bool                     `json:"autoSavePending"`
	Validation        *domain.ValidationResult `json:"validation,omitempty"`
	ValidatedVersion  int                      `json:"validatedVersion,omitempty"`
}

func MapDraftToResponse(v *service.DraftView) DraftResponse {
	resp := DraftResponse{
		ID:                v.ID,
		Draft:             v.Draft,
		Status:            v.Status,
		Dirty:             v.Dirty,
		HasUnsavedChanges: v.HasUnsavedChanges,
		CanUndo:           v.CanUndo,
		CanRedo:           v.CanRedo,
		Version:           v.Version,
		HistoryLength:     v.HistoryLength,
		LastSaveError:     v.LastSaveError,
		AutoSaveEnabled:   v.AutoSaveEnabled,
		AutoSavePending:   v.AutoSavePending,
		Validation:        v.Validation,
		ValidatedVersion:  v.ValidatedVersion,
	}
	if v.WorkoutID != primitive.NilObjectID {
		resp.WorkoutID = v.WorkoutID.Hex()
	}
	if v.Draft != nil && v.Draft.Content != nil {
		resp.TotalSeconds = v.Draft.Content.TotalSeconds()
	}
	if !v.LastSavedAt.IsZero() {
		t := v.LastSavedAt
		resp.LastSavedAt = &t
	}
	return resp
}

// writeDraftError maps service and session errors to HTTP responses.
func writeDraftError(c *gin.Context, err error) {
	var verr *draft.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "validation": verr.Result})
	case errors.Is(err, service.ErrDraftNotFound), errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDraftAccessDenied), errors.Is(err, service.ErrWorkoutAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, draft.ErrUnsavedChanges):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, draft.ErrSessionClosed):
		abortWithError(c, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrUnknownDocumentType), errors.Is(err, domain.ErrContentMismatch):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		abortWithError(c, http.StatusServiceUnavailable, "Request cancelled before the draft was saved")
	default:
		log.Printf("ERROR: draft request failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func (h *DraftHandler) respond(c *gin.Context, code int, v *service.DraftView, err error) {
	if err != nil {
		writeDraftError(c, err)
		return
	}
	c.JSON(code, MapDraftToResponse(v))
}

// --- Handlers ---

// StartDraft godoc
// @Summary Start an editing session
// @Description Starts a new workout draft, optionally from a template, or opens a saved workout for editing.
// @Tags Drafts
// @Accept json
// @Produce json
// @Param draft body StartDraftRequest true "Session parameters"
// @Success 201 {object} DraftResponse
// @Failure 400 {object} gin.H "Invalid document type or initial values"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /drafts [post]
func (h *DraftHandler) StartDraft(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	var req StartDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	in := service.StartDraftInput{DocumentType: req.DocumentType, UseTemplate: req.UseTemplate}
	if req.WorkoutID != "" {
		id, err := primitive.ObjectIDFromHex(req.WorkoutID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
			return
		}
		in.WorkoutID = id
	} else if _, err := domain.ParseDocumentType(string(req.DocumentType)); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Initial != nil {
		p, err := req.Initial.ToPatch()
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		in.Initial = &p
	}

	v, err := h.draftService.Start(c.Request.Context(), coachID, in)
	h.respond(c, http.StatusCreated, v, err)
}

// GetDraft godoc
// @Summary Get the current state of an editing session
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft session ID"
// @Success 200 {object} DraftResponse
// @Failure 404 {object} gin.H "Session not found"
// @Router /drafts/{id} [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	v, err := h.draftService.State(coachID, c.Param("id"))
	h.respond(c, http.StatusOK, v, err)
}

// PatchDraft godoc
// @Summary Apply a partial update to the draft
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft session ID"
// @Param patch body DraftPatchRequest true "Fields to change"
// @Success 200 {object} DraftResponse
// @Failure 400 {object} gin.H "Invalid patch"
// @Router /drafts/{id} [patch]
func (h *DraftHandler) PatchDraft(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	var req DraftPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	p, err := req.ToPatch()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.draftService.Patch(coachID, c.Param("id"), p)
	h.respond(c, http.StatusOK, v, err)
}

// Undo godoc
// @Summary Undo the last change
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft session ID"
// @Success 200 {object} DraftResponse
// @Router /drafts/{id}/undo [post]
func (h *DraftHandler) Undo(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	v, err := h.draftService.Undo(coachID, c.Param("id"))
	h.respond(c, http.StatusOK, v, err)
}

// Redo godoc
// @Summary Redo the last undone change
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft session ID"
// @Success 200 {object} DraftResponse
// @Router /drafts/{id}/redo [post]
func (h *DraftHandler) Redo(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	v, err := h.draftService.Redo(coachID, c.Param("id"))
	h.respond(c, http.StatusOK, v, err)
}

// Reset godoc
// @Summary Discard every change since the last save
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft session ID"
// @Success 200 {object} DraftResponse
// @Router /drafts/{id}/reset [post]
func (h *DraftHandler) Reset(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	v, err := h.draftService.Reset(coachID, c.Param("id"))
	h.respond(c, http.StatusOK, v, err)
}

// Validate godoc
// @Summary Run the full validation pipeline, including medical checks
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft session ID"
// @Success 200 {object} domain.ValidationResult
// @Router /drafts/{id}/validate [post]
func (h *DraftHandler) Validate(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	res, err := h.draftService.Validate(c.Request.Context(), coachID, c.Param("id"))
	if err != nil {
		writeDraftError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Save godoc
// @Summary Save the draft now
// @Description Cancels the pending autosave, waits for any save in flight and persists the draft.
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft session ID"
// @Success 200 {object} DraftResponse
// @Failure 422 {object} gin.H "Draft is structurally invalid"
// @Router /drafts/{id}/save [post]
func (h *DraftHandler) Save(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	v, err := h.draftService.Save(c.Request.Context(), coachID, c.Param("id"))
	h.respond(c, http.StatusOK, v, err)
}

// SetAutoSave godoc
// @Summary Turn automatic saving on or off
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft session ID"
// @Param body body AutoSaveRequest true "Desired state"
// @Success 200 {object} DraftResponse
// @Router /drafts/{id}/autosave [put]
func (h *DraftHandler) SetAutoSave(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	var req AutoSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	v, err := h.draftService.SetAutoSave(coachID, c.Param("id"), *req.Enabled)
	h.respond(c, http.StatusOK, v, err)
}

func (h *DraftHandler) AddPlayer(c *gin.Context) {
	h.assignment(c, h.draftService.AddPlayer, "playerId")
}

func (h *DraftHandler) RemovePlayer(c *gin.Context) {
	h.assignment(c, h.draftService.RemovePlayer, "playerId")
}

func (h *DraftHandler) AddTeam(c *gin.Context) {
	h.assignment(c, h.draftService.AddTeam, "teamId")
}

func (h *DraftHandler) RemoveTeam(c *gin.Context) {
	h.assignment(c, h.draftService.RemoveTeam, "teamId")
}

func (h *DraftHandler) assignment(c *gin.Context, op func(primitive.ObjectID, string, string) (*service.DraftView, error), param string) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	v, err := op(coachID, c.Param("id"), c.Param(param))
	h.respond(c, http.StatusOK, v, err)
}

// CancelDraft godoc
// @Summary End an editing session without saving
// @Description Fails with 409 when the draft has unsaved changes, unless force=true.
// @Tags Drafts
// @Param id path string true "Draft session ID"
// @Param force query bool false "Discard unsaved changes"
// @Success 204
// @Failure 409 {object} gin.H "Unsaved changes"
// @Router /drafts/{id} [delete]
func (h *DraftHandler) CancelDraft(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err := h.draftService.Cancel(coachID, c.Param("id"), force); err != nil {
		writeDraftError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
