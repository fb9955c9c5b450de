package api

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/service"
	"alcyxob/team-workouts/internal/storage"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler serves saved workouts and medical reports.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type WorkoutResponse struct {
	ID           string               `json:"id"`
	Draft        *domain.WorkoutDraft `json:"workout"`
	TotalSeconds int                  `json:"totalSeconds"`
	Version      int                  `json:"version"`
	Archived     bool                 `json:"archived"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	resp := WorkoutResponse{
		ID:        w.ID.Hex(),
		Draft:     w.Draft,
		Version:   w.Version,
		Archived:  w.ArchiveKey != "",
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if w.Draft != nil && w.Draft.Content != nil {
		resp.TotalSeconds = w.Draft.Content.TotalSeconds()
	}
	return resp
}

type MedicalReportRequest struct {
	Status       domain.MedicalStatus `json:"status" binding:"required,oneof=healthy injured limited"`
	Restrictions []domain.Restriction `json:"restrictions"`
}

func writeWorkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrNoArchive):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrDisabled):
		abortWithError(c, http.StatusNotImplemented, err.Error())
	default:
		log.Printf("ERROR: workout request failed: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func parseWorkoutID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// ListWorkouts godoc
// @Summary List the caller's saved workouts
// @Tags Workouts
// @Produce json
// @Success 200 {array} WorkoutResponse
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), coachID)
	if err != nil {
		writeWorkoutError(c, err)
		return
	}
	resp := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		resp[i] = MapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetWorkout godoc
// @Summary Get a saved workout
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	id, ok := parseWorkoutID(c)
	if !ok {
		return
	}
	w, err := h.workoutService.GetWorkout(c.Request.Context(), coachID, id)
	if err != nil {
		writeWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(w))
}

// GetArchiveURL godoc
// @Summary Get a temporary download link for the newest archived copy
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout ID"
// @Success 200 {object} gin.H "{\"url\": \"...\", \"expiresIn\": 900}"
// @Failure 501 {object} gin.H "Archiving disabled"
// @Router /workouts/{id}/archive [get]
func (h *WorkoutHandler) GetArchiveURL(c *gin.Context) {
	coachID, ok := getCoachID(c)
	if !ok {
		return
	}
	id, ok := parseWorkoutID(c)
	if !ok {
		return
	}
	url, err := h.workoutService.ArchiveURL(c.Request.Context(), coachID, id)
	if err != nil {
		writeWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresIn": int(storage.DefaultPresignedURLExpiry.Seconds())})
}

// PutMedicalReport godoc
// @Summary Replace a player's medical report
// @Tags Medical
// @Accept json
// @Param playerId path string true "Player ID"
// @Param report body MedicalReportRequest true "Report"
// @Success 204
// @Router /medical/{playerId} [put]
func (h *WorkoutHandler) PutMedicalReport(c *gin.Context) {
	var req MedicalReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	record := domain.MedicalRecord{
		PlayerID:     c.Param("playerId"),
		Status:       req.Status,
		Restrictions: req.Restrictions,
	}
	if err := h.workoutService.UpdateMedicalReport(c.Request.Context(), record); err != nil {
		if errors.Is(err, service.ErrInvalidMedical) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		writeWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
