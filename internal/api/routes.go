package api

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	draftService service.DraftService,
	workoutService service.WorkoutService,
) {
	authHandler := NewAuthHandler(authService)
	draftHandler := NewDraftHandler(draftService)
	workoutHandler := NewWorkoutHandler(workoutService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Draft sessions (coaches only) ---
		drafts := protected.Group("/drafts")
		drafts.Use(RoleMiddleware(domain.RoleCoach))
		{
			drafts.POST("", draftHandler.StartDraft)
			drafts.GET("/:id", draftHandler.GetDraft)
			drafts.PATCH("/:id", draftHandler.PatchDraft)
			drafts.DELETE("/:id", draftHandler.CancelDraft)
			drafts.POST("/:id/undo", draftHandler.Undo)
			drafts.POST("/:id/redo", draftHandler.Redo)
			drafts.POST("/:id/reset", draftHandler.Reset)
			drafts.POST("/:id/validate", draftHandler.Validate)
			drafts.POST("/:id/save", draftHandler.Save)
			drafts.PUT("/:id/autosave", draftHandler.SetAutoSave)
			drafts.POST("/:id/players/:playerId", draftHandler.AddPlayer)
			drafts.DELETE("/:id/players/:playerId", draftHandler.RemovePlayer)
			drafts.POST("/:id/teams/:teamId", draftHandler.AddTeam)
			drafts.DELETE("/:id/teams/:teamId", draftHandler.RemoveTeam)
		}

		// --- Saved workouts ---
		workouts := protected.Group("/workouts")
		workouts.Use(RoleMiddleware(domain.RoleCoach))
		{
			workouts.GET("", workoutHandler.ListWorkouts)
			workouts.GET("/:id", workoutHandler.GetWorkout)
			workouts.GET("/:id/archive", workoutHandler.GetArchiveURL)
		}

		// PUT /api/v1/medical/{playerId} - medical staff maintain the reports validation reads
		protected.PUT("/medical/:playerId", RoleMiddleware(domain.RoleMedical), workoutHandler.PutMedicalReport)
	}
}
