package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"athlete-registry-backend/internal/common/errors"
	"athlete-registry-backend/internal/common/middleware"
	"athlete-registry-backend/internal/common/upload"
	"athlete-registry-backend/internal/features/athlete/models"
	"athlete-registry-backend/internal/features/athlete/service"
	usermodels "athlete-registry-backend/internal/features/user/models"
)

type AthleteHandler struct {
	service service.AthleteService
	uploads *upload.Saver
	protect gin.HandlerFunc
}

func NewAthleteHandler(service service.AthleteService, uploads *upload.Saver, protect gin.HandlerFunc) *AthleteHandler {
	return &AthleteHandler{service: service, uploads: uploads, protect: protect}
}

func (h *AthleteHandler) RegisterRoutes(athletes *gin.RouterGroup) {
	// Public reads.
	athletes.GET("", h.listAthletes)
	athletes.GET("/:id", h.getAthlete)

	// Admin writes.
	admin := athletes.Group("")
	admin.Use(h.protect, middleware.RestrictTo(usermodels.RoleAdmin, usermodels.RoleSuperAdmin))
	{
		admin.POST("", h.createAthlete)
		admin.PUT("/:id", h.updateAthlete)
		admin.DELETE("/:id", h.deleteAthlete)
	}
}

// @Summary List athletes
// @Tags athletes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /athletes [get]
func (h *AthleteHandler) listAthletes(c *gin.Context) {
	athletes, err := h.service.ListAthletes(c.Request.Context())
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"athletes": athletes}})
}

// @Summary Get athlete
// @Tags athletes
// @Produce json
// @Param id path int true "Athlete id"
// @Success 200 {object} models.Athlete
// @Failure 404 {object} middleware.ErrorResponse
// @Router /athletes/{id} [get]
func (h *AthleteHandler) getAthlete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	athlete, err := h.service.GetAthlete(c.Request.Context(), id)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"athlete": athlete}})
}

// @Summary Create athlete (admin)
// @Tags athletes
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Athlete
// @Failure 409 {object} middleware.ErrorResponse "Duplicate ID number"
// @Router /athletes [post]
func (h *AthleteHandler) createAthlete(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Abort(c, errors.NewUnauthorizedError("Not authorized to access this route"))
		return
	}

	var req models.CreateAthleteRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.Abort(c, errors.New(errors.ErrCodeValidation, err.Error()))
		return
	}

	image, err := h.optionalUpload(c)
	if err != nil {
		middleware.Abort(c, errors.NewValidationError("image", err.Error()))
		return
	}

	athlete, err := h.service.CreateAthlete(c.Request.Context(), actor, &req, image)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"athlete": athlete}})
}

// @Summary Update athlete (admin)
// @Tags athletes
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Athlete id"
// @Success 200 {object} models.Athlete
// @Router /athletes/{id} [put]
func (h *AthleteHandler) updateAthlete(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Abort(c, errors.NewUnauthorizedError("Not authorized to access this route"))
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req models.UpdateAthleteRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.Abort(c, errors.New(errors.ErrCodeValidation, err.Error()))
		return
	}

	image, err := h.optionalUpload(c)
	if err != nil {
		middleware.Abort(c, errors.NewValidationError("image", err.Error()))
		return
	}

	athlete, err := h.service.UpdateAthlete(c.Request.Context(), actor, id, &req, image)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"athlete": athlete}})
}

// @Summary Delete athlete (admin)
// @Tags athletes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Athlete id"
// @Success 204 "Deleted"
// @Router /athletes/{id} [delete]
func (h *AthleteHandler) deleteAthlete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAthlete(c.Request.Context(), id); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AthleteHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.Abort(c, errors.NewValidationError("id", "must be an integer"))
		return 0, false
	}
	return id, true
}

func (h *AthleteHandler) optionalUpload(c *gin.Context) (*string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	stored, err := h.uploads.Save(c, file)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}
