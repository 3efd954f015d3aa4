package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"athlete-registry-backend/internal/common/errors"
	"athlete-registry-backend/internal/common/middleware"
	"athlete-registry-backend/internal/common/upload"
	"athlete-registry-backend/internal/features/registration/models"
	"athlete-registry-backend/internal/features/registration/service"
)

type RegistrationHandler struct {
	service service.RegistrationService
	uploads *upload.Saver
}

func NewRegistrationHandler(service service.RegistrationService, uploads *upload.Saver) *RegistrationHandler {
	return &RegistrationHandler{service: service, uploads: uploads}
}

// RegisterRoutes mounts the registration flow on the users group. All
// three routes are public: the flow exists to create the very first
// credentials a client has.
func (h *RegistrationHandler) RegisterRoutes(users *gin.RouterGroup) {
	users.POST("/initiate-registration", h.initiate)
	users.POST("/verify-otp", h.verifyOTP)
	users.DELETE("/temp/:id", h.discard)
}

// @Summary Initiate registration
// @Description Stage a registration and email a one-time code. The staged record expires if not confirmed.
// @Tags registration
// @Accept mpfd
// @Produce json
// @Param first_name formData string true "First name"
// @Param last_name formData string true "Last name"
// @Param email formData string true "Email"
// @Param phone formData string true "Phone"
// @Param id_number formData string true "National ID number"
// @Param password formData string true "Password"
// @Param idImage formData file false "ID document"
// @Success 201 {object} models.InitiateResponse
// @Failure 400 {object} middleware.ErrorResponse "Malformed field"
// @Failure 409 {object} middleware.ErrorResponse "Duplicate email/phone/ID number"
// @Failure 502 {object} middleware.ErrorResponse "Verification email undeliverable"
// @Router /users/initiate-registration [post]
func (h *RegistrationHandler) initiate(c *gin.Context) {
	var req models.InitiateRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.Abort(c, errors.New(errors.ErrCodeValidation, err.Error()))
		return
	}

	var idImage *string
	if file, err := c.FormFile("idImage"); err == nil {
		stored, err := h.uploads.Save(c, file)
		if err != nil {
			middleware.Abort(c, errors.NewValidationError("idImage", err.Error()))
			return
		}
		idImage = &stored
	}

	resp, err := h.service.Initiate(c.Request.Context(), &req, idImage)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": resp})
}

// @Summary Verify OTP and complete registration
// @Description Check the emailed code against the staged record and, on match, promote it into a permanent user.
// @Tags registration
// @Accept json
// @Produce json
// @Param request body models.VerifyRequest true "Staging id and code"
// @Success 201 {object} map[string]interface{} "Created user summary"
// @Failure 400 {object} middleware.ErrorResponse "Code did not match"
// @Failure 404 {object} middleware.ErrorResponse "Record expired or absent"
// @Router /users/verify-otp [post]
func (h *RegistrationHandler) verifyOTP(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.New(errors.ErrCodeValidation, err.Error()))
		return
	}

	result, err := h.service.Verify(c.Request.Context(), req.PendingID, req.Code)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	if result.Expired {
		middleware.Abort(c, errors.NewNotFoundError("pending registration", req.PendingID).
			WithDetail("remediation", "request a new code"))
		return
	}
	if !result.Matched {
		middleware.Abort(c, errors.NewValidationError("otp", "verification code does not match").
			WithDetail("remediation", "try again"))
		return
	}

	// Confirm re-checks the code itself; the successful Verify above only
	// shaped the client-facing remediation messages.
	user, err := h.service.Confirm(c.Request.Context(), req.PendingID, req.Code)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"user": user}})
}

// @Summary Discard a staged registration
// @Description Explicitly cancel a pending registration. Idempotent.
// @Tags registration
// @Produce json
// @Param id path string true "Staging id"
// @Success 204 "Discarded"
// @Router /users/temp/{id} [delete]
func (h *RegistrationHandler) discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
