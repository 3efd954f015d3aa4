package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"athlete-registry-backend/internal/common/errors"
	"athlete-registry-backend/internal/common/middleware"
	"athlete-registry-backend/internal/common/upload"
	"athlete-registry-backend/internal/features/user/models"
	"athlete-registry-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
	uploads *upload.Saver
	protect gin.HandlerFunc
}

func NewUserHandler(service service.UserService, uploads *upload.Saver, protect gin.HandlerFunc) *UserHandler {
	return &UserHandler{service: service, uploads: uploads, protect: protect}
}

func (h *UserHandler) RegisterRoutes(users *gin.RouterGroup) {
	// Public routes.
	users.POST("/login", h.login)
	users.POST("/contact", h.contact)
	users.GET("/check-email/:email", h.checkEmail)
	users.GET("/check-phone/:phone", h.checkPhone)
	users.GET("/check-id/:idNumber", h.checkIDNumber)

	// Authenticated routes.
	auth := users.Group("")
	auth.Use(h.protect)
	{
		auth.GET("", h.listUsers)
		auth.POST("/logout", h.logout)
		auth.GET("/:id", h.getUser)
		auth.PUT("/:id", h.updateUser)

		admin := auth.Group("")
		admin.Use(middleware.RestrictTo(models.RoleAdmin, models.RoleSuperAdmin))
		{
			admin.POST("", h.createUser)
			admin.DELETE("/:id", h.deleteUser)
		}
	}
}

// @Summary Login
// @Description Authenticate with email or phone plus password and receive a bearer token.
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} middleware.ErrorResponse "Invalid credentials"
// @Router /users/login [post]
func (h *UserHandler) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.New(errors.ErrCodeValidation, err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": resp.Token, "data": gin.H{"user": resp.User}})
}

// @Summary Logout
// @Description Tokens are self-contained, so there is no server-side session to invalidate; the client drops its copy.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users/logout [post]
func (h *UserHandler) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// @Summary Check email existence
// @Tags users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} models.ExistsResponse
// @Router /users/check-email/{email} [get]
func (h *UserHandler) checkEmail(c *gin.Context) {
	exists, err := h.service.EmailExists(c.Request.Context(), c.Param("email"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ExistsResponse{Exists: exists})
}

// @Summary Check phone existence
// @Tags users
// @Produce json
// @Param phone path string true "Phone"
// @Success 200 {object} models.ExistsResponse
// @Router /users/check-phone/{phone} [get]
func (h *UserHandler) checkPhone(c *gin.Context) {
	exists, err := h.service.PhoneExists(c.Request.Context(), c.Param("phone"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ExistsResponse{Exists: exists})
}

// @Summary Check ID number existence
// @Tags users
// @Produce json
// @Param idNumber path string true "National ID number"
// @Success 200 {object} models.ExistsResponse
// @Router /users/check-id/{idNumber} [get]
func (h *UserHandler) checkIDNumber(c *gin.Context) {
	exists, err := h.service.IDNumberExists(c.Request.Context(), c.Param("idNumber"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ExistsResponse{Exists: exists})
}

// @Summary List users
// @Description Admins see all users (optionally filtered by role); voters see only themselves.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter" Enums(SuperAdmin, Admin, Voter)
// @Success 200 {object} map[string]interface{}
// @Router /users [get]
func (h *UserHandler) listUsers(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Abort(c, errors.NewUnauthorizedError("Not authorized to access this route"))
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), actor, c.Query("role"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"users": users}})
}

// @Summary Get user
// @Description Self or admin access.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 200 {object} models.UserResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) getUser(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), actor, id)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"user": user}})
}

// @Summary Create user (admin)
// @Description Administrator direct-create path; bypasses the OTP flow and may set any role.
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.UserResponse
// @Failure 409 {object} middleware.ErrorResponse "Duplicate field"
// @Router /users [post]
func (h *UserHandler) createUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.Abort(c, errors.New(errors.ErrCodeValidation, err.Error()))
		return
	}

	idImage, err := h.optionalUpload(c)
	if err != nil {
		middleware.Abort(c, errors.NewValidationError("idImage", err.Error()))
		return
	}
	user, err := h.service.CreateUser(c.Request.Context(), &req, idImage)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"user": user}})
}

// @Summary Update user
// @Description Self or admin access; a non-empty password is re-hashed and role changes require an administrator.
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 200 {object} models.UserResponse
// @Router /users/{id} [put]
func (h *UserHandler) updateUser(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.Abort(c, errors.New(errors.ErrCodeValidation, err.Error()))
		return
	}

	idImage, err := h.optionalUpload(c)
	if err != nil {
		middleware.Abort(c, errors.NewValidationError("idImage", err.Error()))
		return
	}
	user, err := h.service.UpdateUser(c.Request.Context(), actor, id, &req, idImage)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"user": user}})
}

// @Summary Delete user (admin)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 204 "Deleted"
// @Router /users/{id} [delete]
func (h *UserHandler) deleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.Abort(c, errors.NewValidationError("id", "must be an integer"))
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Contact form
// @Description Relay a contact form submission by email.
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.ContactRequest true "Message"
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} middleware.ErrorResponse "Email undeliverable"
// @Router /users/contact [post]
func (h *UserHandler) contact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.New(errors.ErrCodeValidation, err.Error()))
		return
	}

	if err := h.service.Contact(c.Request.Context(), &req); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent successfully"})
}

func (h *UserHandler) actorAndID(c *gin.Context) (*models.User, int64, bool) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Abort(c, errors.NewUnauthorizedError("Not authorized to access this route"))
		return nil, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.Abort(c, errors.NewValidationError("id", "must be an integer"))
		return nil, 0, false
	}
	return actor, id, true
}

// optionalUpload saves the idImage part when present. A missing file is
// fine; a present but invalid one is not.
func (h *UserHandler) optionalUpload(c *gin.Context) (*string, error) {
	file, err := c.FormFile("idImage")
	if err != nil {
		return nil, nil
	}
	stored, err := h.uploads.Save(c, file)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}
