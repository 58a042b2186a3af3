package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/services"
	"github.com/CDP-2025/course-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	users services.UserService
	authn services.AuthService
}

func NewUserHandler(users services.UserService, authn services.AuthService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		users:       users,
		authn:       authn,
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{
		Search: c.Query("search"),
	}
	if role := c.Query("role"); role != "" && models.IsValidRole(role) {
		r := models.RoleName(role)
		filters.Role = &r
	}

	users, total, err := h.users.List(c.Request.Context(), filters)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type setBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

func (h *UserHandler) SetBlocked(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req setBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.users.SetBlocked(c.Request.Context(), id, req.Blocked); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Blocked status updated", gin.H{"blocked": req.Blocked})
}

type updateRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

// UpdateRoles replaces the user's full role set.
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req updateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.users.UpdateRoles(c.Request.Context(), id, req.Roles); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Roles updated", gin.H{"roles": req.Roles})
}

func (h *UserHandler) Impersonate(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	identity := auth.IdentityFromContext(c)

	token, err := h.authn.Impersonate(c.Request.Context(), id, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
