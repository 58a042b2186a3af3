package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/services"
	"github.com/CDP-2025/course-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID})
}

// Me is reachable for blocked identities: it is how a client finds out it
// has been blocked.
func (h *AuthHandler) Me(c *gin.Context) {
	identity := auth.IdentityFromContext(c)
	if identity.Anonymous() {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
		return
	}

	user, err := h.service.Me(c.Request.Context(), identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"roles":           user.Roles,
		"impersonated_by": identity.ImpersonatedBy,
	})
}
