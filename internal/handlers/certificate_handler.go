package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/services"
	"github.com/CDP-2025/course-service/internal/utils"
)

type CertificateHandler struct {
	BaseHandler
	certificates services.CertificateService
}

func NewCertificateHandler(certificates services.CertificateService, logger utils.Logger) *CertificateHandler {
	return &CertificateHandler{
		BaseHandler: NewBaseHandler(logger),
		certificates: certificates,
	}
}

// ListCertificates returns the caller's certificates; admins see everything
// with ?all=true.
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	identity := auth.IdentityFromContext(c)

	if c.Query("all") == "true" && auth.HasAnyRole(models.RoleAdmin, models.RoleAccounts)(identity) {
		certs, err := h.certificates.ListAll(c.Request.Context())
		if err != nil {
			h.RespondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"certificates": certs, "total": len(certs)})
		return
	}

	certs, err := h.certificates.ListForUser(c.Request.Context(), identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certs, "total": len(certs)})
}

func (h *CertificateHandler) GetCertificate(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	cert, err := h.certificates.GetByID(c.Request.Context(), id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

// IssueCertificate is the explicit admin path. Issuing for a pair that
// already holds a certificate returns the existing one rather than failing.
func (h *CertificateHandler) IssueCertificate(c *gin.Context) {
	identity := auth.IdentityFromContext(c)

	var req services.AdminIssueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cert, err := h.certificates.AdminIssue(c.Request.Context(), &req, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cert)
}
