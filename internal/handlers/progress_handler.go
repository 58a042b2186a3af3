package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/services"
	"github.com/CDP-2025/course-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: NewBaseHandler(logger),
		progress:    progress,
	}
}

// ReportProgress records a completion fact for the caller. Re-reporting the
// same fact is a no-op on the ledger, so clients may retry freely.
func (h *ProgressHandler) ReportProgress(c *gin.Context) {
	identity := auth.IdentityFromContext(c)

	var req services.ReportProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.progress.Report(c.Request.Context(), &req, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ProgressHandler) ListMyProgress(c *gin.Context) {
	identity := auth.IdentityFromContext(c)

	records, err := h.progress.ListForUser(c.Request.Context(), identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": records, "total": len(records)})
}

// GetUserProgress serves another user's ledger; the route restricts it to
// staff.
func (h *ProgressHandler) GetUserProgress(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	records, err := h.progress.ListForUser(c.Request.Context(), id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": records, "total": len(records)})
}

func (h *ProgressHandler) GetMySummary(c *gin.Context) {
	identity := auth.IdentityFromContext(c)

	summary, err := h.progress.Summary(c.Request.Context(), identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
