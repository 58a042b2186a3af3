package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/services"
	"github.com/CDP-2025/course-service/internal/utils"
)

type AssignmentHandler struct {
	BaseHandler
	assignments services.AssignmentService
	attempts    services.AttemptService
	deadlines   services.DeadlineService
	export      services.ExportService
}

func NewAssignmentHandler(
	assignments services.AssignmentService,
	attempts services.AttemptService,
	deadlines services.DeadlineService,
	export services.ExportService,
	logger utils.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler: NewBaseHandler(logger),
		assignments: assignments,
		attempts:    attempts,
		deadlines:   deadlines,
		export:      export,
	}
}

func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	identity := auth.IdentityFromContext(c)

	assignment, err := h.assignments.Create(c.Request.Context(), &req, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// ListAssignments attaches each caller's custom_deadline to the items.
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	identity := auth.IdentityFromContext(c)
	userID := ""
	if !identity.Anonymous() {
		userID = identity.UserID
	}

	assignments, err := h.assignments.ListForUser(c.Request.Context(), c.Query("courseId"), userID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	assignment, err := h.assignments.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	assignment, err := h.assignments.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.assignments.Delete(c.Request.Context(), id); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type submitBody struct {
	FilePath string `json:"file_path" binding:"required"`
}

// SubmitAssignment accepts a submission if the caller still has attempts
// left; an exhausted ceiling is a 409.
func (h *AssignmentHandler) SubmitAssignment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	identity := auth.IdentityFromContext(c)

	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	submission, err := h.assignments.Submit(c.Request.Context(), &services.SubmitAssignmentRequest{
		AssignmentID: id,
		FilePath:     body.FilePath,
	}, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"submission_id": submission.ID,
		"file_path":     submission.FilePath,
	})
}

func (h *AssignmentHandler) SetDeadlineOverride(c *gin.Context) {
	h.setDeadline(c, models.OverrideAssignment)
}

func (h *AssignmentHandler) SetQuizDeadlineOverride(c *gin.Context) {
	h.setDeadline(c, models.OverrideQuiz)
}

func (h *AssignmentHandler) setDeadline(c *gin.Context, itemType models.OverrideItemType) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var body struct {
		UserID   string    `json:"user_id" binding:"required"`
		Deadline time.Time `json:"deadline" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "user_id and deadline required", err)
		return
	}

	err := h.deadlines.SetOverride(c.Request.Context(), &services.SetDeadlineOverrideRequest{
		ItemType: itemType,
		ItemID:   id,
		UserID:   body.UserID,
		Deadline: body.Deadline,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// GetAttemptStatus reports the caller's attempt budget on one assignment.
func (h *AssignmentHandler) GetAttemptStatus(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	identity := auth.IdentityFromContext(c)

	allowed, err := h.attempts.EffectiveAttempts(c.Request.Context(), id, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	used, err := h.attempts.SubmittedCount(c.Request.Context(), id, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	remaining := allowed - used
	if remaining < 0 {
		remaining = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"allowed":   allowed,
		"used":      used,
		"remaining": remaining,
	})
}

type extraAttemptsBody struct {
	UserID        string `json:"user_id" binding:"required"`
	ExtraAttempts *int   `json:"extra_attempts" binding:"required"`
}

func (h *AssignmentHandler) GrantExtraAttempts(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	identity := auth.IdentityFromContext(c)

	var body extraAttemptsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "user_id and extra_attempts required", err)
		return
	}

	err := h.attempts.GrantExtraAttempts(c.Request.Context(), &services.GrantAttemptsRequest{
		AssignmentID:  id,
		UserID:        body.UserID,
		ExtraAttempts: *body.ExtraAttempts,
	}, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	identity := auth.IdentityFromContext(c)
	isStaff := auth.HasAnyRole(models.RoleAdmin, models.RoleTeacher, models.RoleAccounts)(identity)

	filters := repositories.SubmissionFilters{}
	if assignmentID := c.Query("assignmentId"); assignmentID != "" {
		filters.AssignmentID = &assignmentID
	}
	if courseID := c.Query("courseId"); courseID != "" {
		filters.CourseID = &courseID
	}
	if status := c.Query("status"); status != "" {
		s := models.SubmissionStatus(status)
		filters.Status = &s
	}
	// Non-staff callers, or explicit mine=true, only see their own rows.
	if !isStaff || c.Query("mine") == "true" {
		filters.UserID = &identity.UserID
	}

	submissions, total, err := h.assignments.ListSubmissions(c.Request.Context(), filters)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions, "total": total})
}

func (h *AssignmentHandler) GradeSubmission(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	identity := auth.IdentityFromContext(c)

	var req services.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.assignments.Grade(c.Request.Context(), id, &req, identity.UserID); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"graded": true})
}

// ExportSubmissions streams the gradebook workbook for one assignment.
func (h *AssignmentHandler) ExportSubmissions(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	workbook, err := h.export.ExportSubmissions(c.Request.Context(), id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="submissions.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
