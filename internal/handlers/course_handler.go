package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/services"
	"github.com/CDP-2025/course-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courses services.CourseService
}

func NewCourseHandler(courses services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		courses:     courses,
	}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	identity := auth.IdentityFromContext(c)

	course, err := h.courses.Create(c.Request.Context(), &req, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	courses, total, err := h.courses.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses, "total": total})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	course, err := h.courses.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.courses.Delete(c.Request.Context(), id); err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *CourseHandler) CreateQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	identity := auth.IdentityFromContext(c)

	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.CourseID = id

	quiz, err := h.courses.CreateQuiz(c.Request.Context(), &req, identity.UserID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

// ListQuizzes attaches each caller's custom_deadline to the items.
func (h *CourseHandler) ListQuizzes(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	identity := auth.IdentityFromContext(c)
	userID := ""
	if !identity.Anonymous() {
		userID = identity.UserID
	}

	quizzes, err := h.courses.ListQuizzes(c.Request.Context(), id, userID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}
