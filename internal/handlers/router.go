package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/services"
	"github.com/CDP-2025/course-service/internal/utils"
)

type HandlerManager struct {
	authHandler        *AuthHandler
	userHandler        *UserHandler
	courseHandler      *CourseHandler
	assignmentHandler  *AssignmentHandler
	progressHandler    *ProgressHandler
	certificateHandler *CertificateHandler

	tokens *auth.TokenService
	gate   *auth.Gate
	logger utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *auth.TokenService,
	gate *auth.Gate,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:        NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:        NewUserHandler(serviceManager.User(), serviceManager.Auth(), logger),
		courseHandler:      NewCourseHandler(serviceManager.Course(), logger),
		assignmentHandler:  NewAssignmentHandler(serviceManager.Assignment(), serviceManager.Attempt(), serviceManager.Deadline(), serviceManager.Export(), logger),
		progressHandler:    NewProgressHandler(serviceManager.Progress(), logger),
		certificateHandler: NewCertificateHandler(serviceManager.Certificate(), logger),
		tokens:             tokens,
		gate:               gate,
		logger:             logger,
	}
}

// SetupRoutes sets up all API routes. Every /api/v1 route runs the optional
// authentication middleware; per-group Require middlewares then enforce the
// role predicates. A blocked account fails every Require except GET /auth/me,
// which inspects the identity directly so clients can discover the block.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "course-service",
		})
	})

	authenticated := auth.Require(hm.gate, auth.Authenticated())
	staffOnly := auth.Require(hm.gate, auth.HasAnyRole(models.RoleAdmin, models.RoleTeacher, models.RoleAccounts))
	adminOnly := auth.Require(hm.gate, auth.HasAnyRole(models.RoleAdmin, models.RoleAccounts))

	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware(hm.tokens, hm.gate, hm.logger))
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", hm.authHandler.Login)
			authGroup.POST("/register", hm.authHandler.Register)
			authGroup.GET("/me", hm.authHandler.Me)
		}

		// User administration routes
		users := v1.Group("/users", adminOnly)
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id/blocked", hm.userHandler.SetBlocked)
			users.PUT("/:id/roles", hm.userHandler.UpdateRoles)
			users.POST("/:id/impersonate", hm.userHandler.Impersonate)
			users.GET("/:id/progress", staffOnly, hm.progressHandler.GetUserProgress)
		}

		// Course catalog routes
		courses := v1.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.GET("/:id/quizzes", hm.courseHandler.ListQuizzes)
			courses.POST("", staffOnly, hm.courseHandler.CreateCourse)
			courses.PUT("/:id", staffOnly, hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", staffOnly, hm.courseHandler.DeleteCourse)
			courses.POST("/:id/quizzes", staffOnly, hm.courseHandler.CreateQuiz)
		}

		// Assignment routes
		assignments := v1.Group("/assignments")
		{
			assignments.GET("", hm.assignmentHandler.ListAssignments)
			assignments.GET("/:id", hm.assignmentHandler.GetAssignment)
			assignments.POST("", staffOnly, hm.assignmentHandler.CreateAssignment)
			assignments.PUT("/:id", staffOnly, hm.assignmentHandler.UpdateAssignment)
			assignments.DELETE("/:id", staffOnly, hm.assignmentHandler.DeleteAssignment)

			assignments.POST("/:id/submissions", authenticated, hm.assignmentHandler.SubmitAssignment)
			assignments.GET("/:id/attempts", authenticated, hm.assignmentHandler.GetAttemptStatus)
			assignments.PUT("/:id/extra-attempts", staffOnly, hm.assignmentHandler.GrantExtraAttempts)
			assignments.PUT("/:id/deadline", staffOnly, hm.assignmentHandler.SetDeadlineOverride)
			assignments.GET("/:id/submissions/export", staffOnly, hm.assignmentHandler.ExportSubmissions)
		}

		// Per-user quiz deadline overrides
		quizzes := v1.Group("/quizzes")
		{
			quizzes.PUT("/:id/deadline", staffOnly, hm.assignmentHandler.SetQuizDeadlineOverride)
		}

		// Submission routes
		submissions := v1.Group("/submissions", authenticated)
		{
			submissions.GET("", hm.assignmentHandler.ListSubmissions)
			submissions.PUT("/:id/grade", staffOnly, hm.assignmentHandler.GradeSubmission)
		}

		// Progress routes
		progress := v1.Group("/progress", authenticated)
		{
			progress.POST("", hm.progressHandler.ReportProgress)
			progress.GET("/me", hm.progressHandler.ListMyProgress)
			progress.GET("/me/summary", hm.progressHandler.GetMySummary)
		}

		// Certificate routes
		certificates := v1.Group("/certificates", authenticated)
		{
			certificates.GET("", hm.certificateHandler.ListCertificates)
			certificates.GET("/:id", hm.certificateHandler.GetCertificate)
			certificates.POST("", adminOnly, hm.certificateHandler.IssueCertificate)
		}
	}
}
