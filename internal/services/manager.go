package services

import (
	"github.com/CDP-2025/course-service/internal/auth"
	"github.com/CDP-2025/course-service/internal/events"
	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/utils"
)

// ServiceManager bundles every service behind one constructor so the wiring
// in cmd/server stays flat.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Course() CourseService
	Assignment() AssignmentService
	Attempt() AttemptService
	Deadline() DeadlineService
	Progress() ProgressService
	Certificate() CertificateService
	Export() ExportService
}

type serviceManager struct {
	auth        AuthService
	user        UserService
	course      CourseService
	assignment  AssignmentService
	attempt     AttemptService
	deadline    DeadlineService
	progress    ProgressService
	certificate CertificateService
	export      ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	tokens *auth.TokenService,
	identity *auth.RepositoryIdentityStore,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
) ServiceManager {
	certificate := NewCertificateService(repo, publisher, logger, validator)
	progress := NewProgressService(repo, certificate, publisher, logger, validator)
	attempt := NewAttemptService(repo, logger, validator)
	deadline := NewDeadlineService(repo, logger, validator)

	return &serviceManager{
		auth:        NewAuthService(repo, tokens, logger, validator),
		user:        NewUserService(repo, identity, logger),
		course:      NewCourseService(repo, deadline, logger, validator),
		assignment:  NewAssignmentService(repo, attempt, deadline, progress, publisher, logger, validator),
		attempt:     attempt,
		deadline:    deadline,
		progress:    progress,
		certificate: certificate,
		export:      NewExportService(repo, logger),
	}
}

func (m *serviceManager) Auth() AuthService               { return m.auth }
func (m *serviceManager) User() UserService               { return m.user }
func (m *serviceManager) Course() CourseService           { return m.course }
func (m *serviceManager) Assignment() AssignmentService   { return m.assignment }
func (m *serviceManager) Attempt() AttemptService         { return m.attempt }
func (m *serviceManager) Deadline() DeadlineService       { return m.deadline }
func (m *serviceManager) Progress() ProgressService       { return m.progress }
func (m *serviceManager) Certificate() CertificateService { return m.certificate }
func (m *serviceManager) Export() ExportService           { return m.export }
