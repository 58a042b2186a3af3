package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/CDP-2025/course-service/internal/models"
	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/utils"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func discardSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator() *utils.Validator {
	return utils.NewValidator()
}

func timeFixture() time.Time {
	return time.Date(2026, 9, 20, 23, 59, 0, 0, time.UTC)
}

// fakeRepo is an in-memory repositories.Repository mirroring the store's
// conflict semantics: upserts replace on the same composite keys the real
// unique indexes cover.
type fakeRepo struct {
	mu sync.Mutex

	users       map[string]*models.User
	roles       map[string][]models.RoleName
	courses     map[string]*models.Course
	assignments map[string]*models.Assignment
	quizzes     map[string]*models.Quiz
	submissions map[string]*models.Submission
	deadlines   map[string]*models.DeadlineOverride
	grants      map[string]*models.AttemptGrant
	progress    map[string]*models.ProgressRecord
	certs       map[string]*models.Certificate
	enrollments map[string]int64

	certInsertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       make(map[string]*models.User),
		roles:       make(map[string][]models.RoleName),
		courses:     make(map[string]*models.Course),
		assignments: make(map[string]*models.Assignment),
		quizzes:     make(map[string]*models.Quiz),
		submissions: make(map[string]*models.Submission),
		deadlines:   make(map[string]*models.DeadlineOverride),
		grants:      make(map[string]*models.AttemptGrant),
		progress:    make(map[string]*models.ProgressRecord),
		certs:       make(map[string]*models.Certificate),
		enrollments: make(map[string]int64),
	}
}

func key(parts ...string) string { return strings.Join(parts, "|") }

func (r *fakeRepo) User() repositories.UserRepository               { return (*fakeUserRepo)(r) }
func (r *fakeRepo) Course() repositories.CourseRepository           { return (*fakeCourseRepo)(r) }
func (r *fakeRepo) Assignment() repositories.AssignmentRepository   { return (*fakeAssignmentRepo)(r) }
func (r *fakeRepo) Quiz() repositories.QuizRepository               { return (*fakeQuizRepo)(r) }
func (r *fakeRepo) Submission() repositories.SubmissionRepository   { return (*fakeSubmissionRepo)(r) }
func (r *fakeRepo) Override() repositories.OverrideRepository       { return (*fakeOverrideRepo)(r) }
func (r *fakeRepo) Progress() repositories.ProgressRepository       { return (*fakeProgressRepo)(r) }
func (r *fakeRepo) Certificate() repositories.CertificateRepository { return (*fakeCertificateRepo)(r) }
func (r *fakeRepo) Enrollment() repositories.EnrollmentRepository   { return (*fakeEnrollmentRepo)(r) }

// ----- users -----

type fakeUserRepo fakeRepo

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SetBlocked(ctx context.Context, id string, blocked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.IsBlocked = blocked
	return nil
}

func (r *fakeUserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (r *fakeUserRepo) GetRoles(ctx context.Context, userID string) ([]models.RoleName, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.RoleName(nil), r.roles[userID]...), nil
}

func (r *fakeUserRepo) AddRole(ctx context.Context, userID string, role models.RoleName) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles[userID] {
		if existing == role {
			return nil
		}
	}
	r.roles[userID] = append(r.roles[userID], role)
	return nil
}

func (r *fakeUserRepo) ReplaceRoles(ctx context.Context, userID string, roles []models.RoleName) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[userID] = append([]models.RoleName(nil), roles...)
	return nil
}

// ----- courses -----

type fakeCourseRepo fakeRepo

func (r *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *course
	return &copied, nil
}

func (r *fakeCourseRepo) List(ctx context.Context, limit, offset int) ([]*models.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Course, 0, len(r.courses))
	for _, course := range r.courses {
		copied := *course
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.courses, id)
	return nil
}

// ----- assignments -----

type fakeAssignmentRepo fakeRepo

func (r *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *assignment
	return &copied, nil
}

func (r *fakeAssignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Assignment
	for _, a := range r.assignments {
		if a.CourseID == courseID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAssignmentRepo) List(ctx context.Context) ([]*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Assignment, 0, len(r.assignments))
	for _, a := range r.assignments {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *fakeAssignmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, id)
	return nil
}

// ----- quizzes -----

type fakeQuizRepo fakeRepo

func (r *fakeQuizRepo) Create(ctx context.Context, quiz *models.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r *fakeQuizRepo) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *quiz
	return &copied, nil
}

func (r *fakeQuizRepo) ListByCourse(ctx context.Context, courseID string) ([]*models.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Quiz
	for _, q := range r.quizzes {
		if q.CourseID == courseID {
			copied := *q
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeQuizRepo) Update(ctx context.Context, quiz *models.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r *fakeQuizRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quizzes, id)
	return nil
}

// ----- submissions -----

type fakeSubmissionRepo fakeRepo

func (r *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions[submission.ID] = submission
	return nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submission, ok := r.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *submission
	return &copied, nil
}

func (r *fakeSubmissionRepo) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Submission
	for _, s := range r.submissions {
		if filters.AssignmentID != nil && s.AssignmentID != *filters.AssignmentID {
			continue
		}
		if filters.UserID != nil && s.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && s.Status != *filters.Status {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeSubmissionRepo) CountByAssignmentAndUser(ctx context.Context, assignmentID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, s := range r.submissions {
		if s.AssignmentID == assignmentID && s.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSubmissionRepo) UpdateGrading(ctx context.Context, id string, marks *float64, feedback *string, status models.SubmissionStatus, gradedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	submission, ok := r.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	submission.MarksObtained = marks
	submission.Feedback = feedback
	submission.Status = status
	submission.GradedBy = &gradedBy
	submission.GradedAt = &now
	return nil
}

func (r *fakeSubmissionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.submissions, id)
	return nil
}

// ----- overrides -----

type fakeOverrideRepo fakeRepo

func (r *fakeOverrideRepo) UpsertDeadline(ctx context.Context, override *models.DeadlineOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(string(override.ItemType), override.ItemID, override.UserID)
	if existing, ok := r.deadlines[k]; ok {
		existing.Deadline = override.Deadline
		return nil
	}
	r.deadlines[k] = override
	return nil
}

func (r *fakeOverrideRepo) GetDeadline(ctx context.Context, itemType models.OverrideItemType, itemID, userID string) (*models.DeadlineOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	override, ok := r.deadlines[key(string(itemType), itemID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *override
	return &copied, nil
}

func (r *fakeOverrideRepo) ListDeadlinesForUser(ctx context.Context, itemType models.OverrideItemType, userID string) ([]*models.DeadlineOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DeadlineOverride
	for _, o := range r.deadlines {
		if o.ItemType == itemType && o.UserID == userID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeOverrideRepo) UpsertGrant(ctx context.Context, grant *models.AttemptGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(grant.AssignmentID, grant.UserID)
	if existing, ok := r.grants[k]; ok {
		existing.ExtraAttempts = grant.ExtraAttempts
		existing.GrantedBy = grant.GrantedBy
		existing.GrantedAt = grant.GrantedAt
		return nil
	}
	r.grants[k] = grant
	return nil
}

func (r *fakeOverrideRepo) GetGrant(ctx context.Context, assignmentID, userID string) (*models.AttemptGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	grant, ok := r.grants[key(assignmentID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *grant
	return &copied, nil
}

// ----- progress -----

type fakeProgressRepo fakeRepo

func (r *fakeProgressRepo) Upsert(ctx context.Context, record *models.ProgressRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(record.UserID, record.CourseID, string(record.ItemType), record.AssignmentID, record.QuizID)
	if existing, ok := r.progress[k]; ok {
		// Mirrors ON CONFLICT DO UPDATE ... RETURNING: the stored row keeps
		// its id and the caller's record is overwritten with it.
		record.ID = existing.ID
	}
	r.progress[k] = record
	return nil
}

func (r *fakeProgressRepo) ListByUser(ctx context.Context, userID string) ([]*models.ProgressRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ProgressRecord
	for _, p := range r.progress {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) CountCompleted(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.progress {
		if p.UserID == userID && p.Status == models.ProgressCompleted {
			count++
		}
	}
	return count, nil
}

func (r *fakeProgressRepo) AveragePercentage(ctx context.Context, userID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	var count int
	for _, p := range r.progress {
		if p.UserID == userID && p.Percentage != nil {
			sum += *p.Percentage
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

// ----- certificates -----

type fakeCertificateRepo fakeRepo

func (r *fakeCertificateRepo) InsertIfAbsent(ctx context.Context, cert *models.Certificate) (*models.Certificate, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.certInsertErr != nil {
		return nil, false, r.certInsertErr
	}
	k := key(cert.UserID, cert.CourseID)
	if existing, ok := r.certs[k]; ok {
		copied := *existing
		return &copied, false, nil
	}
	r.certs[k] = cert
	copied := *cert
	return &copied, true, nil
}

func (r *fakeCertificateRepo) GetByID(ctx context.Context, id string) (*models.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cert := range r.certs {
		if cert.ID == id {
			copied := *cert
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCertificateRepo) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cert, ok := r.certs[key(userID, courseID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *cert
	return &copied, nil
}

func (r *fakeCertificateRepo) ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Certificate
	for _, cert := range r.certs {
		if cert.UserID == userID {
			copied := *cert
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeCertificateRepo) ListAll(ctx context.Context) ([]*models.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Certificate, 0, len(r.certs))
	for _, cert := range r.certs {
		copied := *cert
		out = append(out, &copied)
	}
	return out, nil
}

// ----- enrollments -----

type fakeEnrollmentRepo fakeRepo

func (r *fakeEnrollmentRepo) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enrollments[userID], nil
}

var _ repositories.Repository = (*fakeRepo)(nil)
