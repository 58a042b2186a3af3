package postgres

import (
	"gorm.io/gorm"

	"github.com/CDP-2025/course-service/internal/repositories"
)

type repository struct {
	user        repositories.UserRepository
	course      repositories.CourseRepository
	assignment  repositories.AssignmentRepository
	quiz        repositories.QuizRepository
	submission  repositories.SubmissionRepository
	override    repositories.OverrideRepository
	progress    repositories.ProgressRepository
	certificate repositories.CertificateRepository
	enrollment  repositories.EnrollmentRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		user:        NewUserPostgreSQL(db),
		course:      NewCoursePostgreSQL(db),
		assignment:  NewAssignmentPostgreSQL(db),
		quiz:        NewQuizPostgreSQL(db),
		submission:  NewSubmissionPostgreSQL(db),
		override:    NewOverridePostgreSQL(db),
		progress:    NewProgressPostgreSQL(db),
		certificate: NewCertificatePostgreSQL(db),
		enrollment:  NewEnrollmentPostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository               { return r.user }
func (r *repository) Course() repositories.CourseRepository           { return r.course }
func (r *repository) Assignment() repositories.AssignmentRepository   { return r.assignment }
func (r *repository) Quiz() repositories.QuizRepository               { return r.quiz }
func (r *repository) Submission() repositories.SubmissionRepository   { return r.submission }
func (r *repository) Override() repositories.OverrideRepository       { return r.override }
func (r *repository) Progress() repositories.ProgressRepository       { return r.progress }
func (r *repository) Certificate() repositories.CertificateRepository { return r.certificate }
func (r *repository) Enrollment() repositories.EnrollmentRepository   { return r.enrollment }
