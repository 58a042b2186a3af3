package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CDP-2025/course-service/internal/events"
	"github.com/CDP-2025/course-service/internal/models"
)

func newProgressFixture() (*fakeRepo, *events.MockEventPublisher, ProgressService) {
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(discardSlog())
	certificates := NewCertificateService(repo, publisher, testLogger(), testValidator())
	progress := NewProgressService(repo, certificates, publisher, testLogger(), testValidator())
	return repo, publisher, progress
}

func floatPtr(v float64) *float64 { return &v }

func TestProgressService_ReportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newProgressFixture()

	req := &ReportProgressRequest{
		CourseID:     "course-1",
		ItemType:     string(models.ProgressItemAssignment),
		AssignmentID: "a1",
		Status:       string(models.ProgressInProgress),
		Percentage:   floatPtr(40),
	}
	first, err := svc.Report(ctx, req, "student-1")
	require.NoError(t, err)

	req.Status = string(models.ProgressCompleted)
	req.Percentage = floatPtr(100)
	second, err := svc.Report(ctx, req, "student-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-report must update the same ledger row")

	records, err := svc.ListForUser(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, records[0].ID, second.ID, "response must carry the persisted row id")
	assert.Equal(t, models.ProgressCompleted, records[0].Status)
	assert.NotNil(t, records[0].CompletedAt)
	assert.Len(t, repo.certs, 0, "assignment completion never issues a certificate")
}

func TestProgressService_CourseCompletionIssuesCertificate(t *testing.T) {
	ctx := context.Background()
	repo, publisher, svc := newProgressFixture()

	_, err := svc.Report(ctx, &ReportProgressRequest{
		CourseID:   "course-1",
		ItemType:   string(models.ProgressItemCourse),
		Status:     string(models.ProgressCompleted),
		Percentage: floatPtr(100),
	}, "student-1")
	require.NoError(t, err)

	require.Len(t, repo.certs, 1)

	var types []events.EventType
	for _, e := range publisher.GetPublishedEvents() {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.EventCertificateIssued)
	assert.Contains(t, types, events.EventCourseCompleted)

	t.Run("re-reporting completion does not re-issue", func(t *testing.T) {
		_, err := svc.Report(ctx, &ReportProgressRequest{
			CourseID:   "course-1",
			ItemType:   string(models.ProgressItemCourse),
			Status:     string(models.ProgressCompleted),
			Percentage: floatPtr(100),
		}, "student-1")
		require.NoError(t, err)
		assert.Len(t, repo.certs, 1)
	})
}

// Two clients reporting the same completion at once (a double-click, a retry)
// must still leave one ledger row and one certificate.
func TestProgressService_ParallelCompletionReports(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newProgressFixture()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Report(ctx, &ReportProgressRequest{
				CourseID:   "course-1",
				ItemType:   string(models.ProgressItemCourse),
				Status:     string(models.ProgressCompleted),
				Percentage: floatPtr(100),
			}, "student-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := svc.ListForUser(ctx, "student-1")
	require.NoError(t, err)
	assert.Len(t, records, 1, "parallel reports collapse onto one ledger row")
	assert.Len(t, repo.certs, 1, "parallel completions issue exactly one certificate")
}

func TestProgressService_PartialCourseProgressNoCertificate(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newProgressFixture()

	_, err := svc.Report(ctx, &ReportProgressRequest{
		CourseID:   "course-1",
		ItemType:   string(models.ProgressItemCourse),
		Status:     string(models.ProgressInProgress),
		Percentage: floatPtr(99),
	}, "student-1")
	require.NoError(t, err)
	assert.Len(t, repo.certs, 0)
}

func TestProgressService_IssuanceFailureDoesNotFailReport(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newProgressFixture()
	repo.certInsertErr = errors.New("store unavailable")

	record, err := svc.Report(ctx, &ReportProgressRequest{
		CourseID:   "course-1",
		ItemType:   string(models.ProgressItemCourse),
		Status:     string(models.ProgressCompleted),
		Percentage: floatPtr(100),
	}, "student-1")
	require.NoError(t, err, "progress write must survive a failed issuance")
	require.NotNil(t, record)

	// Retry path: once the store recovers, re-reporting issues the certificate.
	repo.certInsertErr = nil
	_, err = svc.Report(ctx, &ReportProgressRequest{
		CourseID:   "course-1",
		ItemType:   string(models.ProgressItemCourse),
		Status:     string(models.ProgressCompleted),
		Percentage: floatPtr(100),
	}, "student-1")
	require.NoError(t, err)
	assert.Len(t, repo.certs, 1)
}

func TestProgressService_ReportValidation(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newProgressFixture()

	_, err := svc.Report(ctx, &ReportProgressRequest{
		CourseID: "course-1",
		ItemType: "homework",
		Status:   string(models.ProgressCompleted),
	}, "student-1")
	assert.True(t, IsValidation(err))

	_, err = svc.Report(ctx, &ReportProgressRequest{
		CourseID:   "course-1",
		ItemType:   string(models.ProgressItemCourse),
		Status:     string(models.ProgressCompleted),
		Percentage: floatPtr(140),
	}, "student-1")
	assert.True(t, IsValidation(err))
}

func TestProgressService_Summary(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newProgressFixture()
	repo.enrollments["student-1"] = 2

	_, err := svc.Report(ctx, &ReportProgressRequest{
		CourseID:   "course-1",
		ItemType:   string(models.ProgressItemMaterial),
		Status:     string(models.ProgressCompleted),
		Percentage: floatPtr(100),
	}, "student-1")
	require.NoError(t, err)
	_, err = svc.Report(ctx, &ReportProgressRequest{
		CourseID:   "course-2",
		ItemType:   string(models.ProgressItemMaterial),
		Status:     string(models.ProgressInProgress),
		Percentage: floatPtr(50),
	}, "student-1")
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.ActiveCourses)
	assert.Equal(t, int64(1), summary.CompletedItems)
	assert.InDelta(t, 75.0, summary.AverageProgress, 0.001)
}
