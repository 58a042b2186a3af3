package services

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CDP-2025/course-service/internal/events"
)

func TestCertificateService_Ensure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(discardSlog())
	svc := NewCertificateService(repo, publisher, testLogger(), testValidator())

	first, err := svc.Ensure(ctx, "student-1", "course-1", "student-1")
	require.NoError(t, err)
	require.NotNil(t, first)

	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{12}$`), first.CertificateNumber)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventCertificateIssued, published[0].Type)

	t.Run("second ensure returns the same certificate", func(t *testing.T) {
		second, err := svc.Ensure(ctx, "student-1", "course-1", "student-1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.CertificateNumber, second.CertificateNumber)
		assert.Len(t, publisher.GetPublishedEvents(), 1, "no event for an already-issued pair")
	})

	t.Run("other course gets its own certificate", func(t *testing.T) {
		other, err := svc.Ensure(ctx, "student-1", "course-2", "student-1")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, other.ID)
	})
}

// A burst of completions for the same (user, course) pair must converge on a
// single certificate: the conditional insert lets exactly one writer create
// the row and every other caller receives it.
func TestCertificateService_EnsureConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(discardSlog())
	svc := NewCertificateService(repo, publisher, testLogger(), testValidator())

	const writers = 32
	ids := make([]string, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cert, err := svc.Ensure(ctx, "student-1", "course-1", "student-1")
			if assert.NoError(t, err) {
				ids[i] = cert.ID
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, repo.certs, 1, "exactly one certificate row survives the burst")
	for i, id := range ids {
		assert.Equal(t, ids[0], id, "caller %d must see the winning row", i)
	}
	assert.Len(t, publisher.GetPublishedEvents(), 1, "only the winning insert publishes")
}

func TestCertificateService_AdminIssue(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(discardSlog())
	svc := NewCertificateService(repo, publisher, testLogger(), testValidator())

	existing, err := svc.Ensure(ctx, "student-1", "course-1", "student-1")
	require.NoError(t, err)

	// Admin issuance for an already-certified pair resolves to the existing
	// row instead of failing or duplicating.
	cert, err := svc.AdminIssue(ctx, &AdminIssueCertificateRequest{
		UserID:   "student-1",
		CourseID: "course-1",
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, cert.ID)

	t.Run("fresh pair honours the supplied number", func(t *testing.T) {
		cert, err := svc.AdminIssue(ctx, &AdminIssueCertificateRequest{
			UserID:            "student-2",
			CourseID:          "course-1",
			CertificateNumber: "CUSTOM-001",
		}, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, "CUSTOM-001", cert.CertificateNumber)
		assert.Equal(t, "admin-1", cert.GeneratedBy)
	})

	t.Run("missing user id fails validation", func(t *testing.T) {
		_, err := svc.AdminIssue(ctx, &AdminIssueCertificateRequest{CourseID: "course-1"}, "admin-1")
		assert.True(t, IsValidation(err))
	})
}

func TestCertificateService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(discardSlog())
	svc := NewCertificateService(repo, publisher, testLogger(), testValidator())

	cert, err := svc.Ensure(ctx, "student-1", "course-1", "student-1")
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, cert.CertificateNumber, got.CertificateNumber)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrCertificateNotFound)
}
