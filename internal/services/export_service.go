package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/CDP-2025/course-service/internal/repositories"
	"github.com/CDP-2025/course-service/internal/utils"
)

// ExportService produces the staff-facing gradebook spreadsheet for one
// assignment.
type ExportService interface {
	ExportSubmissions(ctx context.Context, assignmentID string) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportSubmissions(ctx context.Context, assignmentID string) ([]byte, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	submissions, _, err := s.repo.Submission().List(ctx, repositories.SubmissionFilters{
		AssignmentID: &assignmentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submissions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Submission ID", "User ID", "Submitted At", "Status", "Marks", "Feedback", "Graded By", "Graded At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, sub := range submissions {
		values := []interface{}{
			sub.ID,
			sub.UserID,
			sub.SubmittedAt.Format("2006-01-02 15:04:05"),
			string(sub.Status),
			nil, nil, nil, nil,
		}
		if sub.MarksObtained != nil {
			values[4] = *sub.MarksObtained
		}
		if sub.Feedback != nil {
			values[5] = *sub.Feedback
		}
		if sub.GradedBy != nil {
			values[6] = *sub.GradedBy
		}
		if sub.GradedAt != nil {
			values[7] = sub.GradedAt.Format("2006-01-02 15:04:05")
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("gradebook exported",
		"assignment_id", assignment.ID,
		"submissions", len(submissions))
	return buf.Bytes(), nil
}
