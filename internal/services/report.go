package services

import (
	"context"

	"github.com/floodwatch/apiserver/types"
)

// ReportRepository defines persistence operations for disaster reports.
type ReportRepository interface {
	Create(ctx context.Context, report types.Report) (types.Report, error)
	List(ctx context.Context) ([]types.Report, error)
}

// ReportService encapsulates report use-cases.
type ReportService struct {
	repo ReportRepository
}

func NewReportService(repo ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) Create(ctx context.Context, report types.Report) (types.Report, error) {
	return s.repo.Create(ctx, report)
}

func (s *ReportService) List(ctx context.Context) ([]types.Report, error) {
	return s.repo.List(ctx)
}
