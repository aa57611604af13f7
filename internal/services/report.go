package services

import (
	"context"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/store"
)

type ReportService struct {
	store store.Store
}

func NewReportService(s store.Store) *ReportService {
	return &ReportService{store: s}
}

func (s *ReportService) GetReport(ctx context.Context, userID, reportID string) (*model.Report, error) {
	r, err := s.store.Reports().GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, model.ErrForbidden
	}
	return r, nil
}

func (s *ReportService) ListReports(ctx context.Context, userID string) ([]*model.Report, error) {
	return s.store.Reports().List(ctx, userID)
}

func (s *ReportService) DeleteReport(ctx context.Context, userID, reportID string) error {
	if _, err := s.GetReport(ctx, userID, reportID); err != nil {
		return err
	}
	return s.store.Reports().Delete(ctx, reportID)
}
