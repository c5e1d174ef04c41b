package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily-report/internal/model"

	"gorm.io/gorm"
)

// ReportService is the store for daily report records.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{db: db} }

// Migrate creates the daily_reports table if missing.
func (s *ReportService) Migrate() error {
	return s.db.AutoMigrate(&model.Report{})
}

// Create inserts a new report. An empty date becomes today's date string,
// so text ordering lines up with calendar order for default entries.
func (s *ReportService) Create(ctx context.Context, in model.ReportInput) (*model.Report, error) {
	date := in.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	report := model.Report{
		Date:        date,
		Category:    in.Category,
		Issue:       in.Issue,
		RootCause:   in.RootCause,
		ActionTaken: in.ActionTaken,
		Status:      in.Status,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return &report, nil
}

// List returns reports matching the filter, newest date first. All filter
// comparisons are plain string comparisons on the date column.
func (s *ReportService) List(ctx context.Context, f model.ReportFilter) ([]model.Report, error) {
	q := s.db.WithContext(ctx).Model(&model.Report{})
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.StartDate != "" {
		q = q.Where("date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("date <= ?", f.EndDate)
	}

	var reports []model.Report
	if err := q.Order("date DESC, id DESC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	return reports, nil
}

func (s *ReportService) Get(ctx context.Context, id int) (*model.Report, error) {
	var report model.Report
	err := s.db.WithContext(ctx).First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report %d: %w", id, err)
	}
	return &report, nil
}

// Delete removes a report by id. Deleting an id that does not exist
// (including a second delete of the same id) returns ErrNotFound.
func (s *ReportService) Delete(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Delete(&model.Report{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete report %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Summarize groups every report by its date string. Within a date the
// digests keep insertion order (ascending id).
func (s *ReportService) Summarize(ctx context.Context) (map[string][]model.ReportDigest, error) {
	var reports []model.Report
	err := s.db.WithContext(ctx).Order("date, id").Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	grouped := make(map[string][]model.ReportDigest)
	for _, r := range reports {
		grouped[r.Date] = append(grouped[r.Date], model.ReportDigest{
			Category:    r.Category,
			Issue:       r.Issue,
			RootCause:   r.RootCause,
			ActionTaken: r.ActionTaken,
			Status:      r.Status,
		})
	}
	return grouped, nil
}

func (s *ReportService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Report{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}
