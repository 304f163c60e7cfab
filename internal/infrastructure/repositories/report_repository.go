package repositories

import (
	"context"
	"time"

	"github.com/Sasmit28/CivicApp/domain"
	"gorm.io/gorm"
)

// ReportRepositoryImpl implements domain.ReportRepository using GORM
type ReportRepositoryImpl struct {
	db *gorm.DB
}

// DBReport represents the database model for Report
type DBReport struct {
	Seq         uint      `gorm:"primaryKey;autoIncrement"`
	ID          string    `gorm:"uniqueIndex;size:36"`
	IssueType   string    `gorm:"index;size:32"`
	Title       string    `gorm:"size:128"`
	Description string    `gorm:"type:text"`
	PhotoRef    string    `gorm:"size:255"`
	Latitude    float64
	Longitude   float64
	Address     string    `gorm:"size:512"`
	Status      string    `gorm:"index;size:32"`
	ReporterID  string    `gorm:"index;size:36"`
	CreatedAt   time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBReport) TableName() string {
	return "reports"
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domain.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

// Save implements domain.ReportRepository
func (r *ReportRepositoryImpl) Save(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Create(reportToDB(report)).Error
}

// List implements domain.ReportRepository. Rows come back in insertion order.
func (r *ReportRepositoryImpl) List(ctx context.Context) ([]domain.Report, error) {
	var rows []DBReport
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	reports := make([]domain.Report, 0, len(rows))
	for i := range rows {
		reports = append(reports, reportFromDB(&rows[i]))
	}
	return reports, nil
}

func reportToDB(r *domain.Report) *DBReport {
	return &DBReport{
		ID:          r.ID,
		IssueType:   string(r.IssueType),
		Title:       r.Title,
		Description: r.Description,
		PhotoRef:    r.PhotoRef,
		Latitude:    r.Location.Latitude,
		Longitude:   r.Location.Longitude,
		Address:     r.Location.Address,
		Status:      string(r.Status),
		ReporterID:  r.ReporterID,
		CreatedAt:   r.CreatedAt,
	}
}

func reportFromDB(row *DBReport) domain.Report {
	return domain.Report{
		ID:          row.ID,
		IssueType:   domain.IssueType(row.IssueType),
		Title:       row.Title,
		Description: row.Description,
		PhotoRef:    row.PhotoRef,
		Location: domain.ResolvedLocation{
			Coordinates: domain.Coordinates{Latitude: row.Latitude, Longitude: row.Longitude},
			Address:     row.Address,
		},
		Status:     domain.Status(row.Status),
		ReporterID: row.ReporterID,
		CreatedAt:  row.CreatedAt,
	}
}
