package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportCatalog owns the in-memory report collection and answers the list,
// map and summary queries. Insertion order is preserved.
type ReportCatalog struct {
	mu      sync.RWMutex
	reports []domain.Report

	repo      domain.ReportRepository
	publisher domain.EventPublisher
	locator   *LocationResolver
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewReportCatalog creates an empty catalog. repo, publisher and locator are optional.
func NewReportCatalog(repo domain.ReportRepository, publisher domain.EventPublisher, locator *LocationResolver, logger *zap.Logger) *ReportCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportCatalog{
		repo:      repo,
		publisher: publisher,
		locator:   locator,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Load replaces the collection with the persisted reports
func (c *ReportCatalog) Load(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}
	reports, err := c.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}
	c.mu.Lock()
	c.reports = reports
	c.mu.Unlock()
	c.logger.Info("report catalog loaded", zap.Int("count", len(reports)))
	return nil
}

// ValidateReportInput checks issue type, description and location in that
// order and reports the first missing field. A location needs an in-range,
// non-zero fix; an address alone is not enough.
func ValidateReportInput(in domain.ReportInput) error {
	if !in.IssueType.Valid() {
		return &domain.SubmissionError{Field: "issueType", Err: domain.ErrMissingIssueType}
	}
	if strings.TrimSpace(in.Description) == "" {
		return &domain.SubmissionError{Field: "description", Err: domain.ErrMissingDescription}
	}
	if in.Location == nil || in.Location.IsZero() || !in.Location.InRange() {
		return &domain.SubmissionError{Field: "location", Err: domain.ErrMissingLocation}
	}
	return nil
}

// Submit validates the form and appends a Pending report
func (c *ReportCatalog) Submit(ctx context.Context, in domain.ReportInput) (*domain.Report, error) {
	if err := ValidateReportInput(in); err != nil {
		return nil, err
	}

	report := domain.Report{
		ID:          c.newID(),
		IssueType:   in.IssueType,
		Title:       in.IssueType.Label(),
		Description: strings.TrimSpace(in.Description),
		PhotoRef:    in.PhotoRef,
		Location:    *in.Location,
		Status:      domain.StatusPending,
		ReporterID:  in.ReporterID,
		CreatedAt:   c.now().UTC(),
	}
	if report.Location.Address == "" {
		report.Location.Address = UnknownLocation
	}

	c.mu.Lock()
	if c.repo != nil {
		if err := c.repo.Save(ctx, &report); err != nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("failed to save report: %w", err)
		}
	}
	c.reports = append(c.reports, report)
	c.mu.Unlock()

	c.logger.Info("report submitted",
		zap.String("report_id", report.ID),
		zap.String("issue_type", string(report.IssueType)))

	if c.publisher != nil {
		event := domain.NewEvent(domain.ReportSubmittedEvent).
			WithReport(report.ID).
			WithUser(report.ReporterID).
			WithMetadata("issue_type", string(report.IssueType))
		if err := c.publisher.Publish(ctx, domain.SubjectReportSubmitted, event); err != nil {
			c.logger.Warn("failed to publish report event", zap.Error(err))
		}
	}

	out := report
	return &out, nil
}

// ListFiltered returns the reports matching f in insertion order
func (c *ReportCatalog) ListFiltered(f domain.FilterState) []domain.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Report, 0, len(c.reports))
	for i := range c.reports {
		if f.Matches(&c.reports[i]) {
			out = append(out, c.reports[i])
		}
	}
	return out
}

// MapMarkers projects the filtered reports for the map view
func (c *ReportCatalog) MapMarkers(f domain.FilterState) []domain.MapMarker {
	reports := c.ListFiltered(f)
	markers := make([]domain.MapMarker, 0, len(reports))
	for _, r := range reports {
		markers = append(markers, domain.MapMarker{
			ID:        r.ID,
			Title:     r.Title,
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
			Status:    r.Status,
		})
	}
	return markers
}

// CountsByStatus counts Pending, InProgress and Completed over the whole
// collection. UnderReview reports are not part of the summary.
func (c *ReportCatalog) CountsByStatus() domain.StatusCounts {
	counts := domain.StatusCounts{
		domain.StatusPending:    0,
		domain.StatusInProgress: 0,
		domain.StatusCompleted:  0,
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.reports {
		if _, tracked := counts[r.Status]; tracked {
			counts[r.Status]++
		}
	}
	return counts
}

// Len returns the size of the collection
func (c *ReportCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reports)
}

// ResolveCurrentLocation resolves the device fix through the catalog's locator
func (c *ReportCatalog) ResolveCurrentLocation(ctx context.Context, device domain.Geolocator) (*domain.ResolvedLocation, error) {
	if c.locator == nil {
		return nil, &domain.LocationError{Err: domain.ErrLocationUnavailable}
	}
	return c.locator.ResolveCurrentLocation(ctx, device)
}
