package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Sasmit28/CivicApp/domain"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/geo"
	"github.com/Sasmit28/CivicApp/internal/infrastructure/photos"
	"github.com/Sasmit28/CivicApp/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxPhotoBytes = 10 << 20

// ReportHandlers exposes the report catalog
type ReportHandlers struct {
	catalog *services.ReportCatalog
	photos  domain.PhotoStore
	logger  *zap.Logger
}

// NewReportHandlers creates report handlers; photoStore may be nil when uploads are disabled
func NewReportHandlers(catalog *services.ReportCatalog, photoStore domain.PhotoStore, logger *zap.Logger) *ReportHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandlers{catalog: catalog, photos: photoStore, logger: logger}
}

// LocationPayload is a resolved location as sent back by the client
type LocationPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

// SubmitRequest is the report form
type SubmitRequest struct {
	IssueType   string           `json:"issue_type"`
	Description string           `json:"description"`
	PhotoRef    string           `json:"photo_ref"`
	Location    *LocationPayload `json:"location"`
}

// LocationRequest carries the device's permission answer and fix
type LocationRequest struct {
	PermissionGranted bool     `json:"permission_granted"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
}

// ToggleRequest toggles one status chip on top of the current filter
type ToggleRequest struct {
	Category string `json:"category"`
	Status   string `json:"status"`
	Toggle   string `json:"toggle" binding:"required"`
}

// Submit handles POST /reports
func (h *ReportHandlers) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := domain.ReportInput{
		Description: req.Description,
		PhotoRef:    strings.TrimSpace(req.PhotoRef),
		ReporterID:  c.GetString("user_id"),
	}
	// unknown or "All" types fall through to validation as missing
	if t, ok := domain.ParseIssueType(req.IssueType); ok && t.Valid() {
		in.IssueType = t
	}
	// a location without both coordinates counts as missing
	if req.Location != nil && req.Location.Latitude != nil && req.Location.Longitude != nil {
		in.Location = &domain.ResolvedLocation{
			Coordinates: domain.Coordinates{Latitude: *req.Location.Latitude, Longitude: *req.Location.Longitude},
			Address:     strings.TrimSpace(req.Location.Address),
		}
	}

	report, err := h.catalog.Submit(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"report":  report,
		"message": fmt.Sprintf("Your %s report has been submitted successfully!", strings.ToLower(report.Title)),
		"address": report.Location.Address,
	})
}

// ResolveLocation handles POST /reports/location
func (h *ReportHandlers) ResolveLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device := geo.ClientFix{Granted: req.PermissionGranted}
	if req.Latitude != nil && req.Longitude != nil {
		device.Fix = &domain.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	loc, err := h.catalog.ResolveCurrentLocation(c.Request.Context(), device)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, loc)
}

// UploadPhoto handles POST /reports/photo. The multipart form carries a
// "permission" field ("granted" or "denied") and an optional "photo" file;
// no file means the user cancelled the capture.
func (h *ReportHandlers) UploadPhoto(c *gin.Context) {
	if h.photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo uploads are not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes)
	granted := !strings.EqualFold(c.PostForm("permission"), "denied")

	var image io.Reader
	file, err := c.FormFile("photo")
	switch {
	case err == nil:
		f, openErr := file.Open()
		if openErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": openErr.Error()})
			return
		}
		defer f.Close()
		image = f
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref, err := services.CapturePhoto(c.Request.Context(), photos.NewUploadCamera(h.photos, granted, image))
	if err != nil {
		respondError(c, err)
		return
	}
	if ref == "" {
		respondData(c, http.StatusOK, gin.H{"photo_ref": nil, "cancelled": true})
		return
	}
	respondData(c, http.StatusCreated, gin.H{"photo_ref": ref})
}

// List handles GET /reports
func (h *ReportHandlers) List(c *gin.Context) {
	filter, ok := h.filterFromQuery(c)
	if !ok {
		return
	}
	reports := h.catalog.ListFiltered(filter)
	respondData(c, http.StatusOK, gin.H{"filter": filter, "reports": reports, "count": len(reports)})
}

// Markers handles GET /reports/markers
func (h *ReportHandlers) Markers(c *gin.Context) {
	filter, ok := h.filterFromQuery(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, gin.H{"filter": filter, "markers": h.catalog.MapMarkers(filter)})
}

// Counts handles GET /reports/counts
func (h *ReportHandlers) Counts(c *gin.Context) {
	counts := h.catalog.CountsByStatus()
	respondData(c, http.StatusOK, gin.H{"counts": counts, "total": counts.Total()})
}

// ToggleFilter handles POST /reports/filter/toggle
func (h *ReportHandlers) ToggleFilter(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter, ok := parseFilter(c, req.Category, req.Status)
	if !ok {
		return
	}
	toggle, valid := domain.ParseStatus(req.Toggle)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status", "field": "toggle"})
		return
	}
	respondData(c, http.StatusOK, filter.ToggleStatus(toggle))
}

func (h *ReportHandlers) filterFromQuery(c *gin.Context) (domain.FilterState, bool) {
	return parseFilter(c, c.Query("category"), c.Query("status"))
}

// parseFilter writes a 400 and returns false on unknown values
func parseFilter(c *gin.Context, category, status string) (domain.FilterState, bool) {
	filter := domain.DefaultFilter()
	if category != "" {
		t, ok := domain.ParseIssueType(category)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category", "field": "category"})
			return filter, false
		}
		filter.Category = t
	}
	if status != "" {
		s, ok := domain.ParseStatus(status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status", "field": "status"})
			return filter, false
		}
		filter.Status = s
	}
	return filter, true
}
