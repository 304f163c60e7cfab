package domain

import "strings"

// IssueType is the category of a civic issue
type IssueType string

const (
	IssuePothole     IssueType = "Pothole"
	IssueStreetlight IssueType = "Streetlight"
	IssueGarbage     IssueType = "Garbage"
	IssueOther       IssueType = "Other"

	// AllCategories disables the category filter
	AllCategories IssueType = "All"
)

// IssueTypes lists the reportable categories in form order
var IssueTypes = []IssueType{IssuePothole, IssueStreetlight, IssueGarbage, IssueOther}

// Valid reports whether t is one of the reportable categories
func (t IssueType) Valid() bool {
	switch t {
	case IssuePothole, IssueStreetlight, IssueGarbage, IssueOther:
		return true
	}
	return false
}

// Label is the text shown in the issue picker
func (t IssueType) Label() string {
	switch t {
	case IssueStreetlight:
		return "Streetlights"
	case IssueOther:
		return "Others"
	case AllCategories:
		return "All Issues"
	}
	return string(t)
}

// ParseIssueType accepts enum values and the label variants used by clients.
// "All" and "All Issues" yield AllCategories.
func ParseIssueType(s string) (IssueType, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch key {
	case "pothole", "potholes":
		return IssuePothole, true
	case "streetlight", "streetlights":
		return IssueStreetlight, true
	case "garbage":
		return IssueGarbage, true
	case "other", "others":
		return IssueOther, true
	case "all", "allissues":
		return AllCategories, true
	}
	return "", false
}

// Status is the lifecycle state of a report, driven outside this service
type Status string

const (
	StatusPending     Status = "Pending"
	StatusInProgress  Status = "In-Progress"
	StatusUnderReview Status = "Under Review"
	StatusCompleted   Status = "Completed"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusUnderReview, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus accepts the status values and the chip labels ("In Progress").
func ParseStatus(s string) (Status, bool) {
	key := strings.ToLower(s)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "pending":
		return StatusPending, true
	case "inprogress":
		return StatusInProgress, true
	case "underreview":
		return StatusUnderReview, true
	case "completed":
		return StatusCompleted, true
	}
	return "", false
}

// FilterState narrows a report list. Both dimensions compose with AND;
// the zero value is "All categories, no status filter".
type FilterState struct {
	Category IssueType `json:"category"`
	Status   Status    `json:"status,omitempty"`
}

// DefaultFilter returns the unfiltered state
func DefaultFilter() FilterState {
	return FilterState{Category: AllCategories}
}

// ToggleStatus selects s, or clears the status filter when s is already active
func (f FilterState) ToggleStatus(s Status) FilterState {
	if f.Status == s {
		f.Status = ""
		return f
	}
	f.Status = s
	return f
}

// Matches applies the category and status predicates to r
func (f FilterState) Matches(r *Report) bool {
	if f.Category != "" && f.Category != AllCategories && r.IssueType != f.Category {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}
