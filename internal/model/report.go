package model

import "errors"

// ErrNotFound is returned when a report id does not exist.
var ErrNotFound = errors.New("report not found")

type Report struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Date        string `gorm:"type:varchar(20)" json:"date"`
	Category    string `gorm:"type:varchar(50)" json:"category"`
	Issue       string `gorm:"type:text" json:"issue"`
	RootCause   string `gorm:"type:text" json:"root_cause"`
	ActionTaken string `gorm:"type:text" json:"action_taken"`
	Status      string `gorm:"type:text" json:"status"`
}

func (Report) TableName() string { return "daily_reports" }

// ReportInput carries the form fields for creation. Date may be empty,
// in which case the service fills in today's date.
type ReportInput struct {
	Date        string
	Category    string
	Issue       string
	RootCause   string
	ActionTaken string
	Status      string
}

// ReportFilter narrows List results. Zero-value fields are ignored.
// Equality filters are ANDed; StartDate/EndDate bound the date column
// inclusively as plain strings.
type ReportFilter struct {
	Date      string
	Category  string
	Status    string
	StartDate string
	EndDate   string
}

// ReportDigest is a Report without its id, used by the grouped summary view.
type ReportDigest struct {
	Category    string `json:"category"`
	Issue       string `json:"issue"`
	RootCause   string `json:"root_cause"`
	ActionTaken string `json:"action_taken"`
	Status      string `json:"status"`
}

// Suggested option sets for the creation form. The store accepts any
// text; these only populate the dropdowns.
var (
	Categories = []string{"Compliance", "Database", "Deployment", "Git", "Network", "Other"}
	Statuses   = []string{"Pending", "In Progress", "Completed", "Blocked"}
)
