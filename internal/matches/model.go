package matches

import (
	"time"

	"resume-match/internal/analysis"
)

// UnknownFileName is shown for records created before original names were kept.
const UnknownFileName = "Unknown File"

// AnalysisStatus records whether the provider or the fallback produced the analysis.
type AnalysisStatus string

const (
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisFallback  AnalysisStatus = "fallback"
)

// MatchRecord is one persisted analysis of a resume against a job description.
// Records are only created and deleted, never updated.
type MatchRecord struct {
	ID               string
	OwnerID          string
	StoredFileName   string
	OriginalFileName *string
	JobDescription   string
	Analysis         analysis.Analysis
	MatchScore       int
	Feedback         string
	AnalysisStatus   AnalysisStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DisplayName is the user-facing file name.
func (r MatchRecord) DisplayName() string {
	if r.OriginalFileName == nil || *r.OriginalFileName == "" {
		return UnknownFileName
	}
	return *r.OriginalFileName
}

// Requester is the authenticated caller of a core operation.
type Requester struct {
	ID    string
	Name  string
	Email string
}

// Owner is the owner block of the detail view.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Detail is the full view of a single record.
type Detail struct {
	ID               string            `json:"id"`
	FileName         string            `json:"fileName"`
	OriginalFileName string            `json:"originalFileName"`
	UploadDate       time.Time         `json:"uploadDate"`
	Owner            Owner             `json:"owner"`
	JobDescription   string            `json:"jobDescription"`
	Analysis         analysis.Analysis `json:"analysis"`
	MatchScore       int               `json:"matchScore"`
	Feedback         string            `json:"feedback"`
	Status           Status            `json:"status"`
}

// Summary is a list item. JobDescription holds a truncated preview.
type Summary struct {
	ID             string    `json:"id"`
	FileName       string    `json:"fileName"`
	JobDescription string    `json:"jobDescription"`
	MatchScore     int       `json:"matchScore"`
	Status         Status    `json:"status"`
	UploadDate     time.Time `json:"uploadDate"`
	LastModified   time.Time `json:"lastModified"`
}
