package certificate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dlithe/intern-portal/intern-portal-backend/internal/schema"
)

// WorkflowStatus is the review lifecycle of a persisted record. Transitions
// are monotonic: pending_review -> review_completed -> issued.
type WorkflowStatus string

const (
	StatusPendingReview   WorkflowStatus = "pending_review"
	StatusReviewCompleted WorkflowStatus = "review_completed"
	StatusIssued          WorkflowStatus = "issued"
)

// ParseStatus normalizes a status string to its canonical enum value. Legacy
// rows carry mixed casing like "Review_Completed".
func ParseStatus(s string) (WorkflowStatus, error) {
	switch WorkflowStatus(strings.ToLower(s)) {
	case StatusPendingReview:
		return StatusPendingReview, nil
	case StatusReviewCompleted:
		return StatusReviewCompleted, nil
	case StatusIssued:
		return StatusIssued, nil
	}
	return "", fmt.Errorf("unknown workflow status %q", s)
}

// Variant selects the certificate wording and banner.
type Variant string

const (
	VariantProvisional Variant = "provisional"
	VariantFinal       Variant = "final"
)

// ParseVariant accepts the variant names used by the upload form.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "provisional":
		return VariantProvisional, nil
	case "final", "":
		return VariantFinal, nil
	}
	return "", fmt.Errorf("unknown certificate variant %q", s)
}

// Record is one persisted intern entry with its workflow status. The
// embedded canonical fields are owned by the schema mapper; CertificateID is
// populated once a document has been generated; Status is owned by the
// approval workflow and records are immutable once issued.
type Record struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Organization string    `json:"organization" gorm:"index:idx_records_org_status"`

	Name                  string `json:"name"`
	USN                   string `json:"usn"`
	College               string `json:"college"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	RegisteredDate        string `json:"registered_date"`
	StartDate             string `json:"start_date"`
	EndDate               string `json:"end_date"`
	Program               string `json:"program"`
	Mode                  string `json:"mode"`
	PaymentStatus         string `json:"payment_status"`
	CertificateIssuedDate string `json:"certificate_issued_date"`
	InternID              string `json:"intern_id"`
	Topic                 string `json:"topic"`
	CertificateID         string `json:"certificate_id"`
	Domain                string `json:"domain"`

	Status    WorkflowStatus `json:"status" gorm:"index:idx_records_org_status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewRecord builds a Record from a canonical row for the given organization.
// The store key is minted here; callers never invent it.
func NewRecord(organization string, c schema.CanonicalRecord) *Record {
	return &Record{
		ID:                    uuid.New(),
		Organization:          organization,
		Name:                  c.Name,
		USN:                   c.USN,
		College:               c.College,
		Email:                 c.Email,
		Phone:                 c.Phone,
		RegisteredDate:        c.RegisteredDate,
		StartDate:             c.StartDate,
		EndDate:               c.EndDate,
		Program:               c.Program,
		Mode:                  c.Mode,
		PaymentStatus:         c.PaymentStatus,
		CertificateIssuedDate: c.CertificateIssuedDate,
		InternID:              c.InternID,
		Topic:                 c.Topic,
		CertificateID:         c.CertificateID,
		Domain:                c.Domain,
		Status:                StatusPendingReview,
	}
}

// Document is one rendered certificate: an immutable byte payload plus its
// download filename. Regenerating is a pure function of record, variant and
// assets, so documents are not persisted.
type Document struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
}

// DocumentFilename builds the download name: spaces in the intern's name
// become underscores, followed by the certificate identifier.
func DocumentFilename(name, certID string) string {
	return strings.ReplaceAll(name, " ", "_") + "_" + certID + ".pdf"
}

// RowError captures a failure for a single input row. Rows fail
// independently; a batch is never aborted by one of them.
type RowError struct {
	Row  int    `json:"row"`
	Name string `json:"name"`
	Err  error  `json:"-"`
}

func (e RowError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("row %d (%s): %v", e.Row, e.Name, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Sentinel errors for batch processing.
var (
	ErrEmptyTable           = errors.New("input table has no rows")
	ErrMissingReferenceDate = errors.New("missing reference date")
	ErrUnknownDomain        = errors.New("unknown domain")
	ErrUnknownOrganization  = errors.New("unknown organization")
	ErrRecordNotFound       = errors.New("record not found")
)

// StateError reports an operation attempted against a record in the wrong
// workflow state.
type StateError struct {
	Current  WorkflowStatus
	Required WorkflowStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("record is %s, operation requires %s", e.Current, e.Required)
}
