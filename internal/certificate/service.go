package certificate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dlithe/intern-portal/intern-portal-backend/internal/config"
	"dlithe/intern-portal/intern-portal-backend/internal/schema"
	"dlithe/intern-portal/intern-portal-backend/pkg/dates"
)

// Service is the batch orchestrator: it normalizes an uploaded table, derives
// identifiers, renders documents and drives records through the approval
// workflow.
type Service interface {
	RunBatch(ctx context.Context, req BatchRequest) (*BatchResult, error)
	RunApprovedBatch(ctx context.Context, organization string) (*BatchResult, error)
	MarkReviewed(ctx context.Context, id uuid.UUID) (*Record, error)
	RedownloadIssued(ctx context.Context, id uuid.UUID) (*Document, error)
}

// BatchRequest is one upload-and-generate run.
type BatchRequest struct {
	Table        schema.Table
	Organization string
	Domain       string
	Variant      Variant
}

// BatchResult collects the documents and per-row diagnostics of one run.
// Callers must present both: a batch never aborts on a row failure.
type BatchResult struct {
	Documents   []Document `json:"documents"`
	RowErrors   []RowError `json:"row_errors"`
	Diagnostics []string   `json:"diagnostics"`
	BundleName  string     `json:"bundle_name"`
}

type batchService struct {
	repo     Repository
	workflow *Workflow
	mapper   *schema.Mapper
	idgen    *IDGenerator
	engine   *Engine
	orgs     map[string]config.Organization
	now      func() time.Time
}

// NewService wires the orchestrator from its collaborators.
func NewService(repo Repository, mapper *schema.Mapper, idgen *IDGenerator, engine *Engine, orgs map[string]config.Organization) Service {
	return &batchService{
		repo:     repo,
		workflow: NewWorkflow(repo),
		mapper:   mapper,
		idgen:    idgen,
		engine:   engine,
		orgs:     orgs,
		now:      time.Now,
	}
}

// RunBatch maps the table, then processes rows independently in input order.
// Each successful row yields one document and one persisted record stamped
// pending_review with its certificate id populated; each failed row yields
// one RowError. Only an empty table aborts the whole batch.
func (s *batchService) RunBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	letterhead, ok := s.orgs[req.Organization]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrganization, req.Organization)
	}

	rows := s.mapper.MapTable(req.Table)
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	domainCode, err := s.idgen.ShortCode(req.Domain)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{BundleName: s.bundleName(rows)}

	for i, row := range rows {
		row.Domain = req.Domain

		doc, record, warnings, err := s.processRow(row, domainCode, req.Organization, letterhead, req.Variant)
		result.Diagnostics = append(result.Diagnostics, warnings...)
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{Row: i, Name: row.Name, Err: err})
			continue
		}

		if err := s.repo.Insert(ctx, record); err != nil {
			result.RowErrors = append(result.RowErrors, RowError{Row: i, Name: row.Name, Err: err})
			continue
		}
		result.Documents = append(result.Documents, *doc)
	}

	return result, nil
}

func (s *batchService) processRow(row schema.CanonicalRecord, domainCode, organization string, letterhead config.Organization, variant Variant) (*Document, *Record, []string, error) {
	refDate, err := dates.ParseCanonical(row.EndDate)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: end date %q", ErrMissingReferenceDate, row.EndDate)
	}

	certID, err := s.idgen.Generate(domainCode, row.USN, refDate)
	if err != nil {
		return nil, nil, nil, err
	}
	row.CertificateID = certID

	content, warnings, err := s.engine.Render(RenderInput{
		Name:          row.Name,
		USN:           row.USN,
		College:       row.College,
		Topic:         row.Topic,
		CertificateID: certID,
		StartDate:     row.StartDate,
		EndDate:       row.EndDate,
		Organization:  organization,
		Letterhead:    letterhead,
		Variant:       variant,
	})
	if err != nil {
		return nil, nil, warnings, err
	}

	doc := &Document{
		Filename: DocumentFilename(row.Name, certID),
		Content:  content,
	}
	return doc, NewRecord(organization, row), warnings, nil
}

// RunApprovedBatch renders a final document for every review_completed
// record of the organization and marks each rendered record issued. Zero
// eligible records is reported as a diagnostic, not an error.
func (s *batchService) RunApprovedBatch(ctx context.Context, organization string) (*BatchResult, error) {
	letterhead, ok := s.orgs[organization]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrganization, organization)
	}

	eligible, err := s.workflow.Eligible(ctx, organization)
	if err != nil {
		return nil, fmt.Errorf("query eligible records: %w", err)
	}

	result := &BatchResult{
		BundleName: "approved_certificates_" + s.now().Format("20060102_150405") + ".zip",
	}
	if len(eligible) == 0 {
		result.Diagnostics = append(result.Diagnostics, "no eligible records")
		return result, nil
	}

	for i := range eligible {
		record := &eligible[i]

		doc, warnings, err := s.renderRecord(ctx, record, letterhead, VariantFinal)
		result.Diagnostics = append(result.Diagnostics, warnings...)
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{Row: i, Name: record.Name, Err: err})
			continue
		}

		if err := s.workflow.Transition(ctx, record, StatusIssued); err != nil {
			result.RowErrors = append(result.RowErrors, RowError{Row: i, Name: record.Name, Err: err})
			continue
		}
		result.Documents = append(result.Documents, *doc)
	}

	return result, nil
}

func (s *batchService) renderRecord(ctx context.Context, record *Record, letterhead config.Organization, variant Variant) (*Document, []string, error) {
	certID := record.CertificateID
	if certID == "" {
		// Legacy rows ingested before id derivation; derive and persist now
		// so the stored id always matches the document.
		refDate, err := dates.ParseCanonical(record.EndDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: end date %q", ErrMissingReferenceDate, record.EndDate)
		}
		code, err := s.idgen.ShortCode(record.Domain)
		if err != nil {
			return nil, nil, err
		}
		certID, err = s.idgen.Generate(code, record.USN, refDate)
		if err != nil {
			return nil, nil, err
		}
		if err := s.repo.SetCertificateID(ctx, record.ID, certID); err != nil {
			return nil, nil, fmt.Errorf("persist certificate id: %w", err)
		}
		record.CertificateID = certID
	}

	content, warnings, err := s.engine.Render(RenderInput{
		Name:          record.Name,
		USN:           record.USN,
		College:       record.College,
		Topic:         record.Topic,
		CertificateID: certID,
		StartDate:     record.StartDate,
		EndDate:       record.EndDate,
		Organization:  record.Organization,
		Letterhead:    letterhead,
		Variant:       variant,
	})
	if err != nil {
		return nil, warnings, err
	}

	return &Document{
		Filename: DocumentFilename(record.Name, certID),
		Content:  content,
	}, warnings, nil
}

// MarkReviewed records the external reviewer's approval, moving a record
// from pending_review to review_completed.
func (s *batchService) MarkReviewed(ctx context.Context, id uuid.UUID) (*Record, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.workflow.Transition(ctx, record, StatusReviewCompleted); err != nil {
		return nil, err
	}
	return record, nil
}

// RedownloadIssued re-renders an already-issued record's final document.
// Render is idempotent so no workflow transition happens; a record in any
// other state is rejected with a state mismatch.
func (s *batchService) RedownloadIssued(ctx context.Context, id uuid.UUID) (*Document, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != StatusIssued {
		return nil, &StateError{Current: record.Status, Required: StatusIssued}
	}

	letterhead, ok := s.orgs[record.Organization]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrganization, record.Organization)
	}

	doc, _, err := s.renderRecord(ctx, record, letterhead, VariantFinal)
	return doc, err
}

func (s *batchService) bundleName(rows []schema.CanonicalRecord) string {
	program := "Certificates"
	for _, row := range rows {
		if row.Program != "" {
			program = row.Program
			break
		}
	}
	name := fmt.Sprintf("%s_%s.zip", program, s.now().Format("20060102_150405"))
	return strings.ReplaceAll(name, " ", "_")
}
