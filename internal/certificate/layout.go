package certificate

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"dlithe/intern-portal/intern-portal-backend/internal/config"
	"dlithe/intern-portal/intern-portal-backend/pkg/dates"
)

// LayoutOptions holds the fixed geometry of the single-page certificate.
// All lengths are millimetres on an A4 portrait page.
type LayoutOptions struct {
	BorderMargin            float64 `json:"border_margin"`             // page edge to decorative border
	BorderLineWidth         float64 `json:"border_line_width"`
	ContentInset            float64 `json:"content_inset"`             // border to content margin
	LogoWidth               float64 `json:"logo_width"`
	OrgBlockAdvance         float64 `json:"org_block_advance"`         // vertical space consumed by the org header
	SealWidth               float64 `json:"seal_width"`
	SignatureWidth          float64 `json:"signature_width"`
	SignatureFallbackHeight float64 `json:"signature_fallback_height"` // used when the image cannot be introspected
	SignatureGap            float64 `json:"signature_gap"`             // "For ..." line to signature image
	DirectorGap             float64 `json:"director_gap"`              // signature image to Director label
	SignatureMinOffset      float64 `json:"signature_min_offset"`      // signature block floor above the bottom margin
	SignatureContentGap     float64 `json:"signature_content_gap"`     // body end to signature block
	FooterOffset            float64 `json:"footer_offset"`             // footer above the bottom margin
	LineHeight              float64 `json:"line_height"`
	FontFamily              string  `json:"font_family"`
	Duration                string  `json:"duration"` // e.g. "15-week"

	// CreationDate pins the PDF metadata timestamp so identical inputs
	// produce identical bytes. Zero means the render time is used.
	CreationDate time.Time `json:"-"`
}

// DefaultLayoutOptions returns the standard certificate geometry.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		BorderMargin:            8,
		BorderLineWidth:         0.5,
		ContentInset:            8,
		LogoWidth:               35,
		OrgBlockAdvance:         18,
		SealWidth:               30,
		SignatureWidth:          40,
		SignatureFallbackHeight: 15,
		SignatureGap:            5,
		DirectorGap:             5,
		SignatureMinOffset:      60,
		SignatureContentGap:     10,
		FooterOffset:            10,
		LineHeight:              6,
		FontFamily:              "Times",
		Duration:                "15-week",
	}
}

// RenderInput carries everything one render needs. Date fields are canonical
// YYYY-MM-DD strings; they are printed in ordinal form.
type RenderInput struct {
	Name          string
	USN           string
	College       string
	Topic         string
	CertificateID string
	StartDate     string
	EndDate       string
	Organization  string // short display name, interpolated into the body
	Letterhead    config.Organization
	Variant       Variant
}

// Engine renders single-page certificates with a fixed layout. A render is
// deterministic given identical inputs and assets; missing or undecodable
// image assets degrade to an omitted region plus a warning, never a failure.
type Engine struct {
	opts LayoutOptions
}

// NewEngine creates a layout engine with the given geometry.
func NewEngine(opts LayoutOptions) *Engine {
	return &Engine{opts: opts}
}

// sanitizeText maps typographic quotes and apostrophes to plain ASCII; the
// core PDF fonts have no glyphs for them.
func sanitizeText(s string) string {
	return strings.NewReplacer(
		"’", "'",
		"‘", "'",
		"“", `"`,
		"”", `"`,
	).Replace(s)
}

// imageAsset is a pre-validated image file: gofpdf treats a bad image as a
// document-level error, so decodability is checked up front and failures are
// reported as warnings instead.
type imageAsset struct {
	path  string
	ratio float64 // height / width, 0 when unknown
}

func loadImageAsset(path string) (*imageAsset, error) {
	if path == "" {
		return nil, fmt.Errorf("no path configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	asset := &imageAsset{path: path}
	if cfg.Width > 0 {
		asset.ratio = float64(cfg.Height) / float64(cfg.Width)
	}
	return asset, nil
}

// Render produces the certificate page for one record. The returned warnings
// list the asset regions that were omitted.
func (e *Engine) Render(in RenderInput) ([]byte, []string, error) {
	var warnings []string

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	if !e.opts.CreationDate.IsZero() {
		pdf.SetCreationDate(e.opts.CreationDate)
	}
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	// Decorative border.
	bm := e.opts.BorderMargin
	pdf.SetLineWidth(e.opts.BorderLineWidth)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(bm, bm, pageW-2*bm, pageH-2*bm, "D")

	left := bm + e.opts.ContentInset
	right := bm + e.opts.ContentInset
	top := bm + e.opts.ContentInset
	bottom := bm + e.opts.ContentInset
	pdf.SetMargins(left, top, right)

	currentY := top

	// Logo, top-left.
	if logo, err := loadImageAsset(in.Letterhead.LogoPath); err != nil {
		warnings = append(warnings, fmt.Sprintf("logo omitted: %v", err))
	} else {
		pdf.ImageOptions(logo.path, left, currentY, e.opts.LogoWidth, 0, false,
			gofpdf.ImageOptions{}, 0, "")
	}

	// Organization legal name and registration id, right-aligned beside the logo.
	headerX := left + e.opts.LogoWidth + 5
	headerW := pageW - headerX - right
	pdf.SetXY(headerX, currentY)
	pdf.SetFont(e.opts.FontFamily, "B", 14)
	pdf.CellFormat(headerW, 8, in.Letterhead.LegalName, "", 1, "R", false, 0, "")
	pdf.SetX(headerX)
	pdf.SetFont(e.opts.FontFamily, "", 12)
	pdf.CellFormat(headerW, 6, in.Letterhead.CIN, "", 1, "R", false, 0, "")

	currentY += e.opts.OrgBlockAdvance
	pdf.SetY(currentY)
	pdf.Ln(8)

	// Certificate id left, issue date flush to the right margin.
	endDateText := dates.OrdinalFromCanonical(in.EndDate)
	pdf.SetFont(e.opts.FontFamily, "", 12)
	pdf.SetX(left)
	pdf.CellFormat(0, 5, "Certificate ID: "+in.CertificateID, "", 0, "L", false, 0, "")
	issuedOn := "Issued on: " + endDateText
	issuedWidth := pdf.GetStringWidth(issuedOn)
	pdf.SetXY(pageW-right-issuedWidth, pdf.GetY())
	pdf.CellFormat(issuedWidth, 5, issuedOn, "", 0, "L", false, 0, "")
	pdf.Ln(15)

	if in.Variant == VariantProvisional {
		pdf.SetFont(e.opts.FontFamily, "B", 16)
		pdf.CellFormat(0, 10, "PROVISIONAL CERTIFICATE", "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	pdf.SetFont(e.opts.FontFamily, "B", 12)
	pdf.CellFormat(0, 5, "TO WHOMSOEVER IT MAY CONCERN", "", 1, "C", false, 0, "")
	pdf.Ln(15)

	// Body paragraph, justified; wording branches on variant.
	pdf.SetFont(e.opts.FontFamily, "", 12)
	effectiveWidth := pageW - left - right
	pdf.SetX(left)
	pdf.MultiCell(effectiveWidth, e.opts.LineHeight, sanitizeText(e.bodyText(in, endDateText)), "", "J", false)
	pdf.Ln(6)
	pdf.SetX(left)
	pdf.MultiCell(effectiveWidth, e.opts.LineHeight,
		sanitizeText("We wish all the best for future endeavours!"), "", "J", false)

	// Signature block: below the body with a gap, but never lower than the
	// fixed floor above the bottom margin.
	contentEnd := pdf.GetY()
	minSignY := pageH - bottom - e.opts.SignatureMinOffset
	signBlockY := contentEnd + e.opts.SignatureContentGap
	if signBlockY < minSignY {
		signBlockY = minSignY
	}

	forText := "For " + in.Letterhead.LegalName
	pdf.SetFont(e.opts.FontFamily, "", 12)
	pdf.SetXY(pageW-right-pdf.GetStringWidth(forText), signBlockY)
	pdf.CellFormat(pdf.GetStringWidth(forText), 7, forText, "", 0, "L", false, 0, "")

	if seal, err := loadImageAsset(in.Letterhead.SealPath); err != nil {
		warnings = append(warnings, fmt.Sprintf("seal omitted: %v", err))
	} else {
		pdf.ImageOptions(seal.path, left, signBlockY, e.opts.SealWidth, 0, false,
			gofpdf.ImageOptions{}, 0, "")
	}

	signY := signBlockY + e.opts.SignatureGap
	signW := e.opts.SignatureWidth
	signHeight := 0.0
	if sig, err := loadImageAsset(in.Letterhead.SignaturePath); err != nil {
		warnings = append(warnings, fmt.Sprintf("signature omitted: %v", err))
	} else {
		pdf.ImageOptions(sig.path, pageW-right-signW, signY, signW, 0, false,
			gofpdf.ImageOptions{}, 0, "")
		if sig.ratio > 0 {
			signHeight = sig.ratio * signW
		} else {
			signHeight = e.opts.SignatureFallbackHeight
		}
	}

	// Director label centered under the signature image.
	pdf.SetFont(e.opts.FontFamily, "", 12)
	directorWidth := pdf.GetStringWidth("Director")
	directorX := pageW - right - signW + (signW-directorWidth)/2
	pdf.Text(directorX, signY+signHeight+e.opts.DirectorGap, "Director")

	// Footer pinned above the bottom margin.
	pdf.SetFont(e.opts.FontFamily, "", 9)
	pdf.SetY(pageH - bottom - e.opts.FooterOffset)
	pdf.SetX(0)
	pdf.CellFormat(0, 5, in.Letterhead.FooterLine1, "", 1, "C", false, 0, "")
	pdf.SetX(0)
	pdf.CellFormat(0, 5, in.Letterhead.FooterLine2, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, warnings, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), warnings, nil
}

func (e *Engine) bodyText(in RenderInput, endDateText string) string {
	startDateText := dates.OrdinalFromCanonical(in.StartDate)

	if in.Variant == VariantProvisional {
		return fmt.Sprintf(
			"This is to certify Mr/Ms, %s bearing USN No: %s from %s "+
				"is currently undergoing a %s internship starting from %s "+
				"to %s, under the mentorship of %s's development team. "+
				"%s is working on %s.",
			in.Name, in.USN, in.College, e.opts.Duration, startDateText,
			endDateText, in.Organization, in.Name, in.Topic)
	}
	return fmt.Sprintf(
		"This is to certify Mr/Ms, %s bearing USN No: %s from %s "+
			"has successfully completed a %s internship starting from %s "+
			"to %s, under the mentorship of %s's development team. "+
			"%s has worked on %s.",
		in.Name, in.USN, in.College, e.opts.Duration, startDateText,
		endDateText, in.Organization, in.Name, in.Topic)
}
