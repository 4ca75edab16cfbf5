package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData is what gets printed on a completion certificate.
type CertificateData struct {
	CertificateID string
	RecipientName string
	QuizTitle     string
	Percentage    int
	IssuedAt      time.Time
}

// CertificateRenderer draws landscape A4 completion certificates.
type CertificateRenderer struct {
	issuer string
}

// NewCertificateRenderer constructs a renderer signing certificates as issuer.
func NewCertificateRenderer(issuer string) *CertificateRenderer {
	if issuer == "" {
		issuer = "EmpowerHerEd"
	}
	return &CertificateRenderer{issuer: issuer}
}

// Render returns the certificate as PDF bytes.
func (r *CertificateRenderer) Render(data CertificateData) ([]byte, error) {
	if strings.TrimSpace(data.RecipientName) == "" {
		return nil, fmt.Errorf("certificate requires a recipient name")
	}
	if strings.TrimSpace(data.QuizTitle) == "" {
		return nil, fmt.Errorf("certificate requires a title")
	}
	if data.IssuedAt.IsZero() {
		data.IssuedAt = time.Now().UTC()
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle("Certificate of Completion", false)
	pdf.SetAuthor(r.issuer, false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	width, height := pdf.GetPageSize()
	pdf.SetDrawColor(122, 40, 138)
	pdf.SetLineWidth(1.5)
	pdf.Rect(10, 10, width-20, height-20, "D")

	pdf.SetY(40)
	pdf.SetFont("Helvetica", "B", 30)
	pdf.SetTextColor(122, 40, 138)
	pdf.CellFormat(0, 14, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(0, 12, tr(data.RecipientName), "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 8, "has successfully completed", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(data.QuizTitle), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("with a score of %d%%", data.Percentage), "", 1, "C", false, 0, "")

	pdf.SetY(height - 45)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Issued by %s on %s", tr(r.issuer), data.IssuedAt.Format("2 January 2006")), "", 1, "C", false, 0, "")
	if data.CertificateID != "" {
		pdf.SetFont("Courier", "", 8)
		pdf.CellFormat(0, 5, "Certificate ID: "+data.CertificateID, "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
