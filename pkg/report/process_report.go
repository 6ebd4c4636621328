package report

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const unicodeFontFamily = "Report"

// AttachmentInfo describes one evidence attachment in the snapshot.
type AttachmentInfo struct {
	Label      string
	Uploaded   bool
	UploadedAt *time.Time
}

// ReimbursementInfo carries the expense claim lines for the report.
type ReimbursementInfo struct {
	RegistrationFee     float64
	TransportationFee   float64
	AccommodationFee    float64
	OtherFee            float64
	OtherFeeDescription string
	TotalAmount         float64
	BankName            string
	BankAccount         string
	AccountName         string
	Status              string
	Comment             string
	SubmitTime          time.Time
	ReviewedAt          *time.Time
}

// Snapshot is the immutable input of a process-report render. Identical
// snapshots with identical fonts produce a stable document.
type Snapshot struct {
	ApplicationID     int64
	CompetitionName   string
	CompetitionType   string
	StudentName       string
	StudentNumber     string
	TeacherName       string
	TeacherNumber     string
	ContactInfo       string
	Description       string
	ApplicationStatus string
	ProcessStatus     string
	SubmissionTime    time.Time
	ReviewedAt        *time.Time
	Attachments       []AttachmentInfo
	Reimbursement     *ReimbursementInfo
}

// ProcessRenderer renders an application's full history into a PDF.
type ProcessRenderer struct {
	fontPath string
}

// NewProcessRenderer constructs a renderer. fontPath names a Unicode TTF
// registered for CJK content; when the file is absent the renderer falls
// back to the built-in typeface and keeps rendering.
func NewProcessRenderer(fontPath string) *ProcessRenderer {
	return &ProcessRenderer{fontPath: fontPath}
}

// Render produces the process-report document for the snapshot.
func (r *ProcessRenderer) Render(snap Snapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetCreationDate(snap.SubmissionTime)

	font := "Arial"
	if r.fontPath != "" {
		if _, err := os.Stat(r.fontPath); err == nil {
			pdf.AddUTF8Font(unicodeFontFamily, "", r.fontPath)
			font = unicodeFontFamily
		}
	}

	pdf.AddPage()

	pdf.SetFont(font, "", 16)
	pdf.CellFormat(0, 10, "Competition Process Report", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	r.renderBasicInfo(pdf, font, snap)
	r.renderTimeline(pdf, font, snap)
	r.renderAttachments(pdf, font, snap)
	if snap.Reimbursement != nil {
		r.renderReimbursement(pdf, font, snap.Reimbursement)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render process report: %w", err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("render process report: empty output")
	}
	return buf.Bytes(), nil
}

func (r *ProcessRenderer) renderBasicInfo(pdf *gofpdf.Fpdf, font string, snap Snapshot) {
	r.sectionHeader(pdf, font, "Basic Information")

	description := snap.Description
	if description == "" {
		description = "-"
	}
	rows := [][2]string{
		{"Competition", snap.CompetitionName},
		{"Competition Type", snap.CompetitionType},
		{"Student", fmt.Sprintf("%s (%s)", snap.StudentName, snap.StudentNumber)},
		{"Supervising Teacher", fmt.Sprintf("%s (%s)", snap.TeacherName, snap.TeacherNumber)},
		{"Contact", snap.ContactInfo},
		{"Submitted", snap.SubmissionTime.Format("2006-01-02")},
		{"Description", description},
	}

	pdf.SetFont(font, "", 10)
	for _, row := range rows {
		pdf.CellFormat(50, 7, row[0], "1", 0, "", false, 0, "")
		pdf.CellFormat(130, 7, row[1], "1", 1, "", false, 0, "")
	}
	pdf.Ln(6)
}

func (r *ProcessRenderer) renderTimeline(pdf *gofpdf.Fpdf, font string, snap Snapshot) {
	r.sectionHeader(pdf, font, "Process Timeline")

	reviewDate := "not reviewed"
	if snap.ReviewedAt != nil {
		reviewDate = snap.ReviewedAt.Format("2006-01-02")
	}
	rows := [][3]string{
		{"Application submitted", snap.SubmissionTime.Format("2006-01-02"), "completed"},
		{"Application review", reviewDate, snap.ApplicationStatus},
	}
	if reimb := snap.Reimbursement; reimb != nil {
		reimbReview := "not reviewed"
		if reimb.ReviewedAt != nil {
			reimbReview = reimb.ReviewedAt.Format("2006-01-02")
		}
		rows = append(rows,
			[3]string{"Reimbursement submitted", reimb.SubmitTime.Format("2006-01-02"), "completed"},
			[3]string{"Reimbursement review", reimbReview, reimb.Status},
		)
	} else {
		rows = append(rows, [3]string{"Reimbursement", "not submitted", "-"})
	}
	rows = append(rows, [3]string{"Process", "", snap.ProcessStatus})

	pdf.SetFont(font, "", 10)
	pdf.CellFormat(70, 7, "Stage", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 7, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 7, "Status", "1", 1, "C", false, 0, "")
	for _, row := range rows {
		pdf.CellFormat(70, 7, row[0], "1", 0, "", false, 0, "")
		pdf.CellFormat(55, 7, row[1], "1", 0, "", false, 0, "")
		pdf.CellFormat(55, 7, row[2], "1", 1, "", false, 0, "")
	}
	pdf.Ln(6)
}

func (r *ProcessRenderer) renderAttachments(pdf *gofpdf.Fpdf, font string, snap Snapshot) {
	r.sectionHeader(pdf, font, "Files")

	pdf.SetFont(font, "", 10)
	pdf.CellFormat(70, 7, "File", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 7, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 7, "Uploaded", "1", 1, "C", false, 0, "")
	for _, att := range snap.Attachments {
		status := "missing"
		uploaded := "-"
		if att.Uploaded {
			status = "uploaded"
			uploaded = "unknown"
			if att.UploadedAt != nil {
				uploaded = att.UploadedAt.Format("2006-01-02")
			}
		}
		pdf.CellFormat(70, 7, att.Label, "1", 0, "", false, 0, "")
		pdf.CellFormat(55, 7, status, "1", 0, "", false, 0, "")
		pdf.CellFormat(55, 7, uploaded, "1", 1, "", false, 0, "")
	}
	pdf.Ln(6)
}

func (r *ProcessRenderer) renderReimbursement(pdf *gofpdf.Fpdf, font string, reimb *ReimbursementInfo) {
	r.sectionHeader(pdf, font, "Reimbursement")

	pdf.SetFont(font, "", 10)
	pdf.CellFormat(70, 7, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 7, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 7, "Note", "1", 1, "C", false, 0, "")

	lines := []struct {
		label  string
		amount float64
		note   string
	}{
		{"Registration fee", reimb.RegistrationFee, ""},
		{"Transportation fee", reimb.TransportationFee, ""},
		{"Accommodation fee", reimb.AccommodationFee, ""},
		{"Other fee", reimb.OtherFee, reimb.OtherFeeDescription},
		{"Total", reimb.TotalAmount, reimb.Status},
	}
	for _, line := range lines {
		pdf.CellFormat(70, 7, line.label, "1", 0, "", false, 0, "")
		pdf.CellFormat(55, 7, fmt.Sprintf("%.2f", line.amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(55, 7, line.note, "1", 1, "", false, 0, "")
	}

	pdf.CellFormat(70, 7, "Bank", "1", 0, "", false, 0, "")
	pdf.CellFormat(110, 7, reimb.BankName, "1", 1, "", false, 0, "")
	pdf.CellFormat(70, 7, "Account", "1", 0, "", false, 0, "")
	pdf.CellFormat(110, 7, reimb.BankAccount, "1", 1, "", false, 0, "")
	pdf.CellFormat(70, 7, "Account holder", "1", 0, "", false, 0, "")
	pdf.CellFormat(110, 7, reimb.AccountName, "1", 1, "", false, 0, "")
	if reimb.Comment != "" {
		pdf.CellFormat(70, 7, "Review comment", "1", 0, "", false, 0, "")
		pdf.CellFormat(110, 7, reimb.Comment, "1", 1, "", false, 0, "")
	}
}

func (r *ProcessRenderer) sectionHeader(pdf *gofpdf.Fpdf, font, title string) {
	pdf.SetFont(font, "", 12)
	pdf.SetFillColor(120, 120, 120)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(180, 8, title, "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
