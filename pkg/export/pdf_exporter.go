package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/kwsc-digital/efiling-api/internal/dto"
)

// MovementRegisterPDF renders a file's timeline as the official movement
// register document attached to paper files.
type MovementRegisterPDF struct{}

// NewMovementRegisterPDF constructs the renderer.
func NewMovementRegisterPDF() *MovementRegisterPDF {
	return &MovementRegisterPDF{}
}

// Render produces the register for the given file number and timeline events.
func (e *MovementRegisterPDF) Render(fileNumber, subject string, events []dto.TimelineEvent) ([]byte, error) {
	if fileNumber == "" {
		return nil, fmt.Errorf("pdf requires a file number")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "FILE MOVEMENT REGISTER", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("File No: %s", fileNumber), "", 1, "L", false, 0, "")
	if subject != "" {
		pdf.CellFormat(0, 7, fmt.Sprintf("Subject: %s", subject), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	headers := []string{"Date", "Event", "Particulars"}
	widths := []float64{40, 30, 120}

	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, event := range events {
		pdf.CellFormat(widths[0], 7, event.Timestamp.Format(time.RFC822), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, event.Type, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, eventParticulars(event), "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func eventParticulars(event dto.TimelineEvent) string {
	parts := []string{event.Title}
	if by := event.Meta["by"]; by != "" {
		parts = append(parts, "by "+by)
	}
	if to := event.Meta["to"]; to != "" {
		parts = append(parts, "to "+to)
	}
	if remarks := event.Meta["remarks"]; remarks != "" {
		parts = append(parts, remarks)
	}
	return strings.Join(parts, " - ")
}
