package esocial

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WriteSummaryPDF renders the batch summary, listing the violations of every
// invalid event.
func WriteSummaryPDF(w io.Writer, period Period, employer EmployerIdentity, summary Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("eSocial batch %s", period.String()), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "eSocial batch summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", period.String()))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employer: %s", employerLabel(employer)))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Events: %d", summary.Total))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Valid: %d", summary.Valid))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Invalid: %d", summary.Invalid))
	pdf.Ln(12)

	if len(summary.Problems) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Invalid events")
		pdf.Ln(9)
		for _, problem := range summary.Problems {
			pdf.SetFont("Helvetica", "B", 10)
			title := fmt.Sprintf("%s  %s", problem.EventID, problem.Kind)
			if problem.WorkerName != "" {
				title += "  " + problem.WorkerName
			}
			pdf.MultiCell(0, 6, tr(title), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
			for _, v := range problem.Violations {
				pdf.MultiCell(0, 5, tr("- "+v), "", "L", false)
			}
			pdf.Ln(3)
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func employerLabel(e EmployerIdentity) string {
	if e.Registry != "" {
		return e.Registry
	}
	return strings.TrimSpace(e.Root)
}
