package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"wayfarer/internal/models/response_models"
	"wayfarer/pkg/utils"
)

const StageExport = "export"

type ExportServiceInterface interface {
	Export(itinerary *response_models.Itinerary) ([]byte, error)
}

// ExportService renders a normalized itinerary into a paginated PDF. It is
// a pure function of the itinerary: no network, and the same itinerary
// always renders to the same bytes.
type ExportService struct {
	logger *zap.Logger
}

func NewExportService(logger *zap.Logger) ExportServiceInterface {
	return &ExportService{logger: logger}
}

func (e *ExportService) Export(itinerary *response_models.Itinerary) ([]byte, error) {
	exportFail := func(detail string) error {
		return utils.NewPipelineError(StageExport, utils.ErrExportFailure, detail)
	}
	if itinerary == nil || len(itinerary.Days) == 0 {
		return nil, exportFail("nothing to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	// Pinned metadata date and sorted font/resource catalogs keep
	// re-exports byte-identical.
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Travel Itinerary: "+sanitize(strings.Join(itinerary.Destinations, ", ")), false)
	pdf.SetAuthor("Wayfarer", false)
	pdf.AliasNbPages("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, "Wayfarer - Travel Itinerary", "", 1, "C", false, 0, "")
		pdf.Ln(2)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	e.renderCover(pdf, itinerary)
	for _, day := range itinerary.Days {
		e.renderDay(pdf, day)
	}
	e.renderPrebookings(pdf, itinerary)
	e.renderPacking(pdf, itinerary)
	e.renderCostSummary(pdf, itinerary)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		e.logger.Error("pdf rendering failed", zap.Error(err))
		return nil, exportFail("pdf rendering failed")
	}
	return buf.Bytes(), nil
}

func (e *ExportService) renderCover(pdf *fpdf.Fpdf, it *response_models.Itinerary) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Your Personalized Travel Itinerary", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Trip Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	lines := []string{
		fmt.Sprintf("Destinations: %s", strings.Join(it.Destinations, "; ")),
		fmt.Sprintf("Dates: %s to %s (%d days)", it.StartDate, it.EndDate, len(it.Days)),
		fmt.Sprintf("Travelers: %d | Age group: %s", it.GroupSize, orDash(it.AgeBracket)),
		it.BudgetLine,
		fmt.Sprintf("Generated: %s", it.GeneratedAt),
	}
	for _, l := range lines {
		pdf.CellFormat(0, 7, sanitize(l), "", 1, "L", false, 0, "")
	}
}

func (e *ExportService) renderDay(pdf *fpdf.Fpdf, day response_models.DayPlan) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(200, 220, 255)
	pdf.CellFormat(0, 8, sanitize(fmt.Sprintf("Day %d - %s", day.Day, day.Date)), "", 1, "L", true, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	if day.Summary != "" {
		pdf.MultiCell(0, 6, sanitize(day.Summary), "", "L", false)
		pdf.Ln(2)
	}
	if day.FeasibilityFlag != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 6, sanitize("Note: "+day.FeasibilityFlag), "", "L", false)
		pdf.SetFont("Arial", "", 11)
		pdf.Ln(2)
	}

	for _, act := range day.Activities {
		line := fmt.Sprintf("%s-%s  %s (%s)", act.StartTime, act.EndTime, act.Name, costLine(act.Cost))
		pdf.MultiCell(0, 6, sanitize(line), "", "L", false)
	}

	if len(day.TransportLegs) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 6, "Transport", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for _, leg := range day.TransportLegs {
			line := fmt.Sprintf("%s: %s -> %s, %d min (%s)", leg.Mode, leg.From, leg.To, leg.DurationMinutes, costLine(leg.Cost))
			pdf.MultiCell(0, 6, sanitize(line), "", "L", false)
		}
	}

	if day.Stay != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 6, "Stay", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, sanitize(day.Stay), "", "L", false)
	}

	if len(day.Food) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 6, "Food", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for _, f := range day.Food {
			pdf.MultiCell(0, 6, sanitize("- "+f), "", "L", false)
		}
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, sanitize("Day total: "+costLine(day.DayTotal)), "", 1, "L", false, 0, "")
}

func (e *ExportService) renderPrebookings(pdf *fpdf.Fpdf, it *response_models.Itinerary) {
	if len(it.PrebookAlerts) == 0 {
		return
	}
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(200, 220, 255)
	pdf.CellFormat(0, 8, "Tickets & Pre-bookings", "", 1, "L", true, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Arial", "", 11)
	for _, alert := range it.PrebookAlerts {
		pdf.MultiCell(0, 6, sanitize(fmt.Sprintf("- %s (%s)", alert.Attraction, costLine(alert.Price))), "", "L", false)
	}
}

func (e *ExportService) renderPacking(pdf *fpdf.Fpdf, it *response_models.Itinerary) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(200, 220, 255)
	pdf.CellFormat(0, 8, "Packing Checklist", "", 1, "L", true, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Arial", "", 11)
	for _, item := range it.PackingChecklist {
		pdf.MultiCell(0, 6, sanitize("[ ] "+item), "", "L", false)
	}
}

func (e *ExportService) renderCostSummary(pdf *fpdf.Fpdf, it *response_models.Itinerary) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(200, 220, 255)
	pdf.CellFormat(0, 8, "Estimated Costs", "", 1, "L", true, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Arial", "", 11)
	for _, day := range it.Days {
		pdf.CellFormat(0, 6, sanitize(fmt.Sprintf("Day %d: %s", day.Day, costLine(day.DayTotal))), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, sanitize("Trip total: "+costLine(it.Total)), "", 1, "L", false, 0, "")
}

func costLine(c response_models.Cost) string {
	return fmt.Sprintf("%.2f %s / %.2f %s", c.Source, c.SourceCurrency, c.Display, c.DisplayCurrency)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var unicodeReplacer = strings.NewReplacer(
	"—", "-", "–", "-",
	"“", `"`, "”", `"`, "’", "'",
	"•", "-", "→", "->", "←", "<-", "…", "...",
)

// sanitize maps common unicode punctuation to ASCII and drops anything the
// built-in latin-1 fonts cannot render.
func sanitize(s string) string {
	s = unicodeReplacer.Replace(s)
	var b strings.Builder
	for _, r := range s {
		if r < 256 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
