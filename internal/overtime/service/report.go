package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"
	"github.com/medflow/payroll-backend/internal/overtime/events"
	"github.com/medflow/payroll-backend/internal/overtime/repository"
	"github.com/medflow/payroll-backend/pkg/logger"
)

// ReportService renders period summaries
type ReportService struct {
	repos  *Repositories
	logger *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(repos *Repositories, log *logger.Logger) *ReportService {
	return &ReportService{repos: repos, logger: log}
}

type employeeTotals struct {
	name    string
	entries []*repository.SegmentView
	hours   float64
	amount  float64
}

// PeriodPDF renders every active entry of a period grouped by employee
func (s *ReportService) PeriodPDF(ctx context.Context, periodID string) ([]byte, error) {
	period, err := s.repos.Periods.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	views, _, err := s.repos.Segments.List(ctx, repository.SegmentFilter{PeriodID: periodID})
	if err != nil {
		return nil, err
	}

	body, err := renderPeriod(period, groupByEmployee(views))
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("period_id", periodID).
		Int("entries", len(views)).
		Int("bytes", len(body)).
		Msg("period report rendered")

	return body, nil
}

func groupByEmployee(views []*repository.SegmentView) []*employeeTotals {
	byID := make(map[string]*employeeTotals)
	for _, v := range views {
		t, ok := byID[v.EmployeeID]
		if !ok {
			name := v.EmployeeID
			if v.EmployeeName != nil && *v.EmployeeName != "" {
				name = *v.EmployeeName
			}
			t = &employeeTotals{name: name}
			byID[v.EmployeeID] = t
		}
		t.entries = append(t.entries, v)
		t.hours += v.Hours
		t.amount += v.Amount
	}

	out := make([]*employeeTotals, 0, len(byID))
	for _, t := range byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func renderPeriod(period *repository.PayPeriod, employees []*employeeTotals) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Overtime summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s (%s)",
		period.StartDate.Format(events.DateLayout), period.EndDate.Format(events.DateLayout), period.Label))
	pdf.Ln(10)

	if len(employees) == 0 {
		pdf.Cell(0, 7, "No overtime recorded for this period.")
	}

	widths := []float64{24, 18, 18, 74, 16, 30}
	headers := []string{"Date", "Start", "End", "Description", "Hours", "Amount"}

	var grandHours, grandAmount float64
	for _, emp := range employees {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, emp.name)
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "B", 9)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, e := range emp.entries {
			state := ""
			if e.StateName != nil {
				state = " [" + *e.StateName + "]"
			}
			pdf.CellFormat(widths[0], 6, e.WorkDate.Format(events.DateLayout), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, shortClock(e.StartTime), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[2], 6, shortClock(e.EndTime), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[3], 6, e.Description+state, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", e.Hours), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.5f", e.Amount), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}

		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 6, "Total", "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", emp.hours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.5f", emp.amount), "1", 0, "R", false, 0, "")
		pdf.Ln(10)

		grandHours += emp.hours
		grandAmount += emp.amount
	}

	if len(employees) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, fmt.Sprintf("Period total: %.2f h, %.5f", grandHours, grandAmount))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render period report: %w", err)
	}
	return buf.Bytes(), nil
}

// shortClock trims seconds from HH:MM:SS
func shortClock(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}
