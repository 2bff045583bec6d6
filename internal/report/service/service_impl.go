package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	bookingdomain "github.com/nakmuayhub/platform/internal/booking/domain"
	"github.com/nakmuayhub/platform/internal/providers/email"
	"github.com/nakmuayhub/platform/internal/providers/pdf"
	"github.com/nakmuayhub/platform/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        domain.Repository
	BookingRepo bookingdomain.Repository
	PDF         pdf.Provider
	Email       email.Provider
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.Repository
	bookingRepo bookingdomain.Repository
	pdf         pdf.Provider
	email       email.Provider
}

func New(p Params) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("report"),
		repo:        p.Repo,
		bookingRepo: p.BookingRepo,
		pdf:         p.PDF,
		email:       p.Email,
	}
}

// ProcessDue fires every report whose next_run_at has passed: generate,
// email, record an execution row. next_run_at is advanced past now
// after every firing, success or failure, so a failing report cannot
// re-fire in a tight loop. Returns the number generated successfully.
func (s *Service) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.FindDue(ctx, s.db, now)
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, report := range due {
		started := now
		genErr := s.runReport(ctx, report, now)

		execution := &domain.Execution{
			ID:         uuid.New(),
			ReportID:   report.ID,
			Status:     domain.ExecutionCompleted,
			StartedAt:  started,
			FinishedAt: now,
		}
		if genErr != nil {
			msg := genErr.Error()
			execution.Status = domain.ExecutionFailed
			execution.Error = &msg
			s.log.Warn("scheduled report failed",
				zap.String("report_id", report.ID.String()),
				zap.Error(genErr),
			)
		} else {
			generated++
		}
		if err := s.repo.RecordExecution(ctx, s.db, execution); err != nil {
			s.log.Warn("record report execution",
				zap.String("report_id", report.ID.String()),
				zap.Error(err),
			)
		}

		next := domain.NextRunAt(report.Frequency, report.Schedule, now)
		if err := s.repo.Advance(ctx, s.db, report.ID, next, now); err != nil {
			s.log.Warn("advance report schedule",
				zap.String("report_id", report.ID.String()),
				zap.Error(err),
			)
		}
	}
	return generated, nil
}

func (s *Service) runReport(ctx context.Context, report domain.ScheduledReport, now time.Time) error {
	data, err := s.buildReportData(ctx, report, now)
	if err != nil {
		return err
	}

	var attachment []byte
	var filename string
	switch report.Format {
	case domain.FormatCSV:
		attachment, err = renderCSV(data)
		filename = fmt.Sprintf("%s-%s.csv", report.ReportType, now.Format("2006-01-02"))
	case domain.FormatPDF:
		attachment, err = s.pdf.GenerateReport(ctx, data)
		filename = fmt.Sprintf("%s-%s.pdf", report.ReportType, now.Format("2006-01-02"))
	default:
		return fmt.Errorf("unsupported report format %q", report.Format)
	}
	if err != nil {
		return err
	}

	recipients := splitRecipients(report.Recipients)
	if len(recipients) == 0 {
		return nil
	}
	subject := fmt.Sprintf("%s - %s", report.Name, now.Format("2 Jan 2006"))
	body := fmt.Sprintf("<p>Your scheduled report <strong>%s</strong> is attached.</p>", report.Name)
	return s.email.SendWithAttachment(ctx, recipients, subject, body, filename, attachment)
}

func (s *Service) buildReportData(ctx context.Context, report domain.ScheduledReport, now time.Time) (pdf.ReportData, error) {
	from := periodStart(report.Frequency, now)
	bookings, err := s.bookingRepo.ListConfirmedStartingBetween(ctx, s.db, from, now)
	if err != nil {
		return pdf.ReportData{}, err
	}

	data := pdf.ReportData{
		Title:       report.Name,
		PeriodLabel: fmt.Sprintf("%s - %s", from.Format("2 Jan 2006"), now.Format("2 Jan 2006")),
	}

	switch report.ReportType {
	case domain.ReportTypeRevenue:
		counts := map[string]int{}
		byCurrency := map[string]int64{}
		for _, b := range bookings {
			byCurrency[b.Currency] += b.Amount
			counts[b.Currency]++
		}
		data.Columns = []string{"Currency", "Revenue", "Bookings"}
		for currency, amount := range byCurrency {
			data.Rows = append(data.Rows, pdf.ReportRow{Cells: []string{
				currency,
				strconv.FormatInt(amount, 10),
				strconv.Itoa(counts[currency]),
			}})
		}
	case domain.ReportTypeBookings:
		data.Columns = []string{"Booking", "Gym", "Starts", "Amount", "Currency"}
		for _, b := range bookings {
			data.Rows = append(data.Rows, pdf.ReportRow{Cells: []string{
				b.ID.String(),
				b.GymID.String(),
				b.StartsAt.Format(time.RFC3339),
				strconv.FormatInt(b.Amount, 10),
				b.Currency,
			}})
		}
	default:
		return pdf.ReportData{}, fmt.Errorf("unsupported report type %q", report.ReportType)
	}
	return data, nil
}

func renderCSV(data pdf.ReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(data.Columns); err != nil {
		return nil, err
	}
	for _, row := range data.Rows {
		if err := w.Write(row.Cells); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func periodStart(freq domain.Frequency, now time.Time) time.Time {
	switch freq {
	case domain.FrequencyWeekly:
		return now.AddDate(0, 0, -7)
	case domain.FrequencyMonthly:
		return now.AddDate(0, -1, 0)
	case domain.FrequencyQuarterly:
		return now.AddDate(0, -3, 0)
	case domain.FrequencyYearly:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -1)
	}
}

func splitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
