package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"contas/internal/core"
	"contas/internal/export"
	"contas/internal/log"
	"contas/internal/metrics"
	"contas/internal/services"
	"contas/internal/store"
)

// statusLabels maps canonical statuses to the labels the UI shows.
var statusLabels = map[core.Status]string{
	core.StatusPending: "Pendente",
	core.StatusPaid:    "Paga",
	core.StatusOverdue: "Vencida",
}

type billRow struct {
	ID          string
	Description string
	Amount      string
	Due         string
	Recurring   bool
	Installment string
	Status      string
	StatusLabel string
	Paid        bool
}

// editForm carries a bill back into the form for editing. Amount uses
// the canonical decimal form, which the parser accepts on resubmit.
type editForm struct {
	ID               string
	Description      string
	Amount           string
	Due              string
	Recurring        bool
	InstallmentCount int
	FixedDueDay      int
	PeriodStart      string
	PeriodEnd        string
}

func editFormFrom(b core.Bill) editForm {
	f := editForm{
		ID:          b.ID,
		Description: b.Description,
		Amount:      b.Amount.Decimal(),
	}
	switch sch := b.Schedule.(type) {
	case core.OneOff:
		f.Due = sch.DueDate.String()
	case core.Recurring:
		f.Recurring = true
		f.InstallmentCount = sch.InstallmentCount
		f.FixedDueDay = sch.FixedDueDay
		f.PeriodStart = sch.PeriodStart.String()
		f.PeriodEnd = sch.PeriodEnd.String()
	}
	return f
}

type indexData struct {
	Bills []billRow
	Edit  *editForm
	Error string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// A failed refresh is not fatal: the page renders the previous
	// collection (or the snapshot) with the error banner.
	_ = s.store.Refresh(r.Context())

	s.renderIndex(w, r, http.StatusOK, "")
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	if errMsg == "" {
		if e := s.store.Err(); e != nil {
			errMsg = e.Detail
		}
	}

	today := time.Now()
	todayDate := core.NewDate(today.Year(), today.Month(), today.Day())

	bills := s.store.Bills()
	rows := make([]billRow, 0, len(bills))
	for _, b := range bills {
		row := billRow{
			ID:          b.ID,
			Description: b.Description,
			Amount:      b.Amount.BRL(),
			Recurring:   b.IsRecurring(),
			Status:      string(b.Status),
			StatusLabel: statusLabels[b.Status],
			Paid:        b.Status == core.StatusPaid,
		}
		if due, ok := services.EffectiveDueDate(b, todayDate); ok {
			row.Due = due.Format("02/01/2006")
		}
		if b.Installment.Total > 0 {
			row.Installment = fmt.Sprintf("%d/%d", b.Installment.Number, b.Installment.Total)
		}
		rows = append(rows, row)
	}

	data := indexData{Bills: rows, Error: errMsg}
	if id := r.URL.Query().Get("edit"); id != "" {
		if b, ok := s.store.Get(id); ok {
			f := editFormFrom(b)
			data.Edit = &f
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "index template execution failed", log.FieldError, err)
	}
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "Formulário inválido")
		return
	}

	b := billFromForm(r)
	if _, err := s.store.Create(r.Context(), b); err != nil {
		s.renderStoreError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "Formulário inválido")
		return
	}

	b := billFromForm(r)
	b.ID = strings.TrimSpace(r.Form.Get("id"))
	if existing, ok := s.store.Get(b.ID); ok {
		b.Status = existing.Status
		b.Installment = existing.Installment
	}
	if _, err := s.store.Update(r.Context(), b); err != nil {
		s.renderStoreError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "Formulário inválido")
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if _, err := s.store.TogglePaid(r.Context(), id); err != nil {
		s.renderStoreError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, "Formulário inválido")
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.renderStoreError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	msg := "Erro inesperado"
	if oe, ok := err.(*store.OpError); ok {
		msg = oe.Detail
		if oe.Kind == store.KindValidation {
			status = http.StatusUnprocessableEntity
		}
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "bill operation failed",
		log.FieldError, err, log.FieldStatusCode, status)
	s.renderIndex(w, r, status, msg)
}

// billFromForm builds a bill from the submitted fields. Parse failures
// leave zero values; the store's validation turns them into the
// user-facing messages.
func billFromForm(r *http.Request) core.Bill {
	b := core.Bill{
		Description: strings.TrimSpace(r.Form.Get("descricao")),
	}
	if cents, err := core.ParseDecimalToCents(r.Form.Get("valor")); err == nil {
		b.Amount = core.Money{Cents: cents}
	}

	if r.Form.Get("recorrente") == "" {
		var due core.Date
		if d, err := core.ParseDate(r.Form.Get("vencimento")); err == nil {
			due = d
		}
		b.Schedule = core.OneOff{DueDate: due}
		return b
	}

	rec := core.Recurring{}
	if n, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("quantidade_parcelas"))); err == nil {
		rec.InstallmentCount = n
	}
	if d, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("dia_vencimento"))); err == nil {
		rec.FixedDueDay = d
	}
	if ym, err := core.ParseYearMonth(r.Form.Get("inicio_periodo")); err == nil {
		rec.PeriodStart = ym
	}
	if ym, err := core.ParseYearMonth(r.Form.Get("fim_periodo")); err == nil {
		rec.PeriodEnd = ym
	}
	b.Schedule = rec
	return b
}

type reportRow struct {
	Label string
	Total string
}

type reportsData struct {
	GeneratedAt   string
	TotalBills    int
	TotalAmount   string
	PaidAmount    string
	PendingAmount string
	OverdueAmount string
	ByDescription []reportRow
	ByMonth       []reportRow
	Error         string
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	_ = s.store.Refresh(r.Context())
	rep := s.reports.Current()

	data := reportsData{
		GeneratedAt:   rep.GeneratedAt.Format("02/01/2006 15:04"),
		TotalBills:    rep.TotalBills,
		TotalAmount:   rep.TotalAmount.BRL(),
		PaidAmount:    rep.PaidAmount.BRL(),
		PendingAmount: rep.PendingAmount.BRL(),
		OverdueAmount: rep.OverdueAmount.BRL(),
	}
	for _, dt := range rep.ByDescription {
		data.ByDescription = append(data.ByDescription, reportRow{Label: dt.Description, Total: dt.Total.BRL()})
	}
	for _, mt := range rep.ByMonth {
		data.ByMonth = append(data.ByMonth, reportRow{Label: mt.Month.String(), Total: mt.Total.BRL()})
	}
	if e := s.store.Err(); e != nil {
		data.Error = e.Detail
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "reports.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "reports template execution failed", log.FieldError, err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	_ = s.store.Refresh(r.Context())
	rep := s.reports.Current()

	data, err := export.BuildReportXLSX(rep)
	metrics.ObserveExport("xlsx", err)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "xlsx export failed", log.FieldError, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", exportFilename("xlsx", rep.GeneratedAt))
	_, _ = w.Write(data)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	_ = s.store.Refresh(r.Context())
	rep := s.reports.Current()

	data, err := export.BuildReportPDF(rep)
	metrics.ObserveExport("pdf", err)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "pdf export failed", log.FieldError, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", exportFilename("pdf", rep.GeneratedAt))
	_, _ = w.Write(data)
}

func exportFilename(ext string, at time.Time) string {
	return fmt.Sprintf(`attachment; filename="contas-%s.%s"`, at.Format("20060102"), ext)
}
