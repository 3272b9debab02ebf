package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/log"
	"contas/internal/remote/memory"
	"contas/internal/services"
	"contas/internal/store"
)

func newTestServer(t *testing.T) (*Server, *memory.Store, *store.Store) {
	t.Helper()
	mem := memory.New()
	st := store.New(mem)
	reports := services.NewReportService(st, cache.NewLRUCache[services.Report](4, time.Minute))
	srv, err := NewServer(":0", st, reports, log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, mem, st
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexListsBills(t *testing.T) {
	srv, mem, _ := newTestServer(t)
	mem.Seed([]core.Bill{
		{ID: "a", Description: "Luz", Amount: core.Money{Cents: 12050},
			Status: core.StatusPending, Schedule: core.OneOff{DueDate: core.NewDate(2024, 3, 10)}},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Luz", "R$ 120,50", "10/03/2024", "Pendente"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestCreateBillRedirectsAndPersists(t *testing.T) {
	srv, mem, _ := newTestServer(t)

	rec := postForm(t, srv, "/bills", url.Values{
		"descricao":  {"Internet"},
		"valor":      {"99,90"},
		"vencimento": {"2024-04-01"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect to %q", loc)
	}

	bills, err := mem.ListBills(context.Background())
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 1 || bills[0].Description != "Internet" || bills[0].Amount.Cents != 9990 {
		t.Errorf("persisted %+v", bills)
	}
}

func TestCreateRecurringBill(t *testing.T) {
	srv, mem, _ := newTestServer(t)

	rec := postForm(t, srv, "/bills", url.Values{
		"descricao":           {"Aluguel"},
		"valor":               {"1.800,00"},
		"recorrente":          {"1"},
		"quantidade_parcelas": {"12"},
		"dia_vencimento":      {"5"},
		"inicio_periodo":      {"2024-01"},
		"fim_periodo":         {"2024-12"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	bills, _ := mem.ListBills(context.Background())
	if len(bills) != 1 {
		t.Fatalf("persisted %+v", bills)
	}
	sched, ok := bills[0].RecurringSchedule()
	if !ok || sched.InstallmentCount != 12 || sched.FixedDueDay != 5 {
		t.Errorf("schedule = %+v", bills[0].Schedule)
	}
	if bills[0].Amount.Cents != 180000 {
		t.Errorf("amount = %d", bills[0].Amount.Cents)
	}
}

func TestCreateInvalidBillShowsValidationMessage(t *testing.T) {
	srv, mem, _ := newTestServer(t)

	rec := postForm(t, srv, "/bills", url.Values{
		"descricao":  {""},
		"valor":      {"10,00"},
		"vencimento": {"2024-04-01"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Descrição obrigatória") {
		t.Errorf("body missing validation message: %s", rec.Body.String())
	}
	if bills, _ := mem.ListBills(context.Background()); len(bills) != 0 {
		t.Errorf("invalid bill persisted: %+v", bills)
	}
}

func TestToggleAndDeleteFlow(t *testing.T) {
	srv, mem, _ := newTestServer(t)
	seeded, err := mem.CreateBill(context.Background(), core.Bill{
		Description: "Luz", Amount: core.Money{Cents: 5000},
		Schedule: core.OneOff{DueDate: core.NewDate(2024, 3, 10)},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// The store only learns about seeded bills after a refresh.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Server.Handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := postForm(t, srv, "/bills/toggle", url.Values{"id": {seeded.ID}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	bills, _ := mem.ListBills(context.Background())
	if bills[0].Status != core.StatusPaid {
		t.Errorf("status after toggle = %q", bills[0].Status)
	}

	rec = postForm(t, srv, "/bills/delete", url.Values{"id": {seeded.ID}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if bills, _ := mem.ListBills(context.Background()); len(bills) != 0 {
		t.Errorf("bill not deleted: %+v", bills)
	}
}

func TestEditFormPrefillsBill(t *testing.T) {
	srv, mem, _ := newTestServer(t)
	mem.Seed([]core.Bill{
		{ID: "a", Description: "Luz", Amount: core.Money{Cents: 12050},
			Status: core.StatusPending, Schedule: core.OneOff{DueDate: core.NewDate(2024, 3, 10)}},
	})

	req := httptest.NewRequest(http.MethodGet, "/?edit=a", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`action="/bills/update"`,
		`name="id" value="a"`,
		`value="Luz"`,
		`value="120.50"`,
		`value="2024-03-10"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("edit form missing %s", want)
		}
	}
}

func TestEditFormUnknownIDFallsBackToCreate(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/?edit=ghost", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Nova conta") {
		t.Error("page should fall back to the create form")
	}
}

func TestUpdateBillPreservesStatusAndInstallment(t *testing.T) {
	srv, mem, _ := newTestServer(t)
	mem.Seed([]core.Bill{
		{ID: "a", Description: "Luz", Amount: core.Money{Cents: 5000},
			Status:      core.StatusPaid,
			Installment: core.Installment{Number: 2, Total: 12},
			Schedule:    core.OneOff{DueDate: core.NewDate(2024, 3, 10)}},
	})

	// The store only learns about seeded bills after a refresh.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Server.Handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := postForm(t, srv, "/bills/update", url.Values{
		"id":         {"a"},
		"descricao":  {"Luz do escritório"},
		"valor":      {"60,00"},
		"vencimento": {"2024-04-10"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	bills, err := mem.ListBills(context.Background())
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("persisted %+v", bills)
	}
	got := bills[0]
	if got.Description != "Luz do escritório" || got.Amount.Cents != 6000 {
		t.Errorf("updated record = %+v", got)
	}
	// The form carries no status or installment position; both come
	// from the existing record.
	if got.Status != core.StatusPaid {
		t.Errorf("status = %q, want paid preserved", got.Status)
	}
	if got.Installment.Number != 2 || got.Installment.Total != 12 {
		t.Errorf("installment = %+v", got.Installment)
	}
}

func TestUpdateInvalidBillShowsValidationMessage(t *testing.T) {
	srv, mem, _ := newTestServer(t)
	mem.Seed([]core.Bill{
		{ID: "a", Description: "Luz", Amount: core.Money{Cents: 5000},
			Status: core.StatusPending, Schedule: core.OneOff{DueDate: core.NewDate(2024, 3, 10)}},
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Server.Handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := postForm(t, srv, "/bills/update", url.Values{
		"id":         {"a"},
		"descricao":  {""},
		"valor":      {"60,00"},
		"vencimento": {"2024-04-10"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	bills, _ := mem.ListBills(context.Background())
	if bills[0].Description != "Luz" {
		t.Errorf("record changed on invalid update: %+v", bills[0])
	}
}

func TestToggleUnknownBill(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := postForm(t, srv, "/bills/toggle", url.Values{"id": {"ghost"}})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Conta não encontrada") {
		t.Errorf("body missing message: %s", rec.Body.String())
	}
}

func TestReportsPageAndExports(t *testing.T) {
	srv, mem, _ := newTestServer(t)
	mem.Seed([]core.Bill{
		{ID: "a", Description: "Luz", Amount: core.Money{Cents: 12050},
			Status: core.StatusPaid, Schedule: core.OneOff{DueDate: core.NewDate(2024, 3, 10)}},
	})

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reports status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "R$ 120,50") {
		t.Errorf("reports page missing total")
	}

	req = httptest.NewRequest(http.MethodGet, "/reports/export.xlsx", nil)
	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("xlsx content type = %q", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/reports/export.pdf", nil)
	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("pdf body missing header")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}
