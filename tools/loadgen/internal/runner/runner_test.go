package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vastra-erp/tools/loadgen/internal/pool"
)

type fakeServer struct {
	parties  atomic.Int64
	invoices atomic.Int64
	receipts atomic.Int64
	lists    atomic.Int64
	badScope atomic.Int64
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	writeData := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}

	checkScope := func(r *http.Request) bool {
		return r.Header.Get("X-Company-ID") != "" && r.Header.Get("X-Financial-Year") != ""
	}

	mux.HandleFunc("POST /api/v1/parties", func(w http.ResponseWriter, r *http.Request) {
		if !checkScope(r) {
			f.badScope.Add(1)
		}
		n := f.parties.Add(1)
		writeData(w, map[string]any{"id": fmt.Sprintf("party-%d", n)})
	})

	mux.HandleFunc("POST /api/v1/invoices", func(w http.ResponseWriter, r *http.Request) {
		if !checkScope(r) {
			f.badScope.Add(1)
		}
		var body struct {
			CustomerID  string  `json:"customer_id"`
			TotalAmount float64 `json:"total_amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CustomerID == "" || body.TotalAmount <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   map[string]any{"code": "ERR_VALIDATION", "message": "bad invoice"},
			})
			return
		}
		n := f.invoices.Add(1)
		writeData(w, map[string]any{
			"id":             fmt.Sprintf("inv-%d", n),
			"invoice_number": fmt.Sprintf("INV%04d", n),
		})
	})

	mux.HandleFunc("POST /api/v1/payments/receipts", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PartyID     string  `json:"party_id"`
			Amount      float64 `json:"amount"`
			Allocations []struct {
				TargetID string  `json:"target_id"`
				Amount   float64 `json:"amount"`
			} `json:"allocations"`
			IdempotencyKey string `json:"idempotency_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
			body.PartyID == "" || body.Amount <= 0 ||
			len(body.Allocations) == 0 || body.IdempotencyKey == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   map[string]any{"code": "ERR_VALIDATION", "message": "bad receipt"},
			})
			return
		}
		n := f.receipts.Add(1)
		writeData(w, map[string]any{"id": fmt.Sprintf("pay-%d", n)})
	})

	mux.HandleFunc("GET /api/v1/invoices", func(w http.ResponseWriter, r *http.Request) {
		f.lists.Add(1)
		writeData(w, []any{})
	})

	mux.HandleFunc("GET /api/v1/parties/", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []any{})
	})

	return mux
}

func TestRunnerDrivesWorkloadMix(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	p := pool.New(pool.Config{TTL: time.Minute, CapPerType: 100})
	defer p.Close()

	r := New(Config{
		BaseURL:       srv.URL,
		CompanyID:     "11111111-1111-1111-1111-111111111111",
		FinancialYear: "2025-26",
		Workers:       4,
		Duration:      300 * time.Millisecond,
		SeedParties:   3,
	}, p)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Requests == 0 {
		t.Fatal("run issued no requests")
	}
	if report.Failures != 0 {
		t.Errorf("Failures = %d, want 0; ops: %+v", report.Failures, report.Ops)
	}
	if fake.badScope.Load() != 0 {
		t.Errorf("%d requests arrived without scope headers", fake.badScope.Load())
	}

	if got := fake.parties.Load(); got < 3 {
		t.Errorf("parties created = %d, want at least the 3 seeded", got)
	}
	if op := report.Ops[OpCreateParty]; op.Count < 3 {
		t.Errorf("create_party count = %d, want >= 3", op.Count)
	}

	// Created ids must have flowed into the pool.
	if p.Len(pool.SemanticTypePartyID) == 0 {
		t.Error("no party ids pooled")
	}
	if fake.invoices.Load() > 0 && p.Len(pool.SemanticTypeInvoiceID) == 0 {
		t.Error("invoices created but none pooled")
	}
	if report.Pool.Added == 0 {
		t.Error("report pool stats show nothing added")
	}
}

func TestRunnerReceiptReferencesPooledInvoice(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	p := pool.New(pool.Config{TTL: time.Minute, CapPerType: 100})
	defer p.Close()

	r := New(Config{
		BaseURL:       srv.URL,
		CompanyID:     "11111111-1111-1111-1111-111111111111",
		FinancialYear: "2025-26",
		Workers:       2,
		Duration:      400 * time.Millisecond,
		SeedParties:   2,
	}, p)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The fake rejects receipts whose allocation or party id is missing,
	// so zero failures means every receipt referenced a pooled invoice.
	if op := report.Ops[OpRecordReceipt]; op.Failures != 0 {
		t.Errorf("record_receipt failures = %d, want 0", op.Failures)
	}
	if fake.receipts.Load() > 0 && p.Len(pool.SemanticTypePaymentID) == 0 {
		t.Error("receipts recorded but no payment ids pooled")
	}
}

func TestRunnerSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]any{"code": "ERR_INTERNAL", "message": "boom"},
		})
	}))
	defer srv.Close()

	p := pool.New(pool.Config{TTL: time.Minute})
	defer p.Close()

	r := New(Config{
		BaseURL:       srv.URL,
		CompanyID:     "11111111-1111-1111-1111-111111111111",
		FinancialYear: "2025-26",
		SeedParties:   1,
	}, p)

	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Run should fail when seeding cannot create a party")
	}
}
