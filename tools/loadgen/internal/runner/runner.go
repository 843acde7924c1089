// Package runner drives the ledger API with a mixed workload. Ids returned
// by create responses are recycled through a parameter pool so follow-up
// requests reference entities the run itself created.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/vastra-erp/tools/loadgen/internal/pool"
)

// Operation names used in reports.
const (
	OpCreateParty         = "create_party"
	OpCreateInvoice       = "create_invoice"
	OpRecordReceipt       = "record_receipt"
	OpListInvoices        = "list_invoices"
	OpOutstandingInvoices = "outstanding_invoices"
)

// Config tells the runner where to aim and how hard.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string

	// CompanyID and FinancialYear populate the scope headers every
	// request carries.
	CompanyID     string
	FinancialYear string

	// Workers is the number of concurrent request loops.
	Workers int

	// Duration bounds the run. Zero runs until the context is cancelled.
	Duration time.Duration

	// SeedParties is how many parties are created up front so invoice
	// creation never starts against an empty pool.
	SeedParties int

	// RequestTimeout applies per request.
	RequestTimeout time.Duration

	// ValueTTL is how long pooled response ids stay sampleable.
	ValueTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.SeedParties <= 0 {
		c.SeedParties = 10
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.ValueTTL <= 0 {
		c.ValueTTL = 5 * time.Minute
	}
	return c
}

// OpReport aggregates one operation's outcomes.
type OpReport struct {
	Count       int64
	Failures    int64
	MeanLatency time.Duration
}

// Report is the result of a run.
type Report struct {
	Requests int64
	Failures int64
	Ops      map[string]OpReport
	Elapsed  time.Duration
	Pool     pool.Stats
}

type opStats struct {
	count      int64
	failures   int64
	latencySum time.Duration
}

// Runner executes the workload.
type Runner struct {
	cfg    Config
	client *http.Client
	pool   *pool.Pool

	mu  sync.Mutex
	ops map[string]*opStats
}

// New creates a Runner backed by the given parameter pool.
func New(cfg Config, p *pool.Pool) *Runner {
	cfg = cfg.withDefaults()
	return &Runner{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		pool:   p,
		ops:    make(map[string]*opStats),
	}
}

// invoiceRef carries everything a receipt needs to allocate against an
// invoice the run created earlier.
type invoiceRef struct {
	ID      string
	PartyID string
	Total   float64
}

var partyNames = []string{
	"Mahavir Silk Mills", "Kiran Fabrics", "Shree Textiles",
	"Radhe Synthetics", "Laxmi Cotton Works", "Ambica Dyeing",
}

var qualities = []string{
	"Georgette 60gm", "Chiffon", "Viscose Jari", "Cotton Cambric",
}

// Run seeds the pool with parties, then hammers the API with the worker mix
// until the duration or context expires.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	seedRng := rand.New(rand.NewSource(start.UnixNano()))
	for i := 0; i < r.cfg.SeedParties; i++ {
		if err := r.createParty(ctx, seedRng); err != nil {
			return Report{}, fmt.Errorf("seeding parties: %w", err)
		}
	}

	runCtx := ctx
	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r.worker(runCtx, rand.New(rand.NewSource(seed)))
		}(start.UnixNano() + int64(i)*7919)
	}
	wg.Wait()

	return r.report(time.Since(start)), nil
}

func (r *Runner) worker(ctx context.Context, rng *rand.Rand) {
	for ctx.Err() == nil {
		switch n := rng.Intn(100); {
		case n < 40:
			r.createInvoice(ctx, rng)
		case n < 65:
			r.recordReceipt(ctx, rng)
		case n < 80:
			r.listInvoices(ctx)
		case n < 90:
			r.outstandingInvoices(ctx)
		default:
			r.createParty(ctx, rng)
		}
	}
}

func (r *Runner) createParty(ctx context.Context, rng *rand.Rand) error {
	body := map[string]any{
		"name":  fmt.Sprintf("%s %04d", partyNames[rng.Intn(len(partyNames))], rng.Intn(10000)),
		"kind":  "both",
		"city":  "Surat",
		"phone": fmt.Sprintf("98%08d", rng.Intn(100000000)),
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := r.do(ctx, OpCreateParty, http.MethodPost, "/api/v1/parties", body, &created); err != nil {
		return err
	}

	v := pool.NewParameterValue(created.ID, pool.SemanticTypePartyID, r.cfg.ValueTTL).
		WithSource("POST /parties", "$.data.id")
	return r.pool.Put(v)
}

func (r *Runner) createInvoice(ctx context.Context, rng *rand.Rand) error {
	party := r.pool.Sample(pool.SemanticTypePartyID)
	if party == nil {
		return r.createParty(ctx, rng)
	}
	partyID := party.Value.(string)

	meters := float64(100 * (1 + rng.Intn(20)))
	rate := float64(1+rng.Intn(40)) / 4
	total := meters * rate

	body := map[string]any{
		"customer_id":  partyID,
		"invoice_date": time.Now().UTC(),
		"items": []map[string]any{{
			"quality": qualities[rng.Intn(len(qualities))],
			"boxes":   1 + rng.Intn(20),
			"meters":  meters,
			"rate":    rate,
			"amount":  total,
		}},
		"total_amount": total,
	}
	var created struct {
		ID            string `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
	}
	if err := r.do(ctx, OpCreateInvoice, http.MethodPost, "/api/v1/invoices", body, &created); err != nil {
		return err
	}

	ref := invoiceRef{ID: created.ID, PartyID: partyID, Total: total}
	v := pool.NewParameterValue(ref, pool.SemanticTypeInvoiceID, r.cfg.ValueTTL).
		WithSource("POST /invoices", "$.data.id")
	if err := r.pool.Put(v); err != nil {
		return err
	}
	num := pool.NewParameterValue(created.InvoiceNumber, pool.SemanticTypeDocumentNo, r.cfg.ValueTTL).
		WithSource("POST /invoices", "$.data.invoice_number")
	return r.pool.Put(num)
}

func (r *Runner) recordReceipt(ctx context.Context, rng *rand.Rand) error {
	target := r.pool.Sample(pool.SemanticTypeInvoiceID)
	if target == nil {
		return r.createInvoice(ctx, rng)
	}
	ref := target.Value.(invoiceRef)

	// Pay between a tenth and the whole of the invoice so the run mixes
	// partial and full settlements.
	fraction := float64(1+rng.Intn(10)) / 10
	amount := float64(int(ref.Total*fraction*100)) / 100
	if amount <= 0 {
		amount = 0.01
	}

	body := map[string]any{
		"party_id":     ref.PartyID,
		"payment_date": time.Now().UTC(),
		"amount":       amount,
		"allocations": []map[string]any{{
			"target_id": ref.ID,
			"amount":    amount,
		}},
		"idempotency_key": fmt.Sprintf("loadgen-%d-%d", time.Now().UnixNano(), rng.Int63()),
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := r.do(ctx, OpRecordReceipt, http.MethodPost, "/api/v1/payments/receipts", body, &created); err != nil {
		return err
	}

	v := pool.NewParameterValue(created.ID, pool.SemanticTypePaymentID, r.cfg.ValueTTL).
		WithSource("POST /payments/receipts", "$.data.id")
	return r.pool.Put(v)
}

func (r *Runner) listInvoices(ctx context.Context) error {
	return r.do(ctx, OpListInvoices, http.MethodGet, "/api/v1/invoices?page=1&page_size=20", nil, nil)
}

func (r *Runner) outstandingInvoices(ctx context.Context) error {
	party := r.pool.Sample(pool.SemanticTypePartyID)
	if party == nil {
		return nil
	}
	path := fmt.Sprintf("/api/v1/parties/%s/outstanding-invoices", party.Value.(string))
	return r.do(ctx, OpOutstandingInvoices, http.MethodGet, path, nil, nil)
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r *Runner) do(ctx context.Context, op, method, path string, body, out any) error {
	started := time.Now()
	err := r.send(ctx, method, path, body, out)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		// The run wound down mid-request; not a server failure.
		return err
	}
	r.observe(op, time.Since(started), err)
	return err
}

func (r *Runner) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Company-ID", r.cfg.CompanyID)
	req.Header.Set("X-Financial-Year", r.cfg.FinancialYear)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		code := "UNKNOWN"
		if env.Error != nil {
			code = env.Error.Code
		}
		return fmt.Errorf("%s %s: status %d code %s", method, path, resp.StatusCode, code)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decoding data: %w", method, path, err)
		}
	}
	return nil
}

func (r *Runner) observe(op string, latency time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.ops[op]
	if s == nil {
		s = &opStats{}
		r.ops[op] = s
	}
	s.count++
	s.latencySum += latency
	if err != nil {
		s.failures++
	}
}

func (r *Runner) report(elapsed time.Duration) Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := Report{
		Ops:     make(map[string]OpReport, len(r.ops)),
		Elapsed: elapsed,
		Pool:    r.pool.Stats(),
	}
	for op, s := range r.ops {
		mean := time.Duration(0)
		if s.count > 0 {
			mean = s.latencySum / time.Duration(s.count)
		}
		rep.Ops[op] = OpReport{Count: s.count, Failures: s.failures, MeanLatency: mean}
		rep.Requests += s.count
		rep.Failures += s.failures
	}
	return rep
}
