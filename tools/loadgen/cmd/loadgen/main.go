// Command loadgen drives a running ledger server with a mixed workload of
// party, invoice and receipt traffic. Ids from create responses feed a
// parameter pool so the mix keeps referencing entities the run created.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/vastra-erp/tools/loadgen/internal/pool"
	"github.com/vastra-erp/tools/loadgen/internal/runner"
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "server base URL")
		companyID   = flag.String("company", "", "company id for the X-Company-ID header (required)")
		finYear     = flag.String("fy", "2025-26", "financial year for the X-Financial-Year header")
		workers     = flag.Int("workers", 4, "concurrent request loops")
		duration    = flag.Duration("duration", 30*time.Second, "how long to run")
		seedParties = flag.Int("seed-parties", 10, "parties created before the mixed load starts")
		valueTTL    = flag.Duration("value-ttl", 5*time.Minute, "how long pooled ids stay sampleable")
	)
	flag.Parse()

	if *companyID == "" {
		fmt.Fprintln(os.Stderr, "loadgen: -company is required")
		flag.Usage()
		os.Exit(2)
	}

	p := pool.New(pool.Config{
		TTL:           *valueTTL,
		CapPerType:    1000,
		SweepInterval: time.Minute,
	})
	defer p.Close()

	r := runner.New(runner.Config{
		BaseURL:       *baseURL,
		CompanyID:     *companyID,
		FinancialYear: *finYear,
		Workers:       *workers,
		Duration:      *duration,
		SeedParties:   *seedParties,
		ValueTTL:      *valueTTL,
	}, p)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := r.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loadgen: %v\n", err)
		os.Exit(1)
	}

	printReport(report)
	if report.Failures > 0 {
		os.Exit(1)
	}
}

func printReport(rep runner.Report) {
	fmt.Printf("ran %s, %d requests, %d failures (%.1f req/s)\n",
		rep.Elapsed.Round(time.Millisecond), rep.Requests, rep.Failures,
		float64(rep.Requests)/rep.Elapsed.Seconds())

	ops := make([]string, 0, len(rep.Ops))
	for op := range rep.Ops {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		s := rep.Ops[op]
		fmt.Printf("  %-22s %6d calls  %4d failed  mean %s\n",
			op, s.Count, s.Failures, s.MeanLatency.Round(time.Microsecond))
	}

	fmt.Printf("pool: %d held, %d added, %d dropped, %d expired, hit rate %.1f%%\n",
		rep.Pool.Held, rep.Pool.Added, rep.Pool.Dropped, rep.Pool.Expired, rep.Pool.HitRate())
}
