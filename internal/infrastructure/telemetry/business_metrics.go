// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the trading ledger.
// It tracks payment activity, document creation, and outstanding balances.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	paymentRecordedTotal *Counter
	paymentAmountTotal   *Counter
	paymentDeletedTotal  *Counter
	documentCreatedTotal *Counter

	// Gauge metrics (point-in-time values)
	outstandingTotal    *Gauge
	overdueInvoiceCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	ledgerProvider LedgerMetricsProvider
}

// LedgerMetricsProvider provides ledger data for periodic metrics collection.
// This interface allows the telemetry layer to query settlement state without
// depending on the ledger domain directly.
type LedgerMetricsProvider interface {
	// GetOutstandingByTargetType returns total outstanding amount in paise per
	// target type (invoice, challan) for a company
	GetOutstandingByTargetType(ctx context.Context, companyID uuid.UUID) (map[string]int64, error)

	// GetOverdueInvoiceCount returns the count of unsettled invoices past due date for a company
	GetOverdueInvoiceCount(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	LedgerProvider  LedgerMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		ledgerProvider: cfg.LedgerProvider,
	}

	// Initialize counter metrics
	var err error

	// Payment metrics
	bm.paymentRecordedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_payment_recorded_total",
		"Total number of payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentAmountTotal, err = NewCounter(
		cfg.Meter,
		"ledger_payment_amount_total",
		"Total payment amount in paise",
		"{paise}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentDeletedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_payment_deleted_total",
		"Total number of payments deleted",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	// Document metrics
	bm.documentCreatedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_document_created_total",
		"Total number of invoices and challans created",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	// Settlement gauge metrics
	bm.outstandingTotal, err = NewGauge(
		cfg.Meter,
		"ledger_outstanding_total",
		"Current total outstanding amount in paise",
		"{paise}",
	)
	if err != nil {
		return nil, err
	}

	bm.overdueInvoiceCount, err = NewGauge(
		cfg.Meter,
		"ledger_overdue_invoice_count",
		"Number of unsettled invoices past their due date",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Payment Metrics
// =============================================================================

// RecordPayment records a payment mutation.
// This should be called from the application layer when a payment is created.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, companyID uuid.UUID, paymentType, method string) {
	bm.paymentRecordedTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrPaymentType.String(paymentType),
		AttrPaymentMethod.String(method),
	)
}

// RecordPaymentAmount records the payment amount.
// Amount should be in the smallest currency unit (paise).
func (bm *BusinessMetrics) RecordPaymentAmount(ctx context.Context, companyID uuid.UUID, paymentType string, amountPaise int64) {
	bm.paymentAmountTotal.Add(ctx, amountPaise,
		AttrCompanyID.String(companyID.String()),
		AttrPaymentType.String(paymentType),
	)
}

// RecordPaymentWithAmount is a convenience method that records both payment count and amount.
func (bm *BusinessMetrics) RecordPaymentWithAmount(ctx context.Context, companyID uuid.UUID, paymentType, method string, amount decimal.Decimal) {
	bm.RecordPayment(ctx, companyID, paymentType, method)

	// Convert to paise (multiply by 100)
	amountPaise := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordPaymentAmount(ctx, companyID, paymentType, amountPaise)
}

// RecordPaymentDeleted records a payment deletion.
func (bm *BusinessMetrics) RecordPaymentDeleted(ctx context.Context, companyID uuid.UUID, paymentType string) {
	bm.paymentDeletedTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrPaymentType.String(paymentType),
	)
}

// =============================================================================
// Document Metrics
// =============================================================================

// RecordDocumentCreated records an invoice or challan creation.
func (bm *BusinessMetrics) RecordDocumentCreated(ctx context.Context, companyID uuid.UUID, documentType string) {
	bm.documentCreatedTotal.Inc(ctx,
		AttrCompanyID.String(companyID.String()),
		AttrDocumentType.String(documentType),
	)
}

// =============================================================================
// Settlement Metrics
// =============================================================================

// RecordOutstanding records the current outstanding amount for a target type.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOutstanding(ctx context.Context, companyID uuid.UUID, targetType string, amountPaise int64) {
	bm.outstandingTotal.Record(ctx, amountPaise,
		AttrCompanyID.String(companyID.String()),
		AttrTargetType.String(targetType),
	)
}

// RecordOverdueInvoiceCount records the number of unsettled invoices past due date.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOverdueInvoiceCount(ctx context.Context, companyID uuid.UUID, count int64) {
	bm.overdueInvoiceCount.Record(ctx, count,
		AttrCompanyID.String(companyID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// CompanyProvider provides company IDs for periodic metrics collection.
type CompanyProvider interface {
	GetActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects settlement metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, companyProvider CompanyProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, companyProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, companyProvider CompanyProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectSettlementMetrics(ctx, companyProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectSettlementMetrics(ctx, companyProvider)
		}
	}
}

// collectSettlementMetrics collects settlement gauge metrics for all companies.
func (bm *BusinessMetrics) collectSettlementMetrics(ctx context.Context, companyProvider CompanyProvider) {
	if bm.ledgerProvider == nil {
		bm.logger.Debug("No ledger provider configured, skipping settlement metrics collection")
		return
	}

	companyIDs, err := companyProvider.GetActiveCompanyIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get company IDs for metrics collection", zap.Error(err))
		return
	}

	for _, companyID := range companyIDs {
		bm.collectCompanySettlementMetrics(ctx, companyID)
	}
}

// collectCompanySettlementMetrics collects settlement metrics for a single company.
func (bm *BusinessMetrics) collectCompanySettlementMetrics(ctx context.Context, companyID uuid.UUID) {
	// Collect outstanding totals by target type
	outstandingByType, err := bm.ledgerProvider.GetOutstandingByTargetType(ctx, companyID)
	if err != nil {
		bm.logger.Warn("Failed to get outstanding totals for company",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
	} else {
		for targetType, amountPaise := range outstandingByType {
			bm.RecordOutstanding(ctx, companyID, targetType, amountPaise)
		}
	}

	// Collect overdue invoice count
	overdueCount, err := bm.ledgerProvider.GetOverdueInvoiceCount(ctx, companyID)
	if err != nil {
		bm.logger.Warn("Failed to get overdue invoice count for company",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOverdueInvoiceCount(ctx, companyID, overdueCount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
