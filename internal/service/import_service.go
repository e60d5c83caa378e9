package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/clearhaven/claimdesk/internal/domain"
	"github.com/clearhaven/claimdesk/internal/ingest"
	"github.com/clearhaven/claimdesk/pkg/metrics"
	"go.uber.org/zap"
)

// ImportTxRunner executes one import unit of work transactionally: the
// store handed to fn must commit everything or nothing.
type ImportTxRunner interface {
	Do(ctx context.Context, fn func(store ingest.Store) error) error
}

type UploadReader interface {
	Recent(ctx context.Context, n int) ([]*domain.DataUpload, error)
}

// ImportService runs import batches. Imports are serialized process-wide:
// two concurrent overwrite imports interleaving purge and load would be a
// correctness hazard, so one import runs at a time.
type ImportService struct {
	tx       ImportTxRunner
	uploads  UploadReader
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger

	mu sync.Mutex
}

func NewImportService(
	tx ImportTxRunner,
	uploads UploadReader,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *ImportService {
	return &ImportService{
		tx:       tx,
		uploads:  uploads,
		auditSvc: auditSvc,
		metrics:  collector,
		log:      log,
	}
}

// ImportBatch loads a claims source and a details source in one atomic
// transaction. Row-level failures are reported in the summary; a returned
// error means the transaction rolled back and nothing was persisted.
func (s *ImportService) ImportBatch(ctx context.Context, batch ingest.Batch) (*ingest.Summary, error) {
	if _, err := ingest.ParseMode(string(batch.Mode)); err != nil {
		return nil, &ValidationError{Fields: []string{err.Error()}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("starting import batch",
		zap.String("mode", string(batch.Mode)),
		zap.String("claims_file", batch.ClaimsName),
		zap.String("details_file", batch.DetailsName),
	)

	var summary *ingest.Summary
	err := s.tx.Do(ctx, func(store ingest.Store) error {
		var runErr error
		summary, runErr = ingest.NewImporter(store, s.log).Run(ctx, batch)
		return runErr
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.ImportsTotal.WithLabelValues(string(batch.Mode), "failed").Inc()
		}
		s.log.Error("import batch failed, rolled back", zap.Error(err))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ImportsTotal.WithLabelValues(string(batch.Mode), "ok").Inc()
		s.metrics.RowsAccepted.Add(float64(summary.ClaimsAccepted() + summary.DetailsAccepted()))
		s.metrics.RowsRejected.Add(float64(len(summary.Rejected)))
	}

	if batch.UserID != nil {
		s.auditSvc.LogAsync(ctx, AuditEntry{
			UserID:       *batch.UserID,
			Action:       "import",
			ResourceType: "upload",
			Detail: fmt.Sprintf("mode=%s claims=%d details=%d rejected=%d",
				summary.Mode, summary.ClaimsAccepted(), summary.DetailsAccepted(), len(summary.Rejected)),
		})
	}

	return summary, nil
}

// RecentUploads returns the latest import audit records for the upload page.
func (s *ImportService) RecentUploads(ctx context.Context, n int) ([]*domain.DataUpload, error) {
	return s.uploads.Recent(ctx, n)
}
