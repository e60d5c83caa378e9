package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clearhaven/claimdesk/internal/domain"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/clearhaven/claimdesk/internal/ingest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is a minimal in-memory ingest.Store for driving the import
// service without a database.
type memStore struct {
	claims  map[string]*claim.Claim
	details map[uuid.UUID]*claim.ClaimDetail
	uploads []*domain.DataUpload

	failRecordUpload bool
}

func newMemStore() *memStore {
	return &memStore{
		claims:  make(map[string]*claim.Claim),
		details: make(map[uuid.UUID]*claim.ClaimDetail),
	}
}

func (s *memStore) PurgeAll(ctx context.Context) error {
	s.claims = make(map[string]*claim.Claim)
	s.details = make(map[uuid.UUID]*claim.ClaimDetail)
	return nil
}

func (s *memStore) FindClaim(ctx context.Context, claimID string) (*claim.Claim, error) {
	c, ok := s.claims[claimID]
	if !ok {
		return nil, claim.ErrClaimNotFound
	}
	return c, nil
}

func (s *memStore) CreateClaim(ctx context.Context, c *claim.Claim) error {
	c.ID = uuid.New()
	s.claims[c.ClaimID] = c
	return nil
}

func (s *memStore) UpdateClaim(ctx context.Context, c *claim.Claim) error {
	s.claims[c.ClaimID] = c
	return nil
}

func (s *memStore) UpsertDetail(ctx context.Context, d *claim.ClaimDetail) (bool, error) {
	_, exists := s.details[d.ClaimRef]
	s.details[d.ClaimRef] = d
	return !exists, nil
}

func (s *memStore) RecordUpload(ctx context.Context, up *domain.DataUpload) error {
	if s.failRecordUpload {
		return errors.New("record upload failed")
	}
	s.uploads = append(s.uploads, up)
	return nil
}

// memTxRunner hands the same store to every unit of work. A snapshot is
// taken before fn and restored when fn fails, imitating a rollback.
type memTxRunner struct {
	store *memStore
}

func (r *memTxRunner) Do(ctx context.Context, fn func(store ingest.Store) error) error {
	claims := make(map[string]*claim.Claim, len(r.store.claims))
	for k, v := range r.store.claims {
		claims[k] = v
	}
	details := make(map[uuid.UUID]*claim.ClaimDetail, len(r.store.details))
	for k, v := range r.store.details {
		details[k] = v
	}
	uploads := append([]*domain.DataUpload(nil), r.store.uploads...)

	if err := fn(r.store); err != nil {
		r.store.claims = claims
		r.store.details = details
		r.store.uploads = uploads
		return err
	}
	return nil
}

type memUploadReader struct {
	uploads []*domain.DataUpload
}

func (r *memUploadReader) Recent(ctx context.Context, n int) ([]*domain.DataUpload, error) {
	if len(r.uploads) > n {
		return r.uploads[:n], nil
	}
	return r.uploads, nil
}

func newImportService(store *memStore) (*ImportService, *AuditService) {
	auditSvc := NewAuditService(&fakeAuditRepo{}, nil, zap.NewNop())
	svc := NewImportService(&memTxRunner{store: store}, &memUploadReader{}, auditSvc, nil, zap.NewNop())
	return svc, auditSvc
}

func importBatch(claims, details string, mode ingest.Mode) ingest.Batch {
	return ingest.Batch{
		Claims:      strings.NewReader(claims),
		Details:     strings.NewReader(details),
		ClaimsName:  "claims.csv",
		DetailsName: "details.csv",
		Mode:        mode,
	}
}

const (
	testClaimsHeader  = "id|patient_name|billed_amount|paid_amount|status|insurer_name|discharge_date\n"
	testDetailsHeader = "claim_id|denial_reason|cpt_codes\n"
)

func TestImportBatch(t *testing.T) {
	store := newMemStore()
	svc, auditSvc := newImportService(store)
	defer auditSvc.Shutdown()

	claims := testClaimsHeader + "C-001|Jane Doe|1000.00|900.00|Paid|Acme Health|2024-03-01\n"
	summary, err := svc.ImportBatch(context.Background(), importBatch(claims, testDetailsHeader, ingest.ModeAppend))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ClaimsCreated)
	assert.Contains(t, store.claims, "C-001")
	assert.Len(t, store.uploads, 1)
}

func TestImportBatchInvalidMode(t *testing.T) {
	svc, auditSvc := newImportService(newMemStore())
	defer auditSvc.Shutdown()

	_, err := svc.ImportBatch(context.Background(), importBatch("", "", ingest.Mode("merge")))

	var validErr *ValidationError
	require.ErrorAs(t, err, &validErr)
}

func TestImportBatchFatalErrorLeavesNothingBehind(t *testing.T) {
	store := newMemStore()
	svc, auditSvc := newImportService(store)
	defer auditSvc.Shutdown()

	seed := testClaimsHeader + "C-OLD|Old Patient|100.00|100.00|Paid|Acme Health|2023-01-01\n"
	_, err := svc.ImportBatch(context.Background(), importBatch(seed, testDetailsHeader, ingest.ModeAppend))
	require.NoError(t, err)

	// Fail the batch after the purge and load already ran; the rollback must
	// restore the pre-import state.
	store.failRecordUpload = true
	fresh := testClaimsHeader + "C-NEW|New Patient|200.00|200.00|Paid|Acme Health|2024-06-01\n"
	_, err = svc.ImportBatch(context.Background(), importBatch(fresh, testDetailsHeader, ingest.ModeOverwrite))
	require.Error(t, err)
	assert.False(t, errors.As(err, new(*ValidationError)))

	assert.Contains(t, store.claims, "C-OLD", "rolled-back overwrite must not lose data")
	assert.NotContains(t, store.claims, "C-NEW")
	assert.Len(t, store.uploads, 1)
}

func TestImportBatchRecordsAuditForUser(t *testing.T) {
	store := newMemStore()
	auditRepo := &fakeAuditRepo{}
	auditSvc := NewAuditService(auditRepo, nil, zap.NewNop())
	svc := NewImportService(&memTxRunner{store: store}, &memUploadReader{}, auditSvc, nil, zap.NewNop())

	userID := uuid.New()
	batch := importBatch(testClaimsHeader, testDetailsHeader, ingest.ModeOverwrite)
	batch.UserID = &userID

	_, err := svc.ImportBatch(context.Background(), batch)
	require.NoError(t, err)

	auditSvc.Shutdown()

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, domain.ActionImport, auditRepo.entries[0].Action)
	assert.Equal(t, userID, auditRepo.entries[0].UserID)
}
