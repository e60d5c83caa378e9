package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/clearhaven/claimdesk/internal/domain"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mode selects how an import treats pre-existing data.
type Mode string

const (
	// ModeAppend merges into existing data, upserting claims by natural key.
	ModeAppend Mode = "append"
	// ModeOverwrite purges all claims (details cascade) before loading.
	ModeOverwrite Mode = "overwrite"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAppend, ModeOverwrite:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid import mode %q (want append or overwrite)", s)
}

const dischargeDateLayout = "2006-01-02"

// RowError describes one rejected source row. Row errors are recoverable:
// the row is skipped, the reason recorded, and the batch continues.
type RowError struct {
	Source string `json:"source"` // "claims" or "details"
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s line %d: %s", e.Source, e.Line, e.Reason)
}

// Summary reports the outcome of one import batch.
type Summary struct {
	Mode           Mode       `json:"mode"`
	ClaimsCreated  int        `json:"claims_created"`
	ClaimsUpdated  int        `json:"claims_updated"`
	DetailsCreated int        `json:"details_created"`
	DetailsUpdated int        `json:"details_updated"`
	Rejected       []RowError `json:"rejected"`
}

func (s *Summary) ClaimsAccepted() int {
	return s.ClaimsCreated + s.ClaimsUpdated
}

func (s *Summary) DetailsAccepted() int {
	return s.DetailsCreated + s.DetailsUpdated
}

// Store is the persistence surface the importer drives. The caller is
// responsible for wrapping a whole Run in one transaction so that a fatal
// error leaves nothing behind.
type Store interface {
	// PurgeAll deletes every claim; details are removed by FK cascade.
	PurgeAll(ctx context.Context) error

	// FindClaim looks a claim up by natural key.
	// Returns claim.ErrClaimNotFound when absent.
	FindClaim(ctx context.Context, claimID string) (*claim.Claim, error)

	CreateClaim(ctx context.Context, c *claim.Claim) error
	UpdateClaim(ctx context.Context, c *claim.Claim) error

	// UpsertDetail creates or replaces the 1:1 detail for d.ClaimRef.
	// Reports whether a new row was created.
	UpsertDetail(ctx context.Context, d *claim.ClaimDetail) (created bool, err error)

	// RecordUpload writes the DataUpload audit row for a finished batch.
	RecordUpload(ctx context.Context, up *domain.DataUpload) error
}

// Batch describes one import: the two sources, their display names for the
// audit record, the load mode, and the acting user (nil for CLI imports).
type Batch struct {
	Claims      io.Reader
	Details     io.Reader
	ClaimsName  string
	DetailsName string
	Mode        Mode
	UserID      *uuid.UUID
}

// Importer runs the two-phase claims-then-details load. Claims load fully
// before any detail row is resolved, so a detail referencing a claim from
// the same batch never spuriously misses it.
type Importer struct {
	store Store
	log   *zap.Logger
}

func NewImporter(store Store, log *zap.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// Run executes one import batch against the store: validate, purge when
// overwriting, load claims, load details, record the upload summary.
// Row-level validation failures are collected in the summary and never
// abort the batch; any error returned here is fatal and the caller must
// roll the transaction back.
func (im *Importer) Run(ctx context.Context, batch Batch) (*Summary, error) {
	if _, err := ParseMode(string(batch.Mode)); err != nil {
		return nil, err
	}
	if batch.Claims == nil || batch.Details == nil {
		return nil, errors.New("both claims and details sources are required")
	}

	summary := &Summary{Mode: batch.Mode}

	if batch.Mode == ModeOverwrite {
		im.log.Info("purging existing claims before overwrite load")
		if err := im.store.PurgeAll(ctx); err != nil {
			return nil, fmt.Errorf("purging claims: %w", err)
		}
	}

	if err := im.loadClaims(ctx, batch.Claims, summary); err != nil {
		return nil, err
	}
	if err := im.loadDetails(ctx, batch.Details, summary); err != nil {
		return nil, err
	}

	upload := &domain.DataUpload{
		UploadType:       domain.UploadType(batch.Mode),
		FileName:         fmt.Sprintf("%s, %s", batch.ClaimsName, batch.DetailsName),
		RecordsProcessed: summary.ClaimsAccepted(),
		Notes: fmt.Sprintf("Claims: %d, Details: %d, Rejected: %d",
			summary.ClaimsAccepted(), summary.DetailsAccepted(), len(summary.Rejected)),
		UserID: batch.UserID,
	}
	if err := im.store.RecordUpload(ctx, upload); err != nil {
		return nil, fmt.Errorf("recording upload summary: %w", err)
	}

	im.log.Info("import batch complete",
		zap.String("mode", string(batch.Mode)),
		zap.Int("claims_created", summary.ClaimsCreated),
		zap.Int("claims_updated", summary.ClaimsUpdated),
		zap.Int("details_created", summary.DetailsCreated),
		zap.Int("details_updated", summary.DetailsUpdated),
		zap.Int("rejected", len(summary.Rejected)),
	)

	return summary, nil
}

func (im *Importer) loadClaims(ctx context.Context, src io.Reader, summary *Summary) error {
	reader, err := NewReader(src)
	if err != nil {
		return fmt.Errorf("opening claims source: %w", err)
	}

	for {
		row, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			summary.reject("claims", reader.line, err.Error())
			continue
		}

		created, rowErr, err := im.upsertClaim(ctx, row)
		if err != nil {
			return err
		}
		if rowErr != nil {
			summary.Rejected = append(summary.Rejected, *rowErr)
			im.log.Warn("skipping invalid claim row",
				zap.Int("line", rowErr.Line),
				zap.String("reason", rowErr.Reason),
			)
			continue
		}
		if created {
			summary.ClaimsCreated++
		} else {
			summary.ClaimsUpdated++
		}
	}
}

// upsertClaim validates one claim row and inserts or updates by natural key.
// The middle return value carries recoverable row failures; the last one is
// fatal to the batch.
func (im *Importer) upsertClaim(ctx context.Context, row *Row) (bool, *RowError, error) {
	reject := func(format string, args ...any) (bool, *RowError, error) {
		return false, &RowError{Source: "claims", Line: row.Line, Reason: fmt.Sprintf(format, args...)}, nil
	}

	values := make(map[string]string, len(claimColumns))
	for _, col := range claimColumns {
		v, ok := row.Get(col)
		if !ok {
			return reject("missing column %q", col)
		}
		values[col] = v
	}

	claimID := strings.TrimSpace(values["id"])
	if claimID == "" {
		return reject("empty claim id")
	}

	dischargeDate, err := time.Parse(dischargeDateLayout, values["discharge_date"])
	if err != nil {
		return reject("invalid discharge_date %q (want YYYY-MM-DD)", values["discharge_date"])
	}

	billed, err := parseAmount(values["billed_amount"])
	if err != nil {
		return reject("invalid billed_amount %q: %v", values["billed_amount"], err)
	}
	paid, err := parseAmount(values["paid_amount"])
	if err != nil {
		return reject("invalid paid_amount %q: %v", values["paid_amount"], err)
	}

	status := claim.Status(values["status"])
	if !status.IsValid() {
		return reject("invalid status %q", values["status"])
	}

	if paid.GreaterThan(billed) {
		return reject("paid amount %s exceeds billed amount %s", paid, billed)
	}

	existing, err := im.store.FindClaim(ctx, claimID)
	switch {
	case err == nil:
		existing.PatientName = values["patient_name"]
		existing.BilledAmount = billed
		existing.PaidAmount = paid
		existing.Status = status
		existing.InsurerName = values["insurer_name"]
		existing.DischargeDate = dischargeDate
		if err := im.store.UpdateClaim(ctx, existing); err != nil {
			return false, nil, fmt.Errorf("updating claim %s: %w", claimID, err)
		}
		return false, nil, nil

	case errors.Is(err, claim.ErrClaimNotFound):
		c := &claim.Claim{
			ClaimID:       claimID,
			PatientName:   values["patient_name"],
			BilledAmount:  billed,
			PaidAmount:    paid,
			Status:        status,
			InsurerName:   values["insurer_name"],
			DischargeDate: dischargeDate,
		}
		if err := im.store.CreateClaim(ctx, c); err != nil {
			return false, nil, fmt.Errorf("creating claim %s: %w", claimID, err)
		}
		return true, nil, nil

	default:
		return false, nil, fmt.Errorf("looking up claim %s: %w", claimID, err)
	}
}

func (im *Importer) loadDetails(ctx context.Context, src io.Reader, summary *Summary) error {
	reader, err := NewReader(src)
	if err != nil {
		return fmt.Errorf("opening details source: %w", err)
	}

	for {
		row, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			summary.reject("details", reader.line, err.Error())
			continue
		}

		created, rowErr, err := im.upsertDetail(ctx, row)
		if err != nil {
			return err
		}
		if rowErr != nil {
			summary.Rejected = append(summary.Rejected, *rowErr)
			im.log.Warn("skipping invalid detail row",
				zap.Int("line", rowErr.Line),
				zap.String("reason", rowErr.Reason),
			)
			continue
		}
		if created {
			summary.DetailsCreated++
		} else {
			summary.DetailsUpdated++
		}
	}
}

// upsertDetail resolves the owning claim by natural key and creates or
// updates the 1:1 detail. Orphan rows are rejected, not fatal.
func (im *Importer) upsertDetail(ctx context.Context, row *Row) (bool, *RowError, error) {
	reject := func(format string, args ...any) (bool, *RowError, error) {
		return false, &RowError{Source: "details", Line: row.Line, Reason: fmt.Sprintf(format, args...)}, nil
	}

	rawID, ok := row.Get("claim_id")
	if !ok {
		return reject("missing column %q", "claim_id")
	}
	claimID := strings.TrimSpace(rawID)
	if claimID == "" {
		return reject("empty claim id")
	}

	owner, err := im.store.FindClaim(ctx, claimID)
	if errors.Is(err, claim.ErrClaimNotFound) {
		return reject("claim %s not found for detail record", claimID)
	}
	if err != nil {
		return false, nil, fmt.Errorf("looking up claim %s: %w", claimID, err)
	}

	denialReason, _ := row.Get("denial_reason")
	cptCodes, _ := row.Get("cpt_codes")

	created, err := im.store.UpsertDetail(ctx, &claim.ClaimDetail{
		ClaimRef:     owner.ID,
		DenialReason: denialReason,
		CPTCodes:     cptCodes,
	})
	if err != nil {
		return false, nil, fmt.Errorf("upserting detail for claim %s: %w", claimID, err)
	}
	return created, nil, nil
}

var claimColumns = []string{
	"id", "patient_name", "billed_amount", "paid_amount",
	"status", "insurer_name", "discharge_date",
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("must be non-negative")
	}
	return d, nil
}

func (s *Summary) reject(source string, line int, reason string) {
	s.Rejected = append(s.Rejected, RowError{Source: source, Line: line, Reason: reason})
}
