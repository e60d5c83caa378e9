package claim

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the adjudication state reported by the insurer.
type Status string

const (
	StatusPaid        Status = "Paid"
	StatusDenied      Status = "Denied"
	StatusUnderReview Status = "Under Review"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPaid, StatusDenied, StatusUnderReview:
		return true
	}
	return false
}

// Statuses lists every valid status, in display order.
func Statuses() []Status {
	return []Status{StatusDenied, StatusPaid, StatusUnderReview}
}

// Severity grades how badly a claim was underpaid relative to the billed
// amount. Thresholds are payment percentage: none >=95, low >=80,
// medium >=50, high below that.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var hundred = decimal.NewFromInt(100)

type Claim struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// External natural key from the source files. Immutable once created.
	ClaimID string `gorm:"column:claim_id;type:varchar(20);uniqueIndex;not null" json:"claim_id"`

	PatientName   string          `gorm:"column:patient_name;type:varchar(200);not null" json:"patient_name"`
	BilledAmount  decimal.Decimal `gorm:"column:billed_amount;type:numeric(12,2);not null" json:"billed_amount"`
	PaidAmount    decimal.Decimal `gorm:"column:paid_amount;type:numeric(12,2);not null" json:"paid_amount"`
	Status        Status          `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	InsurerName   string          `gorm:"column:insurer_name;type:varchar(100);not null;index" json:"insurer_name"`
	DischargeDate time.Time       `gorm:"column:discharge_date;type:date;not null;index" json:"discharge_date"`

	Detail *ClaimDetail `gorm:"foreignKey:ClaimRef;constraint:OnDelete:CASCADE" json:"detail,omitempty"`
}

func (Claim) TableName() string {
	return "claims"
}

// Validate checks the stored-field invariants before persistence.
func (c *Claim) Validate() error {
	if strings.TrimSpace(c.ClaimID) == "" {
		return ErrClaimIDRequired
	}
	if !c.Status.IsValid() {
		return ErrInvalidStatus
	}
	if c.BilledAmount.IsNegative() || c.PaidAmount.IsNegative() {
		return ErrNegativeAmount
	}
	if c.PaidAmount.GreaterThan(c.BilledAmount) {
		return ErrPaidExceedsBilled
	}
	return nil
}

// UnderpaymentAmount is billed minus paid, exact to the cent.
func (c *Claim) UnderpaymentAmount() decimal.Decimal {
	return c.BilledAmount.Sub(c.PaidAmount)
}

// PaymentPercentage is paid/billed*100, or 0 when nothing was billed.
func (c *Claim) PaymentPercentage() float64 {
	if c.BilledAmount.IsPositive() {
		pct, _ := c.PaidAmount.Div(c.BilledAmount).Mul(hundred).Float64()
		return pct
	}
	return 0
}

func (c *Claim) IsDenied() bool {
	return c.Status == StatusDenied
}

// IsUnderpaid reports whether less than 80% of the billed amount was paid.
func (c *Claim) IsUnderpaid() bool {
	return c.PaymentPercentage() < 80.0
}

func (c *Claim) IsFullyPaid() bool {
	return c.PaidAmount.GreaterThanOrEqual(c.BilledAmount)
}

func (c *Claim) UnderpaymentSeverity() Severity {
	pct := c.PaymentPercentage()
	switch {
	case pct >= 95:
		return SeverityNone
	case pct >= 80:
		return SeverityLow
	case pct >= 50:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Derived bundles the computed payment fields for presentation. Nothing in
// it is persisted; it is recomputed from the stored amounts on every read
// so it can never go stale.
type Derived struct {
	UnderpaymentAmount decimal.Decimal `json:"underpayment_amount"`
	PaymentPercentage  float64         `json:"payment_percentage"`
	IsDenied           bool            `json:"is_denied"`
	IsUnderpaid        bool            `json:"is_underpaid"`
	IsFullyPaid        bool            `json:"is_fully_paid"`
	Severity           Severity        `json:"severity"`
}

func (c *Claim) Derived() Derived {
	return Derived{
		UnderpaymentAmount: c.UnderpaymentAmount(),
		PaymentPercentage:  c.PaymentPercentage(),
		IsDenied:           c.IsDenied(),
		IsUnderpaid:        c.IsUnderpaid(),
		IsFullyPaid:        c.IsFullyPaid(),
		Severity:           c.UnderpaymentSeverity(),
	}
}

// ClaimDetail is the 1:1 supplementary record loaded from the detail file.
// It is owned by its claim and removed with it via FK cascade.
type ClaimDetail struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	ClaimRef uuid.UUID `gorm:"column:claim_ref;type:uuid;uniqueIndex;not null" json:"-"`

	DenialReason string `gorm:"column:denial_reason;type:text" json:"denial_reason"`
	// Comma-separated CPT codes as they appear in the source file.
	CPTCodes string `gorm:"column:cpt_codes;type:text" json:"cpt_codes"`
}

func (ClaimDetail) TableName() string {
	return "claim_details"
}

// CPTCodeList splits CPTCodes on commas, trimming whitespace and dropping
// empty entries.
func (d *ClaimDetail) CPTCodeList() []string {
	if d.CPTCodes == "" {
		return nil
	}
	parts := strings.Split(d.CPTCodes, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if code := strings.TrimSpace(p); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// ListClaimsQuery defines search, filtering and pagination for claim lists.
// Zero-valued filters are ignored.
type ListClaimsQuery struct {
	Search      string // case-insensitive substring over claim_id, patient_name, insurer_name
	Status      *Status
	Insurer     string
	DateFrom    *time.Time
	DateTo      *time.Time
	MinAmount   *decimal.Decimal // on billed_amount
	MaxAmount   *decimal.Decimal
	FlaggedOnly bool
	Page        int
	PageSize    int
}

type PagedClaims struct {
	Claims     []*Claim `json:"claims"`
	TotalCount int64    `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}
