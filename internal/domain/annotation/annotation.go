package annotation

import (
	"time"

	"github.com/clearhaven/claimdesk/internal/domain"
	"github.com/clearhaven/claimdesk/internal/domain/claim"
	"github.com/google/uuid"
)

// FlagType categorizes why a reviewer flagged a claim.
type FlagType string

const (
	FlagReview      FlagType = "review"
	FlagUrgent      FlagType = "urgent"
	FlagAppeal      FlagType = "appeal"
	FlagInvestigate FlagType = "investigate"
	FlagFollowUp    FlagType = "follow_up"
)

func (f FlagType) IsValid() bool {
	switch f {
	case FlagReview, FlagUrgent, FlagAppeal, FlagInvestigate, FlagFollowUp:
		return true
	}
	return false
}

// ClaimFlag marks a claim as needing attention. At most one flag exists per
// (claim, user, flag type); re-raising an inactive flag reactivates it.
type ClaimFlag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	ClaimRef uuid.UUID `gorm:"column:claim_ref;type:uuid;not null;index;uniqueIndex:uq_claim_flags_triple" json:"-"`
	UserID   uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_claim_flags_triple" json:"user_id"`
	FlagType FlagType  `gorm:"column:flag_type;type:varchar(20);not null;default:'review';uniqueIndex:uq_claim_flags_triple" json:"flag_type"`

	Reason   string `gorm:"column:reason;type:text" json:"reason"`
	IsActive bool   `gorm:"column:is_active;default:true;index" json:"is_active"`

	Claim *claim.Claim `gorm:"foreignKey:ClaimRef;constraint:OnDelete:CASCADE" json:"claim,omitempty"`
	User  *domain.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ClaimFlag) TableName() string {
	return "claim_flags"
}

// ClaimNote is a free-text annotation on a claim. Unbounded per claim.
type ClaimNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	ClaimRef uuid.UUID `gorm:"column:claim_ref;type:uuid;not null;index" json:"-"`
	UserID   uuid.UUID `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Note     string    `gorm:"column:note;type:text;not null" json:"note"`

	Claim *claim.Claim `gorm:"foreignKey:ClaimRef;constraint:OnDelete:CASCADE" json:"claim,omitempty"`
	User  *domain.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ClaimNote) TableName() string {
	return "claim_notes"
}
