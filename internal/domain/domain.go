package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleReviewer:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"-"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	FirstName    string `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	LastName     string `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	Role         Role   `gorm:"column:role;type:varchar(30);not null;index" json:"role"`

	IsActive          bool       `gorm:"column:is_active;default:true;index" json:"is_active"`
	FailedLoginCount  int        `gorm:"column:failed_login_count;default:0" json:"-"`
	LockedUntil       *time.Time `gorm:"column:locked_until" json:"-"`
	LastLoginAt       *time.Time `gorm:"column:last_login_at" json:"-"`
	PasswordChangedAt time.Time  `gorm:"column:password_changed_at" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// UploadType records which load mode produced a DataUpload entry.
type UploadType string

const (
	UploadInitial   UploadType = "initial"
	UploadAppend    UploadType = "append"
	UploadOverwrite UploadType = "overwrite"
)

func (t UploadType) IsValid() bool {
	switch t {
	case UploadInitial, UploadAppend, UploadOverwrite:
		return true
	}
	return false
}

// DataUpload is the audit record written once per successful import, even
// when zero rows were accepted. It is deliberately not linked to specific
// claims: an overwrite import may remove every claim the previous upload
// produced.
type DataUpload struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UploadedAt time.Time `gorm:"column:uploaded_at;autoCreateTime;index" json:"uploaded_at"`

	UploadType       UploadType `gorm:"column:upload_type;type:varchar(20);not null" json:"upload_type"`
	FileName         string     `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	RecordsProcessed int        `gorm:"column:records_processed;not null" json:"records_processed"`
	Notes            string     `gorm:"column:notes;type:text" json:"notes"`

	// Nullable so the audit trail survives user removal.
	UserID *uuid.UUID `gorm:"column:user_id;type:uuid" json:"user_id,omitempty"`
	User   *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

func (DataUpload) TableName() string {
	return "data_uploads"
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionImport AuditAction = "import"
	ActionLogin  AuditAction = "login"
)

// AuditLog records reviewer activity (flags, notes, imports, logins).
// Entries are persisted asynchronously; see service.AuditService.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OccurredAt time.Time `gorm:"autoCreateTime;index" json:"occurred_at"`

	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	UserRole  Role      `gorm:"column:user_role;type:varchar(30);not null" json:"user_role"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)" json:"ip_address"` // Supports IPv6

	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index" json:"action"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index" json:"resource_id"`

	Detail string `gorm:"column:detail;type:text" json:"detail"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

// Identity is the authenticated principal carried through request handling.
type Identity struct {
	UserID uuid.UUID `json:"sub"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}
