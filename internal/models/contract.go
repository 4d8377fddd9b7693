package models

import "time"

// Contract states. The executed state is derived, never set directly:
// a contract is executed iff both signature timestamps are non-null.
const (
	ContractStatusPendingSeller = "pending_seller"
	ContractStatusPendingBuyer  = "pending_buyer"
	ContractStatusExecuted      = "executed"
	ContractStatusActive        = "active"
	ContractStatusCompleted     = "completed"
)

// ContractModel binds a buyer and a seller over a booking or an awarded
// quote. All mutation goes through the contract service, which recomputes
// Status from the signature timestamps inside the same transaction.
type ContractModel struct {
	Base
	BuyerID   string `json:"buyer_id"   gorm:"index;not null"`
	SellerID  string `json:"seller_id"  gorm:"index;not null"`
	BookingID string `json:"booking_id,omitempty" gorm:"index"`
	RequestID string `json:"request_id,omitempty" gorm:"index"`
	QuoteID   string `json:"quote_id,omitempty"`

	Status         string     `json:"status" gorm:"index;not null;default:pending_seller"`
	Price          float64    `json:"price"`
	SignedAtBuyer  *time.Time `json:"signed_at_buyer"`
	SignedAtSeller *time.Time `json:"signed_at_seller"`
	Version        int        `json:"version" gorm:"default:1"`
	Metadata       JSONMap    `json:"metadata" gorm:"type:json"`

	Terms      *BindingTermsModel       `json:"terms,omitempty"      gorm:"foreignKey:ContractID"`
	Signatures []ContractSignatureModel `json:"signatures,omitempty" gorm:"foreignKey:ContractID"`
}

func (ContractModel) TableName() string { return "contracts" }

// BindingTermsModel holds a contract's concrete terms, created in the same
// transaction as the contract row.
type BindingTermsModel struct {
	Base
	ContractID      string     `json:"-"            gorm:"uniqueIndex;not null"`
	StartDate       *time.Time `json:"start_date"`
	CompletionDate  *time.Time `json:"completion_date"`
	WarrantyMonths  int        `json:"warranty_months"`
	MaterialsBy     string     `json:"materials_by"` // buyer | seller | shared
	ScopeOfWork     Localized  `json:"scope_of_work" gorm:"type:json"`
}

func (BindingTermsModel) TableName() string { return "binding_terms" }

// Signature event kinds recorded in the audit trail.
const (
	SignatureEventSigned    = "signed"
	SignatureEventWithdrawn = "withdrawn"
)

// ContractSignatureModel is an append-only audit row per signing event.
// Rows are never updated or deleted, including for withdrawals.
type ContractSignatureModel struct {
	Base
	ContractID    string `json:"contract_id"    gorm:"index;not null"`
	UserID        string `json:"user_id"        gorm:"index;not null"`
	Role          string `json:"role"           gorm:"not null"` // buyer | seller
	Event         string `json:"event"          gorm:"not null;default:signed"`
	Version       int    `json:"version"`
	SignatureHash string `json:"signature_hash"`
}

func (ContractSignatureModel) TableName() string { return "contract_signatures" }
