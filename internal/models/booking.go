package models

import "time"

// Booking negotiation / job states.
const (
	BookingStatusSent            = "sent"
	BookingStatusSellerResponded = "seller_responded"
	BookingStatusBuyerCountered  = "buyer_countered"
	BookingStatusContractPending = "contract_pending"
	BookingStatusInProgress      = "in_progress"
	BookingStatusCompleted       = "completed"
	BookingStatusCancelled       = "cancelled"
)

// Proposal is a party's price/date/time offer exchanged during negotiation.
type Proposal struct {
	Price float64 `json:"price"`
	Date  string  `json:"date"` // YYYY-MM-DD
	Time  string  `json:"time"` // HH:MM
	Note  string  `json:"note,omitempty"`
}

// BookingModel is a direct booking of a seller by a buyer, carrying the
// negotiation state machine and the job-progress / halt flags.
type BookingModel struct {
	Base
	BuyerID       string    `json:"buyer_id"   gorm:"index;not null"`
	SellerID      string    `json:"seller_id"  gorm:"index;not null"`
	AddressID     string    `json:"address_id"`
	Category      string    `json:"category"   gorm:"index"`
	Details       Localized `json:"details"    gorm:"type:json"`
	Budget        float64   `json:"budget"`
	PreferredDate string    `json:"preferred_date"` // YYYY-MM-DD
	PreferredTime string    `json:"preferred_time"` // HH:MM
	Status        string    `json:"status" gorm:"index;not null;default:sent"`

	SellerProposal *Proposal `json:"seller_proposal,omitempty" gorm:"type:json;serializer:json"`
	BuyerProposal  *Proposal `json:"buyer_proposal,omitempty"  gorm:"type:json;serializer:json"`
	CancelReason   string    `json:"cancel_reason,omitempty"`

	// Work progress, set by the seller in order.
	SellerOnWayAt *time.Time `json:"seller_on_way_at"`
	WorkStartedAt *time.Time `json:"work_started_at"`

	// Dual completion confirmation.
	SellerMarkedComplete   bool        `json:"seller_marked_complete"    gorm:"default:false"`
	SellerCompletedAt      *time.Time  `json:"seller_completed_at"`
	SellerCompletionPhotos StringArray `json:"seller_completion_photos"  gorm:"type:json"`
	BuyerMarkedComplete    bool        `json:"buyer_marked_complete"     gorm:"default:false"`
	BuyerCompletedAt       *time.Time  `json:"buyer_completed_at"`

	// Halt side-channel: either party raises it, both must approve to clear.
	Halted                   bool       `json:"halted"                    gorm:"default:false"`
	HaltReason               string     `json:"halt_reason,omitempty"`
	HaltedBy                 string     `json:"halted_by,omitempty"`
	HaltedAt                 *time.Time `json:"halted_at"`
	BuyerApprovedResolution  bool       `json:"buyer_approved_resolution"  gorm:"default:false"`
	SellerApprovedResolution bool       `json:"seller_approved_resolution" gorm:"default:false"`
}

func (BookingModel) TableName() string { return "booking_requests" }

// Maintenance request states.
const (
	MaintenanceStatusOpen      = "open"
	MaintenanceStatusQuoted    = "quoted"
	MaintenanceStatusAwarded   = "awarded"
	MaintenanceStatusCancelled = "cancelled"
)

// MaintenanceRequestModel is an open job post any eligible seller may quote.
type MaintenanceRequestModel struct {
	Base
	BuyerID   string      `json:"buyer_id"   gorm:"index;not null"`
	AddressID string      `json:"address_id"`
	Category  string      `json:"category"   gorm:"index"`
	Details   Localized   `json:"details"    gorm:"type:json"`
	BudgetMin float64     `json:"budget_min"`
	BudgetMax float64     `json:"budget_max"`
	Photos    StringArray `json:"photos"     gorm:"type:json"`
	Status    string      `json:"status"     gorm:"index;not null;default:open"`

	Quotes []QuoteModel `json:"quotes,omitempty" gorm:"foreignKey:RequestID"`
}

func (MaintenanceRequestModel) TableName() string { return "maintenance_requests" }

// Quote states.
const (
	QuoteStatusPending  = "pending"
	QuoteStatusAccepted = "accepted"
	QuoteStatusDeclined = "declined"
)

// QuoteModel is a seller's offer on a maintenance request.
type QuoteModel struct {
	Base
	RequestID    string     `json:"request_id"    gorm:"index;not null"`
	SellerID     string     `json:"seller_id"     gorm:"index;not null"`
	Price        float64    `json:"price"`
	Note         Localized  `json:"note"          gorm:"type:json"`
	ProposedDate *time.Time `json:"proposed_date"`
	WarrantyDays int        `json:"warranty_days"`
	Status       string     `json:"status"        gorm:"index;not null;default:pending"`
}

func (QuoteModel) TableName() string { return "quotes" }
