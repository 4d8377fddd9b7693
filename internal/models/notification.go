package models

import "time"

// Notification kinds inserted for the counterparty (and admins on halts).
const (
	NotifyBookingResponded  = "booking_responded"
	NotifyBookingCountered  = "booking_countered"
	NotifyBookingCancelled  = "booking_cancelled"
	NotifyContractCreated   = "contract_created"
	NotifyContractSigned    = "contract_signed"
	NotifyContractExecuted  = "contract_executed"
	NotifyContractWithdrawn = "contract_withdrawn"
	NotifyJobHalted         = "job_halted"
	NotifyJobResumed        = "job_resumed"
	NotifyJobCompleted      = "job_completed"
	NotifyQuoteReceived     = "quote_received"
	NotifyReviewReceived    = "review_received"
)

// NotificationModel is an informational row for a user. There is no delivery
// guarantee beyond the insert; push and email are best-effort side channels.
type NotificationModel struct {
	Base
	UserID  string     `json:"user_id" gorm:"index;not null"`
	Kind    string     `json:"kind"    gorm:"index;not null"`
	Title   Localized  `json:"title"   gorm:"type:json"`
	Body    Localized  `json:"body"    gorm:"type:json"`
	RefType string     `json:"ref_type,omitempty"` // booking | request | contract | review
	RefID   string     `json:"ref_id,omitempty"   gorm:"index"`
	ReadAt  *time.Time `json:"read_at"`
}

func (NotificationModel) TableName() string { return "notifications" }
