package booking

import (
	"time"

	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/modules/marketplace/contract"
)

type CreateBookingDTO struct {
	SellerID      string           `json:"seller_id" binding:"required"`
	AddressID     string           `json:"address_id"`
	Category      string           `json:"category" binding:"required"`
	Details       models.Localized `json:"details"`
	Budget        float64          `json:"budget"`
	PreferredDate string           `json:"preferred_date"`
	PreferredTime string           `json:"preferred_time"`
}

type ProposalDTO struct {
	Price float64 `json:"price" binding:"required,gt=0"`
	Date  string  `json:"date" binding:"required"`
	Time  string  `json:"time" binding:"required"`
	Note  string  `json:"note"`
}

type AcceptDTO struct {
	Terms *contract.TermsInput `json:"terms"`
}

type CancelDTO struct {
	Reason string `json:"reason" binding:"required"`
}

type CompleteDTO struct {
	Photos []string `json:"photos"`
}

type HaltDTO struct {
	Reason string `json:"reason" binding:"required"`
}

type CreateRequestDTO struct {
	AddressID string           `json:"address_id"`
	Category  string           `json:"category" binding:"required"`
	Details   models.Localized `json:"details"`
	BudgetMin float64          `json:"budget_min"`
	BudgetMax float64          `json:"budget_max"`
	Photos    []string         `json:"photos"`
}

type QuoteDTO struct {
	Price        float64          `json:"price" binding:"required,gt=0"`
	Note         models.Localized `json:"note"`
	ProposedDate *time.Time       `json:"proposed_date"`
	WarrantyDays int              `json:"warranty_days"`
}

type AcceptQuoteDTO struct {
	Terms *contract.TermsInput `json:"terms"`
}
