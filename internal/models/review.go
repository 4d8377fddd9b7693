package models

// SellerReviewModel is the buyer's post-completion rating of a seller,
// one row per contract per buyer (upserted on resubmit).
type SellerReviewModel struct {
	Base
	ContractID string    `json:"contract_id" gorm:"index;not null"`
	RequestID  string    `json:"request_id,omitempty" gorm:"index"`
	BuyerID    string    `json:"buyer_id"    gorm:"index;not null"`
	SellerID   string    `json:"seller_id"   gorm:"index;not null"`
	Rating     int       `json:"rating"      gorm:"not null"` // 1..5
	Text       Localized `json:"text"        gorm:"type:json"`
}

func (SellerReviewModel) TableName() string { return "seller_reviews" }
