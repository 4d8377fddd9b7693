// Package booking drives the direct-booking negotiation state machine, the
// job-progress flow and the open maintenance-request / quote marketplace.
package booking

import (
	"errors"
	"time"

	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/modules/marketplace/contract"
	"github.com/baytfix/core/internal/modules/notify"
	"github.com/baytfix/core/internal/pkg/pagination"
	"github.com/baytfix/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotParty      = errors.New("user is not a party to this booking")
	ErrBadTransition = errors.New("operation not allowed in the current state")
	ErrHalted        = errors.New("job is halted")
	ErrNoProposal    = errors.New("nothing to accept")
)

type Service struct {
	db        *gorm.DB
	contracts *contract.Service
	notify    *notify.Service
	log       *zap.Logger
}

func NewService(db *gorm.DB, contracts *contract.Service, notifySvc *notify.Service, log *zap.Logger) *Service {
	return &Service{db: db, contracts: contracts, notify: notifySvc, log: log}
}

func (s *Service) Create(buyerID string, dto *CreateBookingDTO) (*models.BookingModel, error) {
	booking := models.BookingModel{
		BuyerID:       buyerID,
		SellerID:      dto.SellerID,
		AddressID:     dto.AddressID,
		Category:      dto.Category,
		Details:       dto.Details,
		Budget:        dto.Budget,
		PreferredDate: dto.PreferredDate,
		PreferredTime: dto.PreferredTime,
		Status:        models.BookingStatusSent,
	}
	if err := s.db.Create(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *Service) Get(id string) (*models.BookingModel, error) {
	var b models.BookingModel
	if err := s.db.First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// ListForUser returns bookings where the user is buyer or seller.
func (s *Service) ListForUser(userID string, q pagination.Query, status string) ([]models.BookingModel, response.Pagination, error) {
	tx := s.db.Model(&models.BookingModel{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var out []models.BookingModel
	page, err := pagination.Paginate(tx, q, &out)
	return out, page, err
}

// SellerRespond records the seller's counter-proposal on a fresh or
// buyer-countered booking.
func (s *Service) SellerRespond(bookingID, sellerID string, dto *ProposalDTO) (*models.BookingModel, error) {
	b, err := s.loadFor(bookingID, sellerID, models.RoleSeller)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusSent && b.Status != models.BookingStatusBuyerCountered {
		return nil, ErrBadTransition
	}

	b.SellerProposal = &models.Proposal{
		Price: dto.Price, Date: dto.Date, Time: dto.Time, Note: dto.Note,
	}
	b.Status = models.BookingStatusSellerResponded
	if err := s.db.Save(b).Error; err != nil {
		return nil, err
	}

	s.notify.Emit(notify.Event{
		UserID:  b.BuyerID,
		Kind:    models.NotifyBookingResponded,
		Title:   models.Localized{EN: "Seller responded", AR: "رد مقدم الخدمة"},
		Body:    models.Localized{EN: "The seller sent a proposal for your booking.", AR: "أرسل مقدم الخدمة عرضاً لحجزك."},
		RefType: "booking",
		RefID:   b.ID,
	})
	return b, nil
}

// BuyerAccept accepts the seller's current proposal: the contract and its
// binding terms are created and the booking moves to contract_pending, all
// in one transaction.
func (s *Service) BuyerAccept(bookingID, buyerID string, dto *AcceptDTO) (*models.BookingModel, *models.ContractModel, error) {
	b, err := s.loadFor(bookingID, buyerID, models.RoleBuyer)
	if err != nil {
		return nil, nil, err
	}
	if b.Status != models.BookingStatusSellerResponded {
		return nil, nil, ErrBadTransition
	}
	if b.SellerProposal == nil {
		return nil, nil, ErrNoProposal
	}

	c := models.ContractModel{
		BuyerID:   b.BuyerID,
		SellerID:  b.SellerID,
		BookingID: b.ID,
		Price:     b.SellerProposal.Price,
		Metadata: models.JSONMap{
			"agreed_date": b.SellerProposal.Date,
			"agreed_time": b.SellerProposal.Time,
		},
	}

	var terms *contract.TermsInput
	if dto != nil {
		terms = dto.Terms
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.contracts.CreateInTx(tx, &c, terms); err != nil {
			return err
		}
		return tx.Model(b).Update("status", models.BookingStatusContractPending).Error
	})
	if err != nil {
		return nil, nil, err
	}
	b.Status = models.BookingStatusContractPending

	s.log.Info("booking accepted",
		zap.String("booking", b.ID),
		zap.String("contract", c.ID))
	return b, &c, nil
}

// BuyerCounter stores the buyer's own proposal and hands the turn back to
// the seller.
func (s *Service) BuyerCounter(bookingID, buyerID string, dto *ProposalDTO) (*models.BookingModel, error) {
	b, err := s.loadFor(bookingID, buyerID, models.RoleBuyer)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusSellerResponded {
		return nil, ErrBadTransition
	}

	b.BuyerProposal = &models.Proposal{
		Price: dto.Price, Date: dto.Date, Time: dto.Time, Note: dto.Note,
	}
	b.Status = models.BookingStatusBuyerCountered
	if err := s.db.Save(b).Error; err != nil {
		return nil, err
	}

	s.notify.Emit(notify.Event{
		UserID:  b.SellerID,
		Kind:    models.NotifyBookingCountered,
		Title:   models.Localized{EN: "Buyer countered", AR: "قدم المشتري عرضاً مضاداً"},
		Body:    models.Localized{EN: "The buyer sent a counter-proposal.", AR: "أرسل المشتري عرضاً مضاداً."},
		RefType: "booking",
		RefID:   b.ID,
	})
	return b, nil
}

// Cancel ends the negotiation with a reason. Allowed to either party until
// a contract exists.
func (s *Service) Cancel(bookingID, userID string, dto *CancelDTO) (*models.BookingModel, error) {
	b, err := s.loadFor(bookingID, userID, "")
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case models.BookingStatusSent, models.BookingStatusSellerResponded, models.BookingStatusBuyerCountered:
	default:
		return nil, ErrBadTransition
	}

	b.Status = models.BookingStatusCancelled
	b.CancelReason = dto.Reason
	if err := s.db.Save(b).Error; err != nil {
		return nil, err
	}

	counterparty := b.SellerID
	if userID == b.SellerID {
		counterparty = b.BuyerID
	}
	s.notify.Emit(notify.Event{
		UserID:  counterparty,
		Kind:    models.NotifyBookingCancelled,
		Title:   models.Localized{EN: "Booking cancelled", AR: "تم إلغاء الحجز"},
		Body:    models.Localized{EN: dto.Reason, AR: dto.Reason},
		RefType: "booking",
		RefID:   b.ID,
	})
	return b, nil
}

// MarkOnWay is the first of the seller's ordered progress marks.
func (s *Service) MarkOnWay(bookingID, sellerID string) (*models.BookingModel, error) {
	b, err := s.loadFor(bookingID, sellerID, models.RoleSeller)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusInProgress || b.Halted {
		return nil, progressError(b)
	}
	if b.SellerOnWayAt != nil {
		return nil, ErrBadTransition
	}

	now := time.Now()
	b.SellerOnWayAt = &now
	return b, s.db.Model(b).Update("seller_on_way_at", now).Error
}

// MarkWorkStarted requires the on-way mark and flips the contract to active.
func (s *Service) MarkWorkStarted(bookingID, sellerID string) (*models.BookingModel, error) {
	b, err := s.loadFor(bookingID, sellerID, models.RoleSeller)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusInProgress || b.Halted {
		return nil, progressError(b)
	}
	if b.SellerOnWayAt == nil || b.WorkStartedAt != nil {
		return nil, ErrBadTransition
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(b).Update("work_started_at", now).Error; err != nil {
			return err
		}
		return s.contracts.MarkActiveInTx(tx, b.ID)
	})
	if err != nil {
		return nil, err
	}
	b.WorkStartedAt = &now
	return b, nil
}

// SellerComplete marks the seller side done, with photo evidence.
func (s *Service) SellerComplete(bookingID, sellerID string, dto *CompleteDTO) (*models.BookingModel, error) {
	b, err := s.loadFor(bookingID, sellerID, models.RoleSeller)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusInProgress || b.Halted {
		return nil, progressError(b)
	}
	if b.WorkStartedAt == nil || b.SellerMarkedComplete {
		return nil, ErrBadTransition
	}

	now := time.Now()
	b.SellerMarkedComplete = true
	b.SellerCompletedAt = &now
	b.SellerCompletionPhotos = models.StringArray(dto.Photos)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(b).Updates(map[string]interface{}{
			"seller_marked_complete":   true,
			"seller_completed_at":      now,
			"seller_completion_photos": b.SellerCompletionPhotos,
		}).Error
		if err != nil {
			return err
		}
		return s.notify.EmitTx(tx, notify.Event{
			UserID:  b.BuyerID,
			Kind:    models.NotifyJobCompleted,
			Title:   models.Localized{EN: "Seller finished the job", AR: "أنهى مقدم الخدمة العمل"},
			Body:    models.Localized{EN: "Please confirm the work is complete.", AR: "يرجى تأكيد اكتمال العمل."},
			RefType: "booking",
			RefID:   b.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BuyerComplete confirms the buyer side. Once both sides have confirmed the
// booking and its contract close together.
func (s *Service) BuyerComplete(bookingID, buyerID string) (*models.BookingModel, error) {
	b, err := s.loadFor(bookingID, buyerID, models.RoleBuyer)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusInProgress || b.Halted {
		return nil, progressError(b)
	}
	if b.BuyerMarkedComplete {
		return nil, ErrBadTransition
	}

	now := time.Now()
	b.BuyerMarkedComplete = true
	b.BuyerCompletedAt = &now

	updates := map[string]interface{}{
		"buyer_marked_complete": true,
		"buyer_completed_at":    now,
	}
	bothDone := b.SellerMarkedComplete
	if bothDone {
		updates["status"] = models.BookingStatusCompleted
		b.Status = models.BookingStatusCompleted
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(b).Updates(updates).Error; err != nil {
			return err
		}
		if !bothDone {
			return nil
		}
		if err := s.contracts.MarkCompletedInTx(tx, b.ID); err != nil {
			return err
		}
		return s.notify.EmitTx(tx, notify.Event{
			UserID:  b.SellerID,
			Kind:    models.NotifyJobCompleted,
			Title:   models.Localized{EN: "Job completed", AR: "اكتمل العمل"},
			Body:    models.Localized{EN: "The buyer confirmed completion.", AR: "أكد المشتري اكتمال العمل."},
			RefType: "booking",
			RefID:   b.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Halt pauses an in-progress job. Either party may raise it; both approval
// flags reset so clearing requires fresh consent from each side.
func (s *Service) Halt(bookingID, userID string, dto *HaltDTO) (*models.BookingModel, error) {
	b, err := s.loadFor(bookingID, userID, "")
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusInProgress {
		return nil, ErrBadTransition
	}
	if b.Halted {
		return nil, ErrHalted
	}

	now := time.Now()
	haltedBy := models.RoleBuyer
	counterparty := b.SellerID
	if userID == b.SellerID {
		haltedBy = models.RoleSeller
		counterparty = b.BuyerID
	}

	b.Halted = true
	b.HaltReason = dto.Reason
	b.HaltedBy = haltedBy
	b.HaltedAt = &now
	b.BuyerApprovedResolution = false
	b.SellerApprovedResolution = false

	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(b).Updates(map[string]interface{}{
			"halted":                     true,
			"halt_reason":                dto.Reason,
			"halted_by":                  haltedBy,
			"halted_at":                  now,
			"buyer_approved_resolution":  false,
			"seller_approved_resolution": false,
		}).Error
		if err != nil {
			return err
		}
		return s.notify.EmitTx(tx, notify.Event{
			UserID:  counterparty,
			Kind:    models.NotifyJobHalted,
			Title:   models.Localized{EN: "Job halted", AR: "تم إيقاف العمل"},
			Body:    models.Localized{EN: dto.Reason, AR: dto.Reason},
			RefType: "booking",
			RefID:   b.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ApproveResolution sets the caller's approval flag. The halt clears only
// when both flags are true.
func (s *Service) ApproveResolution(bookingID, userID string) (*models.BookingModel, error) {
	b, err := s.loadFor(bookingID, userID, "")
	if err != nil {
		return nil, err
	}
	if !b.Halted {
		return nil, ErrBadTransition
	}

	if userID == b.BuyerID {
		b.BuyerApprovedResolution = true
	} else {
		b.SellerApprovedResolution = true
	}

	updates := map[string]interface{}{
		"buyer_approved_resolution":  b.BuyerApprovedResolution,
		"seller_approved_resolution": b.SellerApprovedResolution,
	}
	resumed := b.BuyerApprovedResolution && b.SellerApprovedResolution
	if resumed {
		b.Halted = false
		b.HaltReason = ""
		b.HaltedBy = ""
		b.HaltedAt = nil
		updates["halted"] = false
		updates["halt_reason"] = ""
		updates["halted_by"] = ""
		updates["halted_at"] = nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(b).Updates(updates).Error; err != nil {
			return err
		}
		if !resumed {
			return nil
		}
		for _, uid := range []string{b.BuyerID, b.SellerID} {
			err := s.notify.EmitTx(tx, notify.Event{
				UserID:  uid,
				Kind:    models.NotifyJobResumed,
				Title:   models.Localized{EN: "Job resumed", AR: "استؤنف العمل"},
				Body:    models.Localized{EN: "Both parties approved the resolution.", AR: "وافق الطرفان على الحل."},
				RefType: "booking",
				RefID:   b.ID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) loadFor(bookingID, userID, role string) (*models.BookingModel, error) {
	b, err := s.Get(bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, gorm.ErrRecordNotFound
	}
	switch role {
	case models.RoleBuyer:
		if b.BuyerID != userID {
			return nil, ErrNotParty
		}
	case models.RoleSeller:
		if b.SellerID != userID {
			return nil, ErrNotParty
		}
	default:
		if b.BuyerID != userID && b.SellerID != userID {
			return nil, ErrNotParty
		}
	}
	return b, nil
}

func progressError(b *models.BookingModel) error {
	if b.Halted {
		return ErrHalted
	}
	return ErrBadTransition
}
