// Package contract owns every mutation of contracts, binding terms and the
// signature audit trail. Status is recomputed from the signature timestamps
// inside the same transaction as the write, so the executed state can never
// drift from the timestamps.
package contract

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/modules/notify"
	"github.com/baytfix/core/internal/pkg/pagination"
	"github.com/baytfix/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotParty        = errors.New("user is not a party to this contract")
	ErrAlreadySigned   = errors.New("already signed")
	ErrWithdrawLocked  = errors.New("cannot withdraw after the seller has signed")
	ErrNotWithdrawable = errors.New("no buyer signature to withdraw")
	ErrStaleVersion    = errors.New("contract changed concurrently, retry")
)

// TermsInput are the binding terms captured when a contract is created.
type TermsInput struct {
	StartDate      *time.Time       `json:"start_date"`
	CompletionDate *time.Time       `json:"completion_date"`
	WarrantyMonths int              `json:"warranty_months"`
	MaterialsBy    string           `json:"materials_by" binding:"omitempty,oneof=buyer seller shared"`
	ScopeOfWork    models.Localized `json:"scope_of_work"`
}

type Service struct {
	db     *gorm.DB
	notify *notify.Service
	log    *zap.Logger
}

func NewService(db *gorm.DB, notifySvc *notify.Service, log *zap.Logger) *Service {
	return &Service{db: db, notify: notifySvc, log: log}
}

// CreateInTx inserts a contract together with its binding terms. Both rows
// commit or neither does; callers pass their own transaction so the
// originating state change (booking accept, quote award) joins it too.
func (s *Service) CreateInTx(tx *gorm.DB, c *models.ContractModel, terms *TermsInput) error {
	c.Status = models.ContractStatusPendingSeller
	if err := tx.Create(c).Error; err != nil {
		return err
	}

	row := models.BindingTermsModel{ContractID: c.ID}
	if terms != nil {
		row.StartDate = terms.StartDate
		row.CompletionDate = terms.CompletionDate
		row.WarrantyMonths = terms.WarrantyMonths
		row.MaterialsBy = terms.MaterialsBy
		row.ScopeOfWork = terms.ScopeOfWork
	}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	c.Terms = &row

	for _, userID := range []string{c.BuyerID, c.SellerID} {
		err := s.notify.EmitTx(tx, notify.Event{
			UserID:  userID,
			Kind:    models.NotifyContractCreated,
			Title:   models.Localized{EN: "Contract created", AR: "تم إنشاء العقد"},
			Body:    models.Localized{EN: "A new contract is ready for signature.", AR: "عقد جديد جاهز للتوقيع."},
			RefType: "contract",
			RefID:   c.ID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Get(id string) (*models.ContractModel, error) {
	var c models.ContractModel
	err := s.db.Preload("Terms").Preload("Signatures").First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListForUser returns contracts the user is a party to.
func (s *Service) ListForUser(userID string, q pagination.Query, status string) ([]models.ContractModel, response.Pagination, error) {
	tx := s.db.Model(&models.ContractModel{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var out []models.ContractModel
	page, err := pagination.Paginate(tx, q, &out)
	return out, page, err
}

// Sign records one party's signature: the party's timestamp, an append-only
// audit row and the recomputed status all land in one transaction.
func (s *Service) Sign(contractID, userID string) (*models.ContractModel, error) {
	var signed *models.ContractModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, role, err := loadForParty(tx, contractID, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		switch role {
		case models.RoleBuyer:
			if c.SignedAtBuyer != nil {
				return ErrAlreadySigned
			}
			c.SignedAtBuyer = &now
		case models.RoleSeller:
			if c.SignedAtSeller != nil {
				return ErrAlreadySigned
			}
			c.SignedAtSeller = &now
		}

		prevVersion := c.Version
		c.Version++
		recomputeStatus(c)

		res := tx.Model(&models.ContractModel{}).
			Where("id = ? AND version = ?", c.ID, prevVersion).
			Updates(map[string]interface{}{
				"signed_at_buyer":  c.SignedAtBuyer,
				"signed_at_seller": c.SignedAtSeller,
				"status":           c.Status,
				"version":          c.Version,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}

		audit := models.ContractSignatureModel{
			ContractID:    c.ID,
			UserID:        userID,
			Role:          role,
			Event:         models.SignatureEventSigned,
			Version:       c.Version,
			SignatureHash: signatureHash(c.ID, userID, c.Version, now),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		if err := s.emitSignedTx(tx, c, role); err != nil {
			return err
		}
		if c.Status == models.ContractStatusExecuted && c.BookingID != "" {
			// The job may begin once both parties have signed.
			err := tx.Model(&models.BookingModel{}).
				Where("id = ? AND status = ?", c.BookingID, models.BookingStatusContractPending).
				Update("status", models.BookingStatusInProgress).Error
			if err != nil {
				return err
			}
		}

		signed = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("contract signed",
		zap.String("contract", signed.ID),
		zap.String("status", signed.Status))
	return signed, nil
}

// Withdraw clears the buyer's signature before the seller has signed. Once
// the seller's timestamp is set the call changes nothing and reports the
// conflict to the caller.
func (s *Service) Withdraw(contractID, buyerID string) (*models.ContractModel, error) {
	var withdrawn *models.ContractModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, role, err := loadForParty(tx, contractID, buyerID)
		if err != nil {
			return err
		}
		if role != models.RoleBuyer {
			return ErrNotParty
		}
		if c.SignedAtSeller != nil {
			return ErrWithdrawLocked
		}
		if c.SignedAtBuyer == nil {
			return ErrNotWithdrawable
		}

		prevVersion := c.Version
		c.SignedAtBuyer = nil
		c.Version++
		recomputeStatus(c)

		res := tx.Model(&models.ContractModel{}).
			Where("id = ? AND version = ?", c.ID, prevVersion).
			Updates(map[string]interface{}{
				"signed_at_buyer": nil,
				"status":          c.Status,
				"version":         c.Version,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}

		audit := models.ContractSignatureModel{
			ContractID:    c.ID,
			UserID:        buyerID,
			Role:          models.RoleBuyer,
			Event:         models.SignatureEventWithdrawn,
			Version:       c.Version,
			SignatureHash: signatureHash(c.ID, buyerID, c.Version, time.Now()),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		err = s.notify.EmitTx(tx, notify.Event{
			UserID:  c.SellerID,
			Kind:    models.NotifyContractWithdrawn,
			Title:   models.Localized{EN: "Signature withdrawn", AR: "تم سحب التوقيع"},
			Body:    models.Localized{EN: "The buyer withdrew their signature.", AR: "قام المشتري بسحب توقيعه."},
			RefType: "contract",
			RefID:   c.ID,
		})
		if err != nil {
			return err
		}

		withdrawn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return withdrawn, nil
}

// MarkActiveInTx moves an executed contract to active when its job starts.
func (s *Service) MarkActiveInTx(tx *gorm.DB, bookingID string) error {
	return tx.Model(&models.ContractModel{}).
		Where("booking_id = ? AND status = ?", bookingID, models.ContractStatusExecuted).
		Update("status", models.ContractStatusActive).Error
}

// MarkCompletedInTx closes the contract once both parties confirmed the job.
func (s *Service) MarkCompletedInTx(tx *gorm.DB, bookingID string) error {
	return tx.Model(&models.ContractModel{}).
		Where("booking_id = ? AND status IN ?", bookingID,
			[]string{models.ContractStatusExecuted, models.ContractStatusActive}).
		Update("status", models.ContractStatusCompleted).Error
}

func (s *Service) emitSignedTx(tx *gorm.DB, c *models.ContractModel, signerRole string) error {
	counterparty := c.BuyerID
	if signerRole == models.RoleBuyer {
		counterparty = c.SellerID
	}

	ev := notify.Event{
		UserID:  counterparty,
		Kind:    models.NotifyContractSigned,
		Title:   models.Localized{EN: "Contract signed", AR: "تم توقيع العقد"},
		Body:    models.Localized{EN: "The other party signed the contract.", AR: "قام الطرف الآخر بتوقيع العقد."},
		RefType: "contract",
		RefID:   c.ID,
	}
	if c.Status == models.ContractStatusExecuted {
		ev.Kind = models.NotifyContractExecuted
		ev.Title = models.Localized{EN: "Contract executed", AR: "تم تنفيذ العقد"}
		ev.Body = models.Localized{EN: "Both parties signed; the contract is now in force.", AR: "وقع الطرفان؛ العقد الآن ساري المفعول."}
	}
	return s.notify.EmitTx(tx, ev)
}

func loadForParty(tx *gorm.DB, contractID, userID string) (*models.ContractModel, string, error) {
	var c models.ContractModel
	if err := tx.First(&c, "id = ?", contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", gorm.ErrRecordNotFound
		}
		return nil, "", err
	}
	switch userID {
	case c.BuyerID:
		return &c, models.RoleBuyer, nil
	case c.SellerID:
		return &c, models.RoleSeller, nil
	default:
		return nil, "", ErrNotParty
	}
}

// recomputeStatus derives Status from the signature timestamps. Post-signing
// states (active, completed) survive as long as both signatures stand.
func recomputeStatus(c *models.ContractModel) {
	bothSigned := c.SignedAtBuyer != nil && c.SignedAtSeller != nil
	if bothSigned {
		if c.Status == models.ContractStatusActive || c.Status == models.ContractStatusCompleted {
			return
		}
		c.Status = models.ContractStatusExecuted
		return
	}
	if c.SignedAtBuyer != nil {
		c.Status = models.ContractStatusPendingSeller
		return
	}
	if c.SignedAtSeller != nil {
		c.Status = models.ContractStatusPendingBuyer
		return
	}
	c.Status = models.ContractStatusPendingSeller
}

func signatureHash(contractID, userID string, version int, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%s",
		contractID, userID, version, at.UTC().Format(time.RFC3339Nano))))
	return hex.EncodeToString(sum[:])
}
