package contract

import (
	"testing"

	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/modules/notify"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setup(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.UserModel{},
		&models.BookingModel{},
		&models.ContractModel{},
		&models.BindingTermsModel{},
		&models.ContractSignatureModel{},
		&models.NotificationModel{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := zap.NewNop()
	return NewService(db, notify.NewService(db, nil, nil, log), log), db
}

func seedContract(t *testing.T, svc *Service, db *gorm.DB) *models.ContractModel {
	t.Helper()
	booking := models.BookingModel{
		BuyerID:  "buyer-1",
		SellerID: "seller-1",
		Status:   models.BookingStatusContractPending,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	c := models.ContractModel{
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		BookingID: booking.ID,
		Price:     450,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.CreateInTx(tx, &c, &TermsInput{
			WarrantyMonths: 6,
			MaterialsBy:    "seller",
			ScopeOfWork:    models.Localized{EN: "Full AC service"},
		})
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return &c
}

func reload(t *testing.T, db *gorm.DB, id string) *models.ContractModel {
	t.Helper()
	var c models.ContractModel
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		t.Fatalf("reload contract: %v", err)
	}
	return &c
}

func assertInvariant(t *testing.T, c *models.ContractModel) {
	t.Helper()
	bothSigned := c.SignedAtBuyer != nil && c.SignedAtSeller != nil
	executedish := c.Status == models.ContractStatusExecuted ||
		c.Status == models.ContractStatusActive ||
		c.Status == models.ContractStatusCompleted
	if executedish != bothSigned {
		t.Fatalf("invariant broken: status=%s buyer=%v seller=%v",
			c.Status, c.SignedAtBuyer, c.SignedAtSeller)
	}
}

func TestCreateWritesContractAndTermsTogether(t *testing.T) {
	svc, db := setup(t)
	c := seedContract(t, svc, db)

	if c.Status != models.ContractStatusPendingSeller {
		t.Errorf("status = %q", c.Status)
	}

	var terms models.BindingTermsModel
	if err := db.First(&terms, "contract_id = ?", c.ID).Error; err != nil {
		t.Fatalf("binding terms row missing: %v", err)
	}
	if terms.WarrantyMonths != 6 || terms.MaterialsBy != "seller" {
		t.Errorf("terms = %+v", terms)
	}

	var notifications int64
	db.Model(&models.NotificationModel{}).Where("ref_id = ?", c.ID).Count(&notifications)
	if notifications != 2 {
		t.Errorf("expected 2 notifications, got %d", notifications)
	}
}

func TestSigningBothPartiesExecutes(t *testing.T) {
	svc, db := setup(t)
	c := seedContract(t, svc, db)

	afterBuyer, err := svc.Sign(c.ID, "buyer-1")
	if err != nil {
		t.Fatalf("buyer sign: %v", err)
	}
	assertInvariant(t, afterBuyer)
	if afterBuyer.Status != models.ContractStatusPendingSeller {
		t.Errorf("after buyer sign status = %q", afterBuyer.Status)
	}

	afterSeller, err := svc.Sign(c.ID, "seller-1")
	if err != nil {
		t.Fatalf("seller sign: %v", err)
	}
	assertInvariant(t, afterSeller)
	if afterSeller.Status != models.ContractStatusExecuted {
		t.Errorf("after both sign status = %q", afterSeller.Status)
	}

	// Execution releases the booking into the work phase.
	var booking models.BookingModel
	db.First(&booking, "id = ?", afterSeller.BookingID)
	if booking.Status != models.BookingStatusInProgress {
		t.Errorf("booking status = %q, want in_progress", booking.Status)
	}

	var audits []models.ContractSignatureModel
	db.Where("contract_id = ?", c.ID).Order("version").Find(&audits)
	if len(audits) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(audits))
	}
	if audits[0].Event != models.SignatureEventSigned || audits[0].SignatureHash == "" {
		t.Errorf("audit 0 = %+v", audits[0])
	}
}

func TestDoubleSignBySameParty(t *testing.T) {
	svc, db := setup(t)
	c := seedContract(t, svc, db)

	if _, err := svc.Sign(c.ID, "buyer-1"); err != nil {
		t.Fatalf("first sign: %v", err)
	}
	if _, err := svc.Sign(c.ID, "buyer-1"); err != ErrAlreadySigned {
		t.Fatalf("second sign err = %v, want ErrAlreadySigned", err)
	}
	assertInvariant(t, reload(t, db, c.ID))
}

func TestWithdrawBeforeSellerSignsReverts(t *testing.T) {
	svc, db := setup(t)
	c := seedContract(t, svc, db)

	if _, err := svc.Sign(c.ID, "buyer-1"); err != nil {
		t.Fatalf("sign: %v", err)
	}
	withdrawn, err := svc.Withdraw(c.ID, "buyer-1")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn.SignedAtBuyer != nil {
		t.Error("buyer timestamp not cleared")
	}
	if withdrawn.Status != models.ContractStatusPendingSeller {
		t.Errorf("status = %q", withdrawn.Status)
	}
	assertInvariant(t, withdrawn)

	// Withdrawal appends to the audit trail, it never erases it.
	var audits []models.ContractSignatureModel
	db.Where("contract_id = ?", c.ID).Order("version").Find(&audits)
	if len(audits) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(audits))
	}
	if audits[1].Event != models.SignatureEventWithdrawn {
		t.Errorf("last audit event = %q", audits[1].Event)
	}
}

func TestWithdrawAfterSellerSignsIsNoOp(t *testing.T) {
	svc, db := setup(t)
	c := seedContract(t, svc, db)

	if _, err := svc.Sign(c.ID, "buyer-1"); err != nil {
		t.Fatalf("buyer sign: %v", err)
	}
	if _, err := svc.Sign(c.ID, "seller-1"); err != nil {
		t.Fatalf("seller sign: %v", err)
	}

	before := reload(t, db, c.ID)
	if _, err := svc.Withdraw(c.ID, "buyer-1"); err != ErrWithdrawLocked {
		t.Fatalf("withdraw err = %v, want ErrWithdrawLocked", err)
	}

	after := reload(t, db, c.ID)
	if after.Status != before.Status || after.Version != before.Version {
		t.Errorf("withdraw after seller sign mutated the contract: %+v -> %+v", before, after)
	}
	if after.SignedAtBuyer == nil || after.SignedAtSeller == nil {
		t.Error("signature timestamps were touched")
	}
	assertInvariant(t, after)
}

func TestWithdrawWithoutSignature(t *testing.T) {
	svc, db := setup(t)
	c := seedContract(t, svc, db)

	if _, err := svc.Withdraw(c.ID, "buyer-1"); err != ErrNotWithdrawable {
		t.Fatalf("err = %v, want ErrNotWithdrawable", err)
	}
	if _, err := svc.Withdraw(c.ID, "seller-1"); err != ErrNotParty {
		t.Fatalf("seller withdraw err = %v, want ErrNotParty", err)
	}
	assertInvariant(t, reload(t, db, c.ID))
}

func TestStrangerCannotSign(t *testing.T) {
	svc, db := setup(t)
	c := seedContract(t, svc, db)

	if _, err := svc.Sign(c.ID, "someone-else"); err != ErrNotParty {
		t.Fatalf("err = %v, want ErrNotParty", err)
	}
	assertInvariant(t, reload(t, db, c.ID))
}

func TestLifecycleMarksKeepInvariant(t *testing.T) {
	svc, db := setup(t)
	c := seedContract(t, svc, db)

	if _, err := svc.Sign(c.ID, "buyer-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Sign(c.ID, "seller-1"); err != nil {
		t.Fatal(err)
	}

	if err := svc.MarkActiveInTx(db, c.BookingID); err != nil {
		t.Fatalf("mark active: %v", err)
	}
	active := reload(t, db, c.ID)
	if active.Status != models.ContractStatusActive {
		t.Errorf("status = %q, want active", active.Status)
	}
	assertInvariant(t, active)

	if err := svc.MarkCompletedInTx(db, c.BookingID); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	done := reload(t, db, c.ID)
	if done.Status != models.ContractStatusCompleted {
		t.Errorf("status = %q, want completed", done.Status)
	}
	assertInvariant(t, done)
}
