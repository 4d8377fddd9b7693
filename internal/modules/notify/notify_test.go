package notify

import (
	"testing"

	"github.com/baytfix/core/internal/models"
	"github.com/baytfix/core/internal/pkg/pagination"
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
	if err := db.AutoMigrate(&models.UserModel{}, &models.NotificationModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, nil, nil, zap.NewNop()), db
}

func seed(t *testing.T, svc *Service, db *gorm.DB, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return svc.EmitTx(tx, Event{
				UserID: userID,
				Kind:   "booking_update",
				Title:  models.Localized{EN: "Update", AR: "تحديث"},
				Body:   models.Localized{EN: "Something happened", AR: "حدث شيء ما"},
			})
		})
		if err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
}

func TestUnreadLifecycle(t *testing.T) {
	svc, db := setup(t)
	seed(t, svc, db, "u1", 3)
	seed(t, svc, db, "u2", 1)

	count, err := svc.UnreadCount("u1")
	if err != nil || count != 3 {
		t.Fatalf("unread count = %d, err %v", count, err)
	}

	rows, page, err := svc.List("u1", pagination.Query{Page: 1, Size: 10}, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 || page.Total != 3 {
		t.Fatalf("expected 3 unread rows, got %d (total %d)", len(rows), page.Total)
	}

	ok, err := svc.MarkRead("u1", rows[0].ID)
	if err != nil || !ok {
		t.Fatalf("mark read: ok=%v err=%v", ok, err)
	}
	// A second read of the same row reports not-found semantics.
	if ok, _ := svc.MarkRead("u1", rows[0].ID); ok {
		t.Fatal("already-read row should not match again")
	}

	if count, _ := svc.UnreadCount("u1"); count != 2 {
		t.Fatalf("unread after one read = %d", count)
	}

	n, err := svc.MarkAllRead("u1")
	if err != nil || n != 2 {
		t.Fatalf("mark all read = %d, err %v", n, err)
	}
	if count, _ := svc.UnreadCount("u1"); count != 0 {
		t.Fatalf("unread after read-all = %d", count)
	}
	// Other users' feeds are untouched.
	if count, _ := svc.UnreadCount("u2"); count != 1 {
		t.Fatalf("u2 unread = %d", count)
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	svc, db := setup(t)
	seed(t, svc, db, "u1", 1)

	var row models.NotificationModel
	if err := db.First(&row, "user_id = ?", "u1").Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if ok, _ := svc.MarkRead("u2", row.ID); ok {
		t.Fatal("another user must not be able to read-mark the row")
	}
}
