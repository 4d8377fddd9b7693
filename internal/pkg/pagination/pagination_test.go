package pagination

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type item struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func setup(t *testing.T, rows int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&item{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for i := 0; i < rows; i++ {
		if err := db.Create(&item{Name: fmt.Sprintf("item-%d", i)}).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func TestPaginateWindowsResults(t *testing.T) {
	db := setup(t, 5)

	var out []item
	page, err := Paginate(db.Model(&item{}), Query{Page: 2, Size: 2}, &out)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if page.Total != 5 || page.TotalPage != 3 || page.CurrentPage != 2 {
		t.Fatalf("unexpected metadata: %+v", page)
	}
	if !page.HasNextPage {
		t.Fatal("expected HasNextPage on page 2 of 3")
	}

	out = nil
	page, err = Paginate(db.Model(&item{}), Query{Page: 3, Size: 2}, &out)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(out) != 1 || page.HasNextPage {
		t.Fatalf("expected final page of 1 row without next, got %d rows %+v", len(out), page)
	}
}

func TestFromContextClampsSize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=0&size=500", nil)

	q := FromContext(c)
	if q.Page != 1 {
		t.Fatalf("expected page clamped to 1, got %d", q.Page)
	}
	if q.Size != MaxSize {
		t.Fatalf("expected size clamped to %d, got %d", MaxSize, q.Size)
	}

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest("GET", "/?size=junk", nil)
	if q := FromContext(c2); q.Size != DefaultSize {
		t.Fatalf("expected default size %d, got %d", DefaultSize, q.Size)
	}
}
