package models

import "time"

// Role values for UserModel.Role.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// UserModel represents a marketplace account (buyer, seller or admin).
type UserModel struct {
	Base
	Email         string     `json:"email"           gorm:"uniqueIndex;not null"`
	Phone         string     `json:"phone"           gorm:"index"`
	Password      string     `json:"-"               gorm:"not null"`
	Role          string     `json:"role"            gorm:"index;not null;default:buyer"`
	DisplayName   Localized  `json:"display_name"    gorm:"type:json"`
	Bio           Localized  `json:"bio"             gorm:"type:json"`
	Avatar        string     `json:"avatar"`
	PushToken     string     `json:"-"               gorm:"column:push_token"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`

	Profile *SellerProfileModel `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }

// SellerProfileModel holds seller-only attributes: offered categories,
// service radius and weekly availability.
type SellerProfileModel struct {
	Base
	UserID            string      `json:"-"                  gorm:"uniqueIndex;not null"`
	ServiceCategories StringArray `json:"service_categories" gorm:"type:json"`
	ServiceRadiusKM   int         `json:"service_radius_km"  gorm:"default:25"`
	Availability      JSONMap     `json:"availability"       gorm:"type:json"` // weekday → [{from,to}]
	RatingAvg         float64     `json:"rating_avg"         gorm:"default:0"`
	RatingCount       int         `json:"rating_count"       gorm:"default:0"`
}

func (SellerProfileModel) TableName() string { return "seller_profiles" }

// AddressModel is a saved user address. At most one row per user carries
// IsDefault=true; the address service swaps the flag transactionally.
type AddressModel struct {
	Base
	UserID    string  `json:"-"          gorm:"index;not null"`
	Label     string  `json:"label"`
	City      string  `json:"city"`
	District  string  `json:"district"`
	Street    string  `json:"street"`
	Building  string  `json:"building"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsDefault bool    `json:"is_default" gorm:"index;default:false"`
}

func (AddressModel) TableName() string { return "user_addresses" }
