package house

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

type House struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null"`
	InviteCode string    `gorm:"size:8;not null;uniqueIndex"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

type HouseMember struct {
	HouseID  string    `gorm:"type:uuid;primaryKey"`
	UserID   string    `gorm:"type:uuid;primaryKey;index"`
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`

	House House `gorm:"foreignKey:HouseID;references:ID;constraint:OnDelete:CASCADE"`
}
