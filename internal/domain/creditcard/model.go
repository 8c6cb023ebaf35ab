package creditcard

import "time"

type CreditCard struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	UserID     string    `gorm:"type:uuid;index;not null"`
	Name       string    `gorm:"not null"`
	Brand      string    `gorm:"not null"`
	LastDigits string    `gorm:"size:4;not null"`
	LimitCents int64     `gorm:"not null"`
	ClosingDay int       `gorm:"not null"`
	DueDay     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

type CardInput struct {
	Name       string
	Brand      string
	LastDigits string
	LimitCents int64
	ClosingDay int
	DueDay     int
}
