package postgres

import "time"

// UserCredential is the stored API key of one Discord user.
type UserCredential struct {
	UserID    string    `gorm:"primaryKey;type:varchar(32)"`
	APIKey    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (UserCredential) TableName() string {
	return "user_credentials"
}

// TOSAcceptance marks a user that accepted the terms of service.
type TOSAcceptance struct {
	UserID     string    `gorm:"primaryKey;type:varchar(32)"`
	AcceptedAt time.Time `gorm:"autoCreateTime"`
}

func (TOSAcceptance) TableName() string {
	return "tos_acceptances"
}
