package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider names an external service a user can link.
type Provider string

const (
	ProviderGithub Provider = "github"
	ProviderTravis Provider = "travis"
	ProviderHeroku Provider = "heroku"
)

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGithub, ProviderTravis, ProviderHeroku:
		return true
	}
	return false
}

// ExternalCredential links a user to an account on an external provider.
// Identity is the provider-side handle (github username, heroku email).
type ExternalCredential struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_user_provider"`
	Provider  Provider  `json:"provider" gorm:"type:varchar(20);not null;uniqueIndex:idx_user_provider"`
	Identity  string    `json:"identity" gorm:"size:255"`
	Token     string    `json:"-" gorm:"size:500"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (ExternalCredential) TableName() string { return "external_credentials" }

// BeforeCreate sets UUID before creating the record.
func (c *ExternalCredential) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// MaskToken returns the token with everything but its edges hidden.
func (c *ExternalCredential) MaskToken() string {
	if len(c.Token) <= 8 {
		return "****"
	}
	return c.Token[:4] + "****" + c.Token[len(c.Token)-4:]
}
