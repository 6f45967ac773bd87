package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a collaboratively maintained software project.
//
// Authors is a display string set by clients. It is independent of the
// owner and contributor edges in ProjectMember.
type Project struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ProjectName string    `json:"project_name" gorm:"size:255;not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	Version     string    `json:"version" gorm:"size:64"`
	License     string    `json:"license" gorm:"size:64"`
	Authors     string    `json:"authors" gorm:"size:1024"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Members []ProjectMember `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets a UUID when the caller did not choose an id.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
