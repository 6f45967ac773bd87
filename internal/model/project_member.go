package model

import "time"

// Role is the kind of membership a user holds on a project.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleContributor Role = "contributor"
)

// ProjectMember is a (user, project, role) edge. A user may hold both an
// owner and a contributor edge on the same project, never two of one role.
type ProjectMember struct {
	ProjectID string    `json:"project_id" gorm:"type:varchar(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);primaryKey;index"`
	Role      Role      `json:"role" gorm:"type:varchar(20);primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Project *Project `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	User    *User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (ProjectMember) TableName() string { return "project_members" }
