package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Application is a job application. It is immutable once created.
type Application struct {
	ID string `gorm:"type:char(24);primaryKey" json:"id"`

	JobID string `gorm:"type:char(24);not null;uniqueIndex:idx_application_job_user" json:"jobId"`
	Job   Job    `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	UserID string `gorm:"type:char(24);not null;uniqueIndex:idx_application_job_user;index" json:"userId"`
	User   *User  `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user,omitempty"`

	UserTechSkills pq.StringArray `gorm:"type:text[]" json:"userTechSkills"`
	UserSoftSkills pq.StringArray `gorm:"type:text[]" json:"userSoftSkills"`
	UserResume     string         `gorm:"type:text;not null" json:"userResume"`

	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns an id when the caller did not.
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}
