package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Job enumerations
const (
	LocationOnsite   = "onsite"
	LocationRemotely = "remotely"
	LocationHybrid   = "hybrid"

	WorkingFullTime = "fullTime"
	WorkingPartTime = "partTime"
)

// SeniorityLevels lists every accepted seniority.
var SeniorityLevels = []string{"junior", "Mid-Level", "senior", "Team-Lead", "CTO"}

// Job is owned by the identity that posted it. CompanyID, when set, points
// at a company owned by the same identity.
type Job struct {
	ID              string         `gorm:"type:char(24);primaryKey" json:"id"`
	JobTitle        string         `gorm:"type:text;not null" json:"jobTitle"`
	JobLocation     string         `gorm:"type:text;not null;check:job_location IN ('onsite','remotely','hybrid')" json:"jobLocation"`
	WorkingTime     string         `gorm:"type:text;not null;check:working_time IN ('fullTime','partTime')" json:"workingTime"`
	SeniorityLevel  string         `gorm:"type:text;not null" json:"seniorityLevel"`
	JobDescription  string         `gorm:"type:text" json:"jobDescription"`
	TechnicalSkills pq.StringArray `gorm:"type:text[]" json:"technicalSkills"`
	SoftSkills      pq.StringArray `gorm:"type:text[]" json:"softSkills"`

	AddedByID string `gorm:"column:added_by_id;type:char(24);not null;index;<-:create" json:"addedBy"`
	AddedBy   User   `gorm:"foreignKey:AddedByID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	CompanyID *string  `gorm:"type:char(24);index" json:"companyId"`
	Company   *Company `gorm:"foreignKey:CompanyID;references:ID;constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an id when the caller did not.
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = NewID()
	}
	return nil
}

// JobsOf scopes a job query to co's jobs: those referencing co, plus those
// without a company reference posted by co's owner.
func JobsOf(co Company) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ? OR (company_id IS NULL AND added_by_id = ?)", co.ID, co.CompanyHRID)
	}
}
