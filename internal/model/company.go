package model

import (
	"time"

	"gorm.io/gorm"
)

// EmployeeRange is the employee-count bracket of a company.
type EmployeeRange string

// EmployeeRanges lists every accepted bracket.
var EmployeeRanges = []EmployeeRange{"1-10", "11-20", "21-50", "51-100", "101-200", "201-500", "501-1000", "1000+"}

// Company is owned exclusively by the HR identity that created it.
type Company struct {
	ID                string        `gorm:"type:char(24);primaryKey" json:"id"`
	CompanyName       string        `gorm:"type:text;not null;index" json:"companyName"`
	Description       string        `gorm:"type:text" json:"description"`
	Industry          string        `gorm:"type:text" json:"industry"`
	Address           string        `gorm:"type:text" json:"address"`
	NumberOfEmployees EmployeeRange `gorm:"type:text;not null" json:"numberOfEmployees"`
	CompanyEmail      string        `gorm:"type:text;uniqueIndex;not null" json:"companyEmail"`

	CompanyHRID string `gorm:"column:company_hr_id;type:char(24);not null;index" json:"company_HR"`
	CompanyHR   User   `gorm:"foreignKey:CompanyHRID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an id when the caller did not.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}
