// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"gorm.io/gorm"
)

// User is the identity record. Password and reset state never leave the server.
type User struct {
	ID            string `gorm:"type:char(24);primaryKey" json:"id"`
	FirstName     string `gorm:"type:text;not null" json:"firstName"`
	LastName      string `gorm:"type:text;not null" json:"lastName"`
	Username      string `gorm:"-" json:"username"`
	Password      string `gorm:"type:text;not null" json:"-"`
	Email         string `gorm:"type:text;uniqueIndex;not null" json:"email"`
	RecoveryEmail string `gorm:"type:text;index" json:"recoveryEmail"`
	DOB           string `gorm:"column:dob;type:text;not null" json:"DOB"`
	MobileNumber  string `gorm:"type:text;uniqueIndex;not null" json:"mobileNumber"`
	Role          Role   `gorm:"type:text;not null;default:'user';check:role IN ('user','company_HR','admin')" json:"role"`
	Status        Status `gorm:"type:text;not null;default:'offline';check:status IN ('online','offline')" json:"status"`

	ResetPasswordOTP        *string    `gorm:"column:reset_password_otp;type:text" json:"-"`
	ResetPasswordOTPExpires *time.Time `gorm:"column:reset_password_otp_expires" json:"-"`
	PasswordChangedAt       *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an id when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.Status == "" {
		u.Status = StatusOffline
	}
	u.Username = u.FirstName + u.LastName
	return nil
}

// AfterFind fills the derived username.
func (u *User) AfterFind(tx *gorm.DB) error {
	u.Username = u.FirstName + u.LastName
	return nil
}

// PublicProfile is the subset of a user exposed to other identities.
type PublicProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Status    Status `json:"status"`
}

// Profile returns the public view of u.
func (u User) Profile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.FirstName + u.LastName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
	}
}
