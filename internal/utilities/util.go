// Package utilities contain utility code that use across the package
package utilities

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobboard-backend/internal/model"
)

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Msg   string `json:"msg"`
	Error any    `json:"error,omitempty"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Msg string `json:"msg"`
}

// ExtractUser extracts the user model from Gin context.
// It does not abort the request; instead returns an error when missing/invalid.
func ExtractUser(c *gin.Context) (model.User, error) {
	u, _ := c.Get("user")
	if u == nil {
		return model.User{}, errors.New("User information not provided")
	}

	user, ok := u.(model.User)
	if !ok {
		return model.User{}, errors.New("Failed to assert type")
	}
	return user, nil
}

// AdminInfo is what is needed to seed an admin-like identity.
type AdminInfo struct {
	Email        string
	Password     string
	MobileNumber string
	Cost         int
}

// placeholderMobile turns the random half of id into a 15 digit number, so
// admins created without a mobile number do not share one.
func placeholderMobile(id string) string {
	tail, _ := strconv.ParseUint(id[len(id)-12:], 16, 64)
	return fmt.Sprintf("%015d", tail)
}

// CreateAdmin creates an admin identity unless one with the same email exists.
// Without a mobile number it gets a placeholder derived from its id.
func CreateAdmin(db *gorm.DB, info AdminInfo) (model.User, error) {
	var existing model.User
	err := db.Where("email = ?", info.Email).First(&existing).Error
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return model.User{}, err
	}

	hashedPassword, err := HashPassword(info.Password, info.Cost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id := model.NewID()
	mobile := info.MobileNumber
	if mobile == "" {
		mobile = placeholderMobile(id)
	}

	admin := model.User{
		ID:            id,
		FirstName:     "admin",
		LastName:      "admin",
		Email:         info.Email,
		RecoveryEmail: info.Email,
		DOB:           "1970-01-01",
		MobileNumber:  mobile,
		Password:      hashedPassword,
		Role:          model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return model.User{}, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}
