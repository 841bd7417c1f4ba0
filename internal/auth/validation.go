package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
	"jobboard-backend/internal/validation"
)

// SignUpRequest is the registration body.
type SignUpRequest struct {
	FirstName     string     `json:"firstName" binding:"required,min=4,max=20"`
	LastName      string     `json:"lastName" binding:"required,min=4,max=20"`
	Password      string     `json:"password" binding:"required,password"`
	Email         string     `json:"email" binding:"required,email"`
	RecoveryEmail string     `json:"recoveryEmail" binding:"omitempty,email"`
	DOB           string     `json:"DOB" binding:"required,datetime=2006-01-02"`
	MobileNumber  string     `json:"mobileNumber" binding:"required,mobile"`
	Role          model.Role `json:"role" binding:"omitempty,oneof=user company_HR"`
}

// SignInRequest accepts email, recovery email or mobile number as identifier.
type SignInRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required,password"`
}

// ChangePasswordRequest is the authenticated password change body.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required,password"`
	NewPassword     string `json:"newPassword" binding:"required,password,nefield=CurrentPassword"`
}

// ResetRequest starts the OTP reset protocol.
type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyNewPassRequest completes the OTP reset protocol.
type VerifyNewPassRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,password"`
}

// Route schemas
var (
	SignUpSchema         = validation.Schema{Body: SignUpRequest{}}
	SignInSchema         = validation.Schema{Body: SignInRequest{}}
	SignOutSchema        = validation.Schema{}
	ChangePasswordSchema = validation.Schema{Body: ChangePasswordRequest{}}
	ResetSchema          = validation.Schema{Body: ResetRequest{}}
	VerifyNewPassSchema  = validation.Schema{Body: VerifyNewPassRequest{}}
)

// bindJSON re-binds a body the validator already checked. It also covers
// handlers mounted without the validator.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		utilities.Fail(c, utilities.NewValidationError([]string{err.Error()}))
		return false
	}
	return true
}
