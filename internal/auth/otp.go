package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
)

const otpDigits = 6

// NewOTP returns a uniformly random 6-digit code without a leading zero.
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()+100000), nil
}

// digestOTP is what gets stored, so a database read never reveals a live code.
func digestOTP(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset issues a reset code and mails it to the account email.
// A new request replaces any earlier code.
// @Summary Request a password reset code
// @Tags Users
// @Accept json
// @Produce json
// @Param Info body ResetRequest true "Account email"
// @Success 200 {object} utilities.MessageResponse "OTP sent successfully"
// @Failure 404 {object} utilities.ErrorResponse "User not found or not authorized"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users/request-Password-Reset [post]
func (lh *LocalAuthHandler) RequestPasswordReset(c *gin.Context) {
	var info ResetRequest
	if !bindJSON(c, &info) {
		return
	}

	ctx := c.Request.Context()
	var user model.User
	if err := lh.DB.WithContext(ctx).Where("email = ?", info.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("User"))
			return
		}
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	otp, err := NewOTP()
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}
	expires := lh.now().Add(lh.OTPTTL)

	if err := lh.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"reset_password_otp":         digestOTP(otp),
			"reset_password_otp_expires": expires,
		}).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	if err := lh.Mailer.SendResetOTP(ctx, user.Email, otp, lh.OTPTTL); err != nil {
		utilities.Fail(c, utilities.NewInternal(fmt.Errorf("failed to send reset code: %w", err)))
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Msg: "OTP sent successfully"})
}

// VerifyNewPassword consumes a reset code and sets the new password. Code
// match, expiry check, password write and code removal are one statement, so
// a code is honoured at most once.
// @Summary Reset password with a code
// @Tags Users
// @Accept json
// @Produce json
// @Param Info body VerifyNewPassRequest true "Email, code and new password"
// @Success 200 {object} utilities.MessageResponse "Password reset successfully"
// @Failure 400 {object} utilities.ErrorResponse "Invalid or expired OTP"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users/verifyNewPass [post]
func (lh *LocalAuthHandler) VerifyNewPassword(c *gin.Context) {
	var info VerifyNewPassRequest
	if !bindJSON(c, &info) {
		return
	}

	hashedPassword, err := utilities.HashPassword(info.NewPassword, lh.HashCost)
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	now := lh.now()
	res := lh.DB.WithContext(c.Request.Context()).
		Model(&model.User{}).
		Where("email = ? AND reset_password_otp = ? AND reset_password_otp_expires > ?",
			info.Email, digestOTP(info.OTP), now).
		Updates(map[string]any{
			"password":                   hashedPassword,
			"reset_password_otp":         gorm.Expr("NULL"),
			"reset_password_otp_expires": gorm.Expr("NULL"),
			"password_changed_at":        now,
		})
	if res.Error != nil {
		utilities.Fail(c, utilities.NewInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utilities.Fail(c, utilities.NewBadRequest("Invalid or expired OTP"))
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Msg: "Password reset successfully"})
}
