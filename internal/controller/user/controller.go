// Package user provides HTTP handlers for account related operations.
package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard-backend/internal/database"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
)

// UserController handles account endpoints other than credentials.
type UserController struct {
	DB *database.DBinstanceStruct
}

// NewUserController creates a new instance of UserController
func NewUserController(db *database.DBinstanceStruct) *UserController {
	return &UserController{
		DB: db,
	}
}

type userResponse struct {
	Msg  string     `json:"msg"`
	User model.User `json:"user"`
}

type profileResponse struct {
	Msg  string              `json:"msg"`
	User model.PublicProfile `json:"user"`
}

type profilesResponse struct {
	Msg   string                `json:"msg"`
	Users []model.PublicProfile `json:"users"`
}

// UpdateUser edits the requester's account. The id in the body must be the
// requester's own; any other id is reported as not found.
// @Summary Update own account
// @Tags Users
// @Accept json
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param Info body UpdateUserRequest true "Fields to change"
// @Success 200 {object} userResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid request"
// @Failure 404 {object} utilities.ErrorResponse "User not found or not authorized"
// @Failure 409 {object} utilities.ErrorResponse "Email or mobile number already in use"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users [patch]
func (uc *UserController) UpdateUser(c *gin.Context) {
	requester, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var info UpdateUserRequest
	if err := c.ShouldBindBodyWith(&info, binding.JSON); err != nil {
		utilities.Fail(c, utilities.NewValidationError([]string{err.Error()}))
		return
	}

	updates := map[string]any{"updated_at": time.Now()}
	for column, value := range map[string]string{
		"first_name":     info.FirstName,
		"last_name":      info.LastName,
		"email":          info.Email,
		"recovery_email": info.RecoveryEmail,
		"dob":            info.DOB,
		"mobile_number":  info.MobileNumber,
	} {
		if value != "" {
			updates[column] = value
		}
	}

	var updated model.User
	res := uc.DB.WithContext(c.Request.Context()).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ? AND id = ?", info.ID, requester.ID).
		Updates(updates)
	if res.Error != nil {
		if utilities.IsUniqueViolation(res.Error) {
			utilities.Fail(c, utilities.NewConflict("Email or mobile number already in use"))
			return
		}
		utilities.Fail(c, utilities.NewInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("User"))
		return
	}
	updated.Username = updated.FirstName + updated.LastName

	c.JSON(http.StatusOK, userResponse{Msg: "done", User: updated})
}

// DeleteUser deletes the requester's account with everything it owns.
// @Summary Delete own account
// @Tags Users
// @Accept json
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param Info body DeleteUserRequest true "Own account id"
// @Success 200 {object} userResponse
// @Failure 404 {object} utilities.ErrorResponse "User not found or not authorized"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users [delete]
func (uc *UserController) DeleteUser(c *gin.Context) {
	requester, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var info DeleteUserRequest
	if err := c.ShouldBindBodyWith(&info, binding.JSON); err != nil {
		utilities.Fail(c, utilities.NewValidationError([]string{err.Error()}))
		return
	}

	var deleted model.User
	res := uc.DB.WithContext(c.Request.Context()).
		Clauses(clause.Returning{}).
		Where("id = ? AND id = ?", info.ID, requester.ID).
		Delete(&deleted)
	if res.Error != nil {
		utilities.Fail(c, utilities.NewInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("User"))
		return
	}
	deleted.Username = deleted.FirstName + deleted.LastName

	c.JSON(http.StatusOK, userResponse{Msg: "done", User: deleted})
}

// GetUser returns an account by id.
// @Summary Get account by id
// @Tags Users
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param id path string true "User id"
// @Success 200 {object} userResponse
// @Failure 404 {object} utilities.ErrorResponse "User not found"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users/{id} [get]
func (uc *UserController) GetUser(c *gin.Context) {
	user, ok := uc.find(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, userResponse{Msg: "Done", User: user})
}

// GetProfile returns the public view of an account. No token is needed.
// @Summary Get public profile
// @Tags Users
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {object} profileResponse
// @Failure 404 {object} utilities.ErrorResponse "User not found"
// @Router /users/profile/{userId} [get]
func (uc *UserController) GetProfile(c *gin.Context) {
	user, ok := uc.find(c, c.Param("userId"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profileResponse{Msg: "done", User: user.Profile()})
}

func (uc *UserController) find(c *gin.Context, id string) (model.User, bool) {
	var user model.User
	if err := uc.DB.WithContext(c.Request.Context()).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utilities.Fail(c, utilities.NewNotFound("User not found"))
			return user, false
		}
		utilities.Fail(c, utilities.NewInternal(err))
		return user, false
	}
	return user, true
}

// GetRecoveryEmailAccounts lists the public profiles sharing a recovery email.
// @Summary List accounts by recovery email
// @Tags Users
// @Produce json
// @Param recoveryEmail path string true "Recovery email"
// @Success 200 {object} profilesResponse
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users/recoveryEmailAccounts/{recoveryEmail} [get]
func (uc *UserController) GetRecoveryEmailAccounts(c *gin.Context) {
	var users []model.User
	if err := uc.DB.WithContext(c.Request.Context()).
		Where("recovery_email = ?", c.Param("recoveryEmail")).
		Order("created_at").
		Find(&users).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	profiles := make([]model.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	c.JSON(http.StatusOK, profilesResponse{Msg: "done", Users: profiles})
}
