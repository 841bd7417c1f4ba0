package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobboard-backend/internal/database"
	"jobboard-backend/internal/mailer"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
)

// LocalAuthHandler serves the credential endpoints.
type LocalAuthHandler struct {
	DB        *database.DBinstanceStruct
	Tokens    *TokenCodec
	Blacklist JwtBlacklistStore
	Mailer    mailer.Mailer
	HashCost  int
	OTPTTL    time.Duration

	now func() time.Time
}

// NewLocalAuthHandler creates a handler. A nil mailer logs reset codes instead of sending them.
func NewLocalAuthHandler(
	db *database.DBinstanceStruct,
	tokens *TokenCodec,
	bl JwtBlacklistStore,
	m mailer.Mailer,
	hashCost int,
	otpTTL time.Duration,
) *LocalAuthHandler {
	if m == nil {
		m = mailer.NewLogMailer(slog.Default())
	}
	return &LocalAuthHandler{
		DB:        db,
		Tokens:    tokens,
		Blacklist: bl,
		Mailer:    m,
		HashCost:  hashCost,
		OTPTTL:    otpTTL,
		now:       time.Now,
	}
}

type signUpResponse struct {
	Msg  string     `json:"msg"`
	User model.User `json:"user"`
}

type tokenResponse struct {
	Msg   string `json:"msg"`
	Token string `json:"token"`
}

type passwordChangedResponse struct {
	Msg   string     `json:"msg"`
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// SignUp registers a new identity. The email must not be in use.
// @Summary Register a new user
// @Tags Users
// @Accept json
// @Produce json
// @Param Info body SignUpRequest true "role may be 'user' or 'company_HR'"
// @Success 201 {object} signUpResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid request"
// @Failure 409 {object} utilities.ErrorResponse "User already exists"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users [post]
func (lh *LocalAuthHandler) SignUp(c *gin.Context) {
	var info SignUpRequest
	if !bindJSON(c, &info) {
		return
	}

	var existing model.User
	err := lh.DB.WithContext(c.Request.Context()).Where("email = ?", info.Email).First(&existing).Error
	switch {
	case err == nil:
		utilities.Fail(c, utilities.NewConflict("User already exists"))
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Do nothing
	default:
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password, lh.HashCost)
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	role := info.Role
	if role == "" {
		role = model.RoleUser
	}

	user := model.User{
		FirstName:     info.FirstName,
		LastName:      info.LastName,
		Password:      hashedPassword,
		Email:         info.Email,
		RecoveryEmail: info.RecoveryEmail,
		DOB:           info.DOB,
		MobileNumber:  info.MobileNumber,
		Role:          role,
	}
	if err := lh.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if utilities.IsUniqueViolation(err) {
			utilities.Fail(c, utilities.NewConflict("User already exists"))
			return
		}
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	c.JSON(http.StatusCreated, signUpResponse{Msg: "User added successfully", User: user})
}

// SignIn authenticates by email, recovery email or mobile number, marks the
// identity online and issues a token.
// @Summary Sign in
// @Description identifier may be the email, the recovery email or the mobile number
// @Tags Users
// @Accept json
// @Produce json
// @Param Info body SignInRequest true "Credentials"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} utilities.ErrorResponse "User Not Found"
// @Failure 401 {object} utilities.ErrorResponse "Invalid Password"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users/signIn [post]
func (lh *LocalAuthHandler) SignIn(c *gin.Context) {
	var info SignInRequest
	if !bindJSON(c, &info) {
		return
	}

	user, err := lh.authenticate(c, info.Identifier, info.Password)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	if err := lh.DB.WithContext(c.Request.Context()).
		Model(&user).
		Update("status", model.StatusOnline).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	accessToken, _, err := lh.Tokens.Issue(user)
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Msg: "done", Token: accessToken})
}

// authenticate resolves the identifier and checks the password. Recovery
// emails may be shared, so every candidate is tried; an exact email or mobile
// match is tried first.
func (lh *LocalAuthHandler) authenticate(c *gin.Context, identifier, password string) (model.User, error) {
	var candidates []model.User
	if err := lh.DB.WithContext(c.Request.Context()).
		Where("email = ? OR mobile_number = ? OR recovery_email = ?", identifier, identifier, identifier).
		Order("created_at").
		Find(&candidates).Error; err != nil {
		return model.User{}, utilities.NewInternal(err)
	}
	if len(candidates) == 0 {
		return model.User{}, utilities.NewBadRequest("User Not Found")
	}

	ordered := make([]model.User, 0, len(candidates))
	for _, u := range candidates {
		if u.Email == identifier || u.MobileNumber == identifier {
			ordered = append(ordered, u)
		}
	}
	for _, u := range candidates {
		if u.Email != identifier && u.MobileNumber != identifier {
			ordered = append(ordered, u)
		}
	}

	for _, u := range ordered {
		ok, err := utilities.VerifyPassword(password, u.Password)
		if err != nil {
			// a corrupt digest is an authentication failure, never a leak
			slog.WarnContext(c.Request.Context(), "unreadable password digest", "user", u.ID, "error", err)
			continue
		}
		if ok {
			return u, nil
		}
	}
	return model.User{}, utilities.NewUnauthorized("Invalid Password")
}

// SignOut revokes the presented token and marks the identity offline.
// @Summary Sign out
// @Tags Users
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users/signOut [post]
func (lh *LocalAuthHandler) SignOut(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}
	claims, err := ClaimsFrom(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	if err := lh.Blacklist.AddToBlacklist(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	if err := lh.DB.WithContext(c.Request.Context()).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("status", model.StatusOffline).Error; err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Msg: "done"})
}

// ChangePassword replaces the requester's password after checking the
// current one. Tokens issued before the change stop working; a fresh token
// is returned.
// @Summary Change password
// @Tags Users
// @Accept json
// @Produce json
// @Param token header string true "Insert your access token" default(viri__<your access token>)
// @Param Info body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} passwordChangedResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid Password"
// @Failure 404 {object} utilities.ErrorResponse "User not found or not authorized"
// @Failure 500 {object} utilities.ErrorResponse "Internal server error"
// @Router /users/changePassword [patch]
func (lh *LocalAuthHandler) ChangePassword(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewUnauthorized(err.Error()))
		return
	}

	var info ChangePasswordRequest
	if !bindJSON(c, &info) {
		return
	}

	ok, err := utilities.VerifyPassword(info.CurrentPassword, user.Password)
	if err != nil || !ok {
		utilities.Fail(c, utilities.NewUnauthorized("Invalid Password"))
		return
	}

	hashedPassword, err := utilities.HashPassword(info.NewPassword, lh.HashCost)
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	changedAt := lh.now()
	res := lh.DB.WithContext(c.Request.Context()).
		Model(&model.User{}).
		Where("id = ? AND password = ?", user.ID, user.Password).
		Updates(map[string]any{"password": hashedPassword, "password_changed_at": changedAt})
	if res.Error != nil {
		utilities.Fail(c, utilities.NewInternal(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		// password changed concurrently
		utilities.Fail(c, utilities.NewNotFoundOrUnauthorized("User"))
		return
	}
	user.Password = hashedPassword
	user.PasswordChangedAt = &changedAt

	accessToken, _, err := lh.Tokens.Issue(user)
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}

	c.JSON(http.StatusOK, passwordChangedResponse{Msg: "done", User: user, Token: accessToken})
}
