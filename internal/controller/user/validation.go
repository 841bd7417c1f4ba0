package user

import "jobboard-backend/internal/validation"

// UpdateUserRequest edits the requester's own account. Empty fields are left unchanged.
type UpdateUserRequest struct {
	ID            string `json:"id" binding:"required,objectid"`
	FirstName     string `json:"firstName" binding:"omitempty,min=4,max=20"`
	LastName      string `json:"lastName" binding:"omitempty,min=4,max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	RecoveryEmail string `json:"recoveryEmail" binding:"omitempty,email"`
	DOB           string `json:"DOB" binding:"omitempty,datetime=2006-01-02"`
	MobileNumber  string `json:"mobileNumber" binding:"omitempty,mobile"`
}

// DeleteUserRequest names the account to delete.
type DeleteUserRequest struct {
	ID string `json:"id" binding:"required,objectid"`
}

// UserIDParams is the path of GET /users/:id.
type UserIDParams struct {
	ID string `uri:"id" binding:"required,objectid"`
}

// ProfileParams is the path of GET /users/profile/:userId.
type ProfileParams struct {
	UserID string `uri:"userId" binding:"required,objectid"`
}

// RecoveryEmailParams is the path of GET /users/recoveryEmailAccounts/:recoveryEmail.
type RecoveryEmailParams struct {
	RecoveryEmail string `uri:"recoveryEmail" binding:"required,email"`
}

// Route schemas
var (
	UpdateUserSchema    = validation.Schema{Body: UpdateUserRequest{}}
	DeleteUserSchema    = validation.Schema{Body: DeleteUserRequest{}}
	GetUserSchema       = validation.Schema{Params: UserIDParams{}}
	ProfileSchema       = validation.Schema{Params: ProfileParams{}}
	RecoveryEmailSchema = validation.Schema{Params: RecoveryEmailParams{}}
)
