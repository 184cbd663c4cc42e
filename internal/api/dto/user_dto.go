package dto

import "github.com/spec-kit/reimbursement-service/internal/domain"

// UserRegisterRequest payload for new users. Group defaults to EMPLOYEE.
type UserRegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Group    string `json:"group"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserSuspendRequest payload for suspending or reactivating an account.
type UserSuspendRequest struct {
	UserID    int64 `json:"user_id"`
	Suspended *bool `json:"suspended"`
}

// UserProfile is returned by register and suspend.
type UserProfile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Group    string `json:"group"`
}

// LoginResponse carries the profile and a bearer token.
type LoginResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Group    string `json:"group"`
	Token    string `json:"token"`
}

// UserListItem is one row of the account list.
type UserListItem struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Suspended bool   `json:"suspended"`
	CreatedAt string `json:"createdAt"`
}

// NewUserProfile maps an account to its public profile.
func NewUserProfile(u *domain.User) UserProfile {
	return UserProfile{Username: u.Username, Email: u.Email, Group: string(u.Role)}
}

// NewUserListItem maps an account to a list row.
func NewUserListItem(u *domain.User) UserListItem {
	return UserListItem{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		Suspended: u.Suspended,
		CreatedAt: FormatMinute(u.CreatedAt),
	}
}
