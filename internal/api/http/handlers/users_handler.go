package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/api/dto"
	"github.com/spec-kit/reimbursement-service/internal/service"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// UsersHandler exposes registration, login and account administration.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Register handles POST /api/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidParameter("Invalid register data")
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Group:    req.Group,
	})
	if err != nil {
		return orStoreError(err, apperrors.NewStoreInsertError, "Registration failed")
	}
	return ok(c, dto.NewUserProfile(user))
}

// Login handles POST /api/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidParameter("Invalid login data")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewInvalidCredentials()
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return orStoreError(err, apperrors.NewStoreQueryError, "Login failed")
	}
	return ok(c, dto.LoginResponse{
		Username: result.User.Username,
		Email:    result.User.Email,
		Group:    string(result.User.Role),
		Token:    result.Token,
	})
}

// List handles GET /api/user/list.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}

	users, err := h.users.ListUsers(c.UserContext(), caller.ID)
	if err != nil {
		return orStoreError(err, apperrors.NewStoreQueryError, "Query user list failed")
	}
	items := make([]dto.UserListItem, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserListItem(&users[i]))
	}
	return ok(c, items)
}

// Suspend handles PUT /api/user/suspend.
func (h *UsersHandler) Suspend(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req dto.UserSuspendRequest
	if err := c.BodyParser(&req); err != nil || req.UserID <= 0 || req.Suspended == nil {
		return apperrors.NewInvalidParameter("Invalid suspend data")
	}

	user, err := h.users.SuspendUser(c.UserContext(), caller, req.UserID, *req.Suspended)
	if err != nil {
		return orStoreError(err, apperrors.NewStoreUpdateError, "Suspend user failed")
	}
	return ok(c, dto.NewUserProfile(user))
}
