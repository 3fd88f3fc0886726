package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/domain"
)

// AuthController handles signup and login for users and organizers.
type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *AuthController) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "an account with this email already exists")
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrForbidden):
		// The two cases are deliberately indistinguishable to the caller.
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid email or password")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "server error")
	}
}

// SignUpUserRequest is the request body for POST /auth/users/signup.
type SignUpUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PhoneNo  string `json:"phone_no"`
}

// Validate implements Validator.
func (s SignUpUserRequest) Validate() []string {
	var errs []string
	if s.FullName == "" {
		errs = append(errs, "full_name is required")
	}
	if s.Email == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginRequest is the request body for the login endpoints.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if l.Email == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// UserAuthResponse is the data payload for user signup and login.
type UserAuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// OrganizerAuthResponse is the data payload for organizer signup and login.
type OrganizerAuthResponse struct {
	Organizer *domain.Organizer `json:"organizer"`
	Token     string            `json:"token"`
}

// SignUpUser godoc
// @Summary Sign up as a user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpUserRequest true "Account details"
// @Success 201 {object} helpers.APIResponse "data contains the user and a bearer token"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/users/signup [post]
func (c *AuthController) SignUpUser(w http.ResponseWriter, r *http.Request) {
	var req SignUpUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, token, err := c.Service.SignUpUser(r.Context(), req.FullName, req.Email, req.Password, req.PhoneNo)
	if err != nil {
		c.writeAuthError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, UserAuthResponse{User: user, Token: token})
}

// LoginUser godoc
// @Summary Log in as a user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse "data contains the user and a bearer token"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/users/login [post]
func (c *AuthController) LoginUser(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, token, err := c.Service.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		c.writeAuthError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UserAuthResponse{User: user, Token: token})
}

// SignUpOrganizerRequest is the request body for POST /auth/organizers/signup.
type SignUpOrganizerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (s SignUpOrganizerRequest) Validate() []string {
	var errs []string
	if s.FullName == "" {
		errs = append(errs, "full_name is required")
	}
	if s.Email == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// SignUpOrganizer godoc
// @Summary Sign up as an organizer
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpOrganizerRequest true "Account details"
// @Success 201 {object} helpers.APIResponse "data contains the organizer and a bearer token"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/organizers/signup [post]
func (c *AuthController) SignUpOrganizer(w http.ResponseWriter, r *http.Request) {
	var req SignUpOrganizerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	organizer, token, err := c.Service.SignUpOrganizer(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		c.writeAuthError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, OrganizerAuthResponse{Organizer: organizer, Token: token})
}

// LoginOrganizer godoc
// @Summary Log in as an organizer
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse "data contains the organizer and a bearer token"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/organizers/login [post]
func (c *AuthController) LoginOrganizer(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	organizer, token, err := c.Service.LoginOrganizer(r.Context(), req.Email, req.Password)
	if err != nil {
		c.writeAuthError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, OrganizerAuthResponse{Organizer: organizer, Token: token})
}
