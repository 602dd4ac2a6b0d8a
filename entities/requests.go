package entities

import "github.com/questforge/gateway/app_errors"

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignUpRequest) Validate() error {
	if r.Email == "" {
		return app_errors.Validation("email is required")
	}
	if r.Password == "" {
		return app_errors.Validation("password is required")
	}
	return nil
}

type LogInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LogInRequest) Validate() error {
	if r.Email == "" {
		return app_errors.Validation("email is required")
	}
	if r.Password == "" {
		return app_errors.Validation("password is required")
	}
	return nil
}

// CreateProfileRequest deliberately has no xp field: a fresh profile
// always starts at zero no matter what the client sends.
type CreateProfileRequest struct {
	UserId string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (r *CreateProfileRequest) Validate() error {
	if r.UserId == "" {
		return app_errors.Validation("user_id is required")
	}
	if r.Name == "" {
		return app_errors.Validation("name is required")
	}
	if r.Role == "" {
		return app_errors.Validation("role is required")
	}
	return nil
}

// AddXpRequest carries the xp delta as a pointer so a missing field can
// be told apart from an explicit zero. Negative deltas are accepted.
type AddXpRequest struct {
	UserId string `json:"user_id"`
	Xp     *int   `json:"xp"`
}

func (r *AddXpRequest) Validate() error {
	if r.UserId == "" {
		return app_errors.Validation("user_id is required")
	}
	if r.Xp == nil {
		return app_errors.Validation("xp is required")
	}
	return nil
}

type AddXpResponse struct {
	Xp int `json:"xp"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}
