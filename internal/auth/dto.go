package auth

import (
	"errors"
	"strings"
)

type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return ValidationError{Message: "email is required"}
	}
	if !strings.Contains(d.Email, "@") {
		return ValidationError{Message: "email is invalid"}
	}
	if d.Password == "" {
		return ValidationError{Message: "password is required"}
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return errors.New("refresh_token is required")
	}
	return nil
}

type PortalLoginDTO struct {
	Email     string `json:"email"`
	AccessKey string `json:"access_key"`
}

func (d PortalLoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return ValidationError{Message: "email is required"}
	}
	if d.AccessKey == "" {
		return ValidationError{Message: "access_key is required"}
	}
	return nil
}
