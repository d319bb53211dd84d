package model

import (
	"net/mail"
	"strings"
)

// User — учётная запись полевого сотрудника. Email уникален.
type User struct {
	Meta
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Gender    string `json:"gender"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" {
		return &ValidationError{Field: "first_name", Reason: "is required"}
	}
	if strings.TrimSpace(u.LastName) == "" {
		return &ValidationError{Field: "last_name", Reason: "is required"}
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return &ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}
