package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=3"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string              `json:"token"`
	User  UserProfileResponse `json:"user"`
}

type UserProfileResponse struct {
	Id              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	HasOpenAIKey    bool      `json:"has_openai_key"`
	HasAnthropicKey bool      `json:"has_anthropic_key"`
	CreatedAt       time.Time `json:"created_at"`
}

// UpdateKeysRequest sets or clears the user's provider credentials. A nil
// field is left untouched; an empty string clears the key.
type UpdateKeysRequest struct {
	OpenAIKey    *string `json:"openai_key"`
	AnthropicKey *string `json:"anthropic_key"`
}
