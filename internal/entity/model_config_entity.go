package entity

import (
	"time"

	"github.com/google/uuid"
)

// ModelConfig is one entry of the model catalog: a model name, the provider
// that serves it and whether it is a reasoning model (reasoning models reject
// a temperature parameter).
type ModelConfig struct {
	Id        uuid.UUID
	Name      string
	Provider  string
	Reasoning bool
	IsActive  bool
	CreatedAt time.Time
}
