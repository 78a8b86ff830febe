package models

import (
	"strings"
	"time"

	dErrors "gatepass/pkg/domain-errors"
)

// Gate is a named physical checkpoint. Existence is the only thing gate
// access validation ever asks of this entity.
type Gate struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *Gate) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "gate name is required")
	}
	return nil
}
