package team

import (
	"fmt"
	"strings"
)

// Team is a club identified by its name inside a league. Rows are written
// once during ingestion and never updated.
type Team struct {
	ID      int64
	Name    string
	League  string
	Country string
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if strings.TrimSpace(t.League) == "" {
		return fmt.Errorf("team league is required")
	}

	return nil
}
