package api

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"fundtracker.org/internal/workflow"
)

// Money decodes the backend's decimal money fields, which arrive as
// JSON numbers or quoted strings depending on the serializer.
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = 0
		return nil
	}
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("api: malformed amount %s: %w", data, err)
		}
		if unquoted == "" {
			*m = 0
			return nil
		}
		data = []byte(unquoted)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("api: malformed amount %s: %w", data, err)
	}
	*m = Money(v)
	return nil
}

// Project is a public-works project. List and detail responses share
// this shape; funds and progress are embedded when present.
type Project struct {
	ID          int64                     `json:"id"`
	Name        string                    `json:"name"`
	Location    string                    `json:"location"`
	Ministry    string                    `json:"ministry"`
	Contractor  string                    `json:"contractor"`
	TotalBudget Money                     `json:"total_budget"`
	StartDate   string                    `json:"start_date"`
	EndDate     string                    `json:"end_date"`
	Funds       []Fund                    `json:"funds,omitempty"`
	Progress    []workflow.ProgressRecord `json:"progress,omitempty"`
}

// Fund is one released tranche against a project.
type Fund struct {
	ID         int64     `json:"id"`
	Project    int64     `json:"project"`
	Amount     Money     `json:"amount"`
	ReleasedAt time.Time `json:"released_at"`
}

// FundsReleased sums the tranches embedded in a project.
func (p Project) FundsReleased() Money {
	var total Money
	for _, f := range p.Funds {
		total += f.Amount
	}
	return total
}

// LatestProgress returns the most recent embedded progress record.
func (p Project) LatestProgress() (workflow.ProgressRecord, bool) {
	if len(p.Progress) == 0 {
		return workflow.ProgressRecord{}, false
	}
	return p.Progress[len(p.Progress)-1], true
}

// Material is a construction material registered against a project.
type Material struct {
	ID         int64  `json:"id"`
	Project    int64  `json:"project"`
	Name       string `json:"name"`
	Supplier   string `json:"supplier,omitempty"`
	Quantity   Money  `json:"quantity"`
	UnitCost   Money  `json:"unit_cost"`
	Verified   bool   `json:"verified"`
	VerifiedBy string `json:"verified_by_username,omitempty"`
}

// AuditEntry is one row of the backend's append-only activity trail.
type AuditEntry struct {
	ID          int64     `json:"id"`
	Username    string    `json:"user_username,omitempty"`
	Action      string    `json:"action"`
	ModelName   string    `json:"model_name"`
	ObjectID    int64     `json:"object_id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}
