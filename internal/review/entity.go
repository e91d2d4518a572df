// AngelaMos | 2026
// entity.go

package review

import (
	"time"
)

type Review struct {
	ID          string    `db:"id"`
	OwnerUserID string    `db:"owner_user_id"`
	CompanyName string    `db:"company_name"`
	Industry    string    `db:"industry"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// KPIInput is one raw measurement. (review_id, kpi_id) is unique;
// re-entering a KPI overwrites the previous value.
type KPIInput struct {
	ID        string    `db:"id"`
	ReviewID  string    `db:"review_id"`
	KPIID     string    `db:"kpi_id"`
	Value     float64   `db:"value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Score is a persisted scoring result, also unique per
// (review_id, kpi_id); rescoring overwrites.
type Score struct {
	ID        string    `db:"id"`
	ReviewID  string    `db:"review_id"`
	KPIID     string    `db:"kpi_id"`
	Pillar    string    `db:"pillar"`
	RawValue  float64   `db:"raw_value"`
	Score     int       `db:"score"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FinancialRaw is one audit line from a financial statement upload.
// Values stay as text so the audit trail shows exactly what came in.
type FinancialRaw struct {
	ID        string    `db:"id"`
	ReviewID  string    `db:"review_id"`
	Metric    string    `db:"metric"`
	Value     string    `db:"value"`
	CreatedAt time.Time `db:"created_at"`
}
