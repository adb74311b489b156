package model

import "time"

type Vehicle struct {
	BaseModel
	TenantID       string     `db:"tenant_id" json:"tenant_id"`
	LicensePlate   string     `db:"license_plate" json:"license_plate"` // unique per tenant
	Make           string     `db:"make" json:"make"`
	Model          string     `db:"model" json:"model"`
	Year           int        `db:"year" json:"year"`
	CurrentKm      float64    `db:"current_km" json:"current_km"`
	LastOdometerAt *time.Time `db:"last_odometer_at" json:"last_odometer_at"`
	IsActive       bool       `db:"is_active" json:"is_active"`
}
