package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProgramItemStatus string

const (
	ProgramItemPending   ProgramItemStatus = "PENDING"
	ProgramItemCompleted ProgramItemStatus = "COMPLETED"
	ProgramItemCancelled ProgramItemStatus = "CANCELLED"
)

// MaintenanceProgram is a vehicle's active package of scheduled tasks.
type MaintenanceProgram struct {
	BaseModel
	TenantID  string `db:"tenant_id" json:"tenant_id"`
	VehicleID string `db:"vehicle_id" json:"vehicle_id"`
	Name      string `db:"name" json:"name"`
	IsActive  bool   `db:"is_active" json:"is_active"`
}

// MaintenanceProgramItem is one scheduled task instance at a given mileage.
type MaintenanceProgramItem struct {
	BaseModel
	TenantID      string            `db:"tenant_id" json:"tenant_id"`
	ProgramID     string            `db:"program_id" json:"program_id"`
	Name          string            `db:"name" json:"name"`
	ScheduledKm   *float64          `db:"scheduled_km" json:"scheduled_km"` // Nullable
	Status        ProgramItemStatus `db:"status" json:"status"`
	EstimatedCost *decimal.Decimal  `db:"estimated_cost" json:"estimated_cost"`
	ExecutedKm    *float64          `db:"executed_km" json:"executed_km"`
	ExecutedDate  *time.Time        `db:"executed_date" json:"executed_date"`
}

type AlertLevel string

const (
	AlertLevelLow      AlertLevel = "LOW"
	AlertLevelMedium   AlertLevel = "MEDIUM"
	AlertLevelHigh     AlertLevel = "HIGH"
	AlertLevelCritical AlertLevel = "CRITICAL"
)

type AlertType string

const (
	AlertTypeEarlyWarning AlertType = "EARLY_WARNING"
	AlertTypePreventive   AlertType = "PREVENTIVE"
	AlertTypeOverdue      AlertType = "OVERDUE"
)

type AlertPriority string

const (
	AlertPriorityLow    AlertPriority = "LOW"
	AlertPriorityMedium AlertPriority = "MEDIUM"
	AlertPriorityHigh   AlertPriority = "HIGH"
	AlertPriorityUrgent AlertPriority = "URGENT"
)

type AlertStatus string

const (
	AlertPending      AlertStatus = "PENDING"
	AlertAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertSnoozed      AlertStatus = "SNOOZED"
	AlertCompleted    AlertStatus = "COMPLETED"
	AlertClosed       AlertStatus = "CLOSED"
)

// OpenAlertStatuses are the non-terminal states. At most one alert per
// program item may be in any of them.
var OpenAlertStatuses = []AlertStatus{AlertPending, AlertAcknowledged, AlertSnoozed}

func (s AlertStatus) IsTerminal() bool {
	return s == AlertCompleted || s == AlertClosed
}

type MaintenanceAlert struct {
	BaseModel
	TenantID            string           `db:"tenant_id" json:"tenant_id"`
	VehicleID           string           `db:"vehicle_id" json:"vehicle_id"`
	ProgramItemID       string           `db:"program_item_id" json:"program_item_id"`
	WorkOrderID         *string          `db:"work_order_id" json:"work_order_id"` // Nullable until work starts
	WorkOrderCreatedAt  *time.Time       `db:"work_order_created_at" json:"work_order_created_at"`
	CurrentKm           float64          `db:"current_km" json:"current_km"`
	CurrentKmAtCreation float64          `db:"current_km_at_creation" json:"current_km_at_creation"`
	ScheduledKm         float64          `db:"scheduled_km" json:"scheduled_km"`
	KmToMaintenance     float64          `db:"km_to_maintenance" json:"km_to_maintenance"` // signed: negative = overdue
	Level               AlertLevel       `db:"level" json:"level"`
	Type                AlertType        `db:"type" json:"type"`
	Priority            AlertPriority    `db:"priority" json:"priority"`
	PriorityScore       float64          `db:"priority_score" json:"priority_score"`
	Status              AlertStatus      `db:"status" json:"status"`
	EstimatedCost       *decimal.Decimal `db:"estimated_cost" json:"estimated_cost"`
	ClosedAt            *time.Time       `db:"closed_at" json:"closed_at"`
	WasOnTime           *bool            `db:"was_on_time" json:"was_on_time"`
	ResponseTimeMinutes *float64         `db:"response_time_minutes" json:"response_time_minutes"`
	CompletionTimeHours *float64         `db:"completion_time_hours" json:"completion_time_hours"`
	CostVariance        *decimal.Decimal `db:"cost_variance" json:"cost_variance"`
}
