package dto

import "github.com/shopspring/decimal"

type RecordOdometerInput struct {
	TenantID  string
	VehicleID string
	Km        float64
	DriverID  string
}

type CloseAlertInput struct {
	TenantID    string
	AlertID     string
	WorkOrderID string
	ActualCost  *decimal.Decimal
}
