package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance"
	"github.com/fekuna/fleetops-maintenance-service/internal/maintenance/dto"
	"github.com/fekuna/fleetops-maintenance-service/pkg/broker"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"go.uber.org/zap"
)

// OdometerListener feeds telemetry odometer events into the same path as the
// HTTP odometer endpoint.
type OdometerListener struct {
	consumer *broker.KafkaConsumer
	uc       maintenance.UseCase
	logger   logger.Logger
}

func NewOdometerListener(consumer *broker.KafkaConsumer, uc maintenance.UseCase, log logger.Logger) *OdometerListener {
	return &OdometerListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *OdometerListener) Start(ctx context.Context) {
	l.logger.Info("Starting odometer Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping odometer Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OdometerUpdatedEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   OdometerPayload `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type OdometerPayload struct {
	TenantID  string  `json:"tenant_id"`
	VehicleID string  `json:"vehicle_id"`
	Km        float64 `json:"km"`
	DriverID  string  `json:"driver_id"`
}

func (l *OdometerListener) processMessage(ctx context.Context, value []byte) {
	var event OdometerUpdatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "OdometerUpdated" {
		return
	}

	l.logger.Info("Processing OdometerUpdated event",
		zap.String("vehicle_id", event.Payload.VehicleID),
		zap.Float64("km", event.Payload.Km),
	)

	_, err := l.uc.RecordOdometer(ctx, &dto.RecordOdometerInput{
		TenantID:  event.Payload.TenantID,
		VehicleID: event.Payload.VehicleID,
		Km:        event.Payload.Km,
		DriverID:  event.Payload.DriverID,
	})
	if err != nil {
		l.logger.Error("Failed to record odometer reading from event",
			zap.String("vehicle_id", event.Payload.VehicleID),
			zap.Error(err),
		)
	}
}
