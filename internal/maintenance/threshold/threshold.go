// Package threshold maps distance-to-maintenance and task category to alert
// level, type, priority and a 0-100 priority score. Pure functions, no I/O.
package threshold

import (
	"strings"

	"github.com/fekuna/fleetops-maintenance-service/internal/model"
)

// HorizonKm is the early-warning horizon: no alert exists for tasks further
// out than this.
const HorizonKm = 2000

type Category string

const (
	CategoryCriticalSafety Category = "CRITICAL_SAFETY"
	CategoryMajorComponent Category = "MAJOR_COMPONENT"
	CategoryRoutine        Category = "ROUTINE"
	CategoryMinor          Category = "MINOR"
)

var categoryWeights = map[Category]float64{
	CategoryCriticalSafety: 30,
	CategoryMajorComponent: 20,
	CategoryRoutine:        10,
	CategoryMinor:          5,
}

var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{CategoryCriticalSafety, []string{"brake", "tire", "wheel", "steering", "suspension"}},
	{CategoryMajorComponent, []string{"engine", "transmission", "clutch", "turbo"}},
	{CategoryRoutine, []string{"oil", "filter", "lubricant", "fluid"}},
}

// InferCategory classifies a maintenance task by keywords in its name.
func InferCategory(name string) Category {
	lower := strings.ToLower(name)
	for _, group := range categoryKeywords {
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				return group.category
			}
		}
	}
	return CategoryMinor
}

type Result struct {
	Level         model.AlertLevel
	Type          model.AlertType
	Priority      model.AlertPriority
	PriorityScore float64
}

// InHorizon reports whether an alert should exist at all for the given
// distance.
func InHorizon(kmToMaintenance float64) bool {
	return kmToMaintenance <= HorizonKm
}

// Classify is deterministic and idempotent for identical inputs.
func Classify(kmToMaintenance float64, category Category) Result {
	return Result{
		Level:         levelFor(kmToMaintenance),
		Type:          typeFor(kmToMaintenance),
		Priority:      priorityFor(kmToMaintenance, category),
		PriorityScore: scoreFor(kmToMaintenance, category),
	}
}

func levelFor(km float64) model.AlertLevel {
	switch {
	case km <= 0:
		return model.AlertLevelCritical
	case km <= 500:
		return model.AlertLevelHigh
	case km <= 1000:
		return model.AlertLevelMedium
	default:
		return model.AlertLevelLow
	}
}

func typeFor(km float64) model.AlertType {
	switch {
	case km <= 0:
		return model.AlertTypeOverdue
	case km > 1000:
		return model.AlertTypeEarlyWarning
	default:
		return model.AlertTypePreventive
	}
}

func priorityFor(km float64, category Category) model.AlertPriority {
	switch category {
	case CategoryCriticalSafety:
		switch {
		case km <= 500:
			return model.AlertPriorityUrgent
		case km <= 1000:
			return model.AlertPriorityHigh
		default:
			return model.AlertPriorityMedium
		}
	case CategoryMajorComponent:
		switch {
		case km <= 0:
			return model.AlertPriorityUrgent
		case km <= 500:
			return model.AlertPriorityHigh
		case km <= 1000:
			return model.AlertPriorityMedium
		default:
			return model.AlertPriorityLow
		}
	default:
		switch {
		case km <= 0:
			return model.AlertPriorityHigh
		case km <= 500:
			return model.AlertPriorityMedium
		default:
			return model.AlertPriorityLow
		}
	}
}

func scoreFor(km float64, category Category) float64 {
	score := 40 - km/50
	if score < 0 {
		score = 0
	}
	score += categoryWeights[category]
	if km <= 0 {
		score += 30
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
