package orchestration

import (
	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

// FallbackPolicy decides what happens when a model call fails.
type FallbackPolicy string

const (
	// FallbackDegrade logs the failure and substitutes the fixed fallback answer.
	FallbackDegrade FallbackPolicy = config.FallbackDegrade
	// FallbackFail propagates the failure and rejects the request.
	FallbackFail FallbackPolicy = config.FallbackFail
)

// DefaultScore is the layout score reported when no real verdict exists.
const DefaultScore = 85

// FallbackUnderstanding is the understanding used when the reasoning call fails.
func FallbackUnderstanding(userInput string) *models.RequestUnderstanding {
	return &models.RequestUnderstanding{
		UserGoal:              userInput,
		TechnicalRequirements: []string{"LED control", "current limiting"},
		SafetyConsiderations:  []string{"overcurrent protection"},
		RecommendedApproach:   "simple LED circuit",
		EstimatedDifficulty:   models.DifficultyBeginner,
		EstimatedCost:         100,
		RequiredComponents: []models.ComponentRequirement{
			{Name: "LED", Purpose: "emits light", LCSCID: "C2286"},
			{Name: "resistor 330 ohm", Purpose: "limits the LED current", LCSCID: "C21190"},
		},
		EducationalPoints: []string{"Ohm's law"},
	}
}

// DefaultValidation is the optimistic verdict used without a screenshot or after a vision failure.
func DefaultValidation() *models.ValidationResult {
	return &models.ValidationResult{
		NeedsImprovement: false,
		Quality:          models.QualityGood,
		Score:            DefaultScore,
		Strengths:        []string{"simple placement"},
		Issues:           []models.ValidationIssue{},
		Suggestions:      []models.ImprovementSuggestion{},
		LearningPoints:   []string{"basic circuit structure"},
		BeginnerFriendly: true,
	}
}
