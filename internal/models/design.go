package models

import "time"

// Difficulty levels reported by the reasoning model
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// RequestUnderstanding is the structured intent returned by the reasoning model
type RequestUnderstanding struct {
	UserGoal              string                 `json:"userGoal"`
	TechnicalRequirements []string               `json:"technicalRequirements"`
	SafetyConsiderations  []string               `json:"safetyConsiderations"`
	RecommendedApproach   string                 `json:"recommendedApproach"`
	EstimatedDifficulty   string                 `json:"estimatedDifficulty"`
	EstimatedCost         float64                `json:"estimatedCost"`
	RequiredComponents    []ComponentRequirement `json:"requiredComponents"`
	EducationalPoints     []string               `json:"educationalPoints"`
}

// ComponentRequirement names a part the design needs and why
type ComponentRequirement struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	LCSCID  string `json:"jlcpcbId"`
}

// DesignSpec is the concrete bill of components and connections to realize
type DesignSpec struct {
	Schematic            Schematic          `json:"schematic"`
	BOM                  []BOMItem          `json:"bom"`
	AssemblyInstructions []string           `json:"assemblyInstructions"`
	SafetyNotes          []string           `json:"safetyNotes"`
	EducationalContent   EducationalContent `json:"educationalContent"`
}

// Schematic groups the placeable parts of a design
type Schematic struct {
	Components  []ComponentSpec  `json:"components"`
	Connections []ConnectionSpec `json:"connections"`
	PowerSupply PowerSupplySpec  `json:"powerSupply"`
}

// Point is a schematic canvas coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ComponentSpec describes one part to place on the schematic
type ComponentSpec struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Value       string  `json:"value"`
	Unit        string  `json:"unit"`
	LCSCID      string  `json:"jlcpcbId"`
	Position    Point   `json:"position"`
	Rotation    float64 `json:"rotation"`
	Explanation string  `json:"explanation"`
}

// PinRef addresses a pin on a placed component
type PinRef struct {
	Component string `json:"component"`
	Pin       string `json:"pin"`
}

// ConnectionSpec describes one wire; Path is a polyline of [x, y] pairs
type ConnectionSpec struct {
	From PinRef      `json:"from"`
	To   PinRef      `json:"to"`
	Net  string      `json:"net"`
	Path [][]float64 `json:"path"`
}

// PowerSupplySpec describes how the circuit is powered
type PowerSupplySpec struct {
	Voltage   float64 `json:"voltage"`
	Current   float64 `json:"current"`
	Connector string  `json:"connector"`
}

// BOMItem is one line of the bill of materials
type BOMItem struct {
	Designator string  `json:"designator"`
	LCSCID     string  `json:"jlcpcbId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	InStock    bool    `json:"inStock"`
}

// EducationalContent carries the teaching material attached to a design
type EducationalContent struct {
	Concepts     []string             `json:"concepts"`
	Calculations []CalculationExample `json:"calculations"`
}

// CalculationExample is a worked formula shown to the learner
type CalculationExample struct {
	Title       string `json:"title"`
	Formula     string `json:"formula"`
	Explanation string `json:"explanation"`
}

// CircuitImplementation is the result of applying a spec to the host editor.
// Screenshot is the only field replaced after construction, once, after an
// improvement pass.
type CircuitImplementation struct {
	ComponentIDs []string   `json:"componentIds"`
	WireIDs      []string   `json:"wireIds"`
	Screenshot   Screenshot `json:"screenshot"`
	Success      bool       `json:"success"`
}

// Validation quality tiers
const (
	QualityExcellent        = "excellent"
	QualityGood             = "good"
	QualityNeedsImprovement = "needsImprovement"
)

// Issue and suggestion severities
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Improvement actions
const (
	ActionMove    = "move"
	ActionRotate  = "rotate"
	ActionReplace = "replace"
)

// ValidationResult is the vision model's judgement of the rendered circuit
type ValidationResult struct {
	NeedsImprovement bool                    `json:"needsImprovement"`
	Quality          string                  `json:"quality"`
	Score            float64                 `json:"score"`
	Strengths        []string                `json:"strengths"`
	Issues           []ValidationIssue       `json:"issues"`
	Suggestions      []ImprovementSuggestion `json:"suggestions"`
	LearningPoints   []string                `json:"learningPoints"`
	BeginnerFriendly bool                    `json:"beginnerFriendly"`
}

// ValidationIssue is a single problem spotted in the screenshot
type ValidationIssue struct {
	Severity    string `json:"severity"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
	Educational string `json:"educational"`
}

// ImprovementSuggestion is an edit the vision model proposes
type ImprovementSuggestion struct {
	Component   string   `json:"component"`
	Action      string   `json:"action"`
	NewPosition *Point   `json:"newPosition,omitempty"`
	NewRotation *float64 `json:"newRotation,omitempty"`
	Reason      string   `json:"reason"`
	Severity    string   `json:"severity,omitempty"`
}

// BeginnerExplanation is the learner-facing summary of a design
type BeginnerExplanation struct {
	Markdown     string `json:"markdown"`
	HTMLRendered string `json:"htmlRendered"`
}

// DesignResponse is the terminal payload returned to the caller and the UI.
// Improvements is nil unless an improvement cycle ran.
type DesignResponse struct {
	Success        bool                    `json:"success"`
	Design         *CircuitImplementation  `json:"design"`
	Explanation    BeginnerExplanation     `json:"explanation"`
	VisualAnalysis *ValidationResult       `json:"visualAnalysis"`
	Improvements   []ImprovementSuggestion `json:"improvements,omitempty"`
}

// Message is one turn of the reasoning conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationContext is supplied by the UI alongside each request
type ConversationContext struct {
	PreviousMessages []Message     `json:"previousMessages,omitempty"`
	CurrentDocument  *DocumentInfo `json:"currentDocument,omitempty"`
}

// DocumentInfo identifies the schematic open in the editor
type DocumentInfo struct {
	UUID  string `json:"uuid"`
	Title string `json:"title"`
}

// DesignState is the most recent completed run kept by the orchestrator
type DesignState struct {
	RunID          string                 `json:"runId"`
	UserInput      string                 `json:"userInput"`
	Understanding  *RequestUnderstanding  `json:"understanding"`
	Spec           *DesignSpec            `json:"spec"`
	Implementation *CircuitImplementation `json:"implementation"`
	Response       *DesignResponse        `json:"response"`
	CompletedAt    time.Time              `json:"completedAt"`
}
