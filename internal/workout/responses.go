package workout

import "encoding/json"

// Envelopes wrap the provider's JSON verbatim.

type ProgramResponse struct {
	Success     bool            `json:"success"`
	Program     json.RawMessage `json:"program"`
	GeneratedAt string          `json:"generatedAt"`
}

type RecommendationResponse struct {
	Success        bool            `json:"success"`
	Recommendation json.RawMessage `json:"recommendation"`
	Timestamp      string          `json:"timestamp"`
}

type AnalysisResponse struct {
	Success    bool            `json:"success"`
	Analysis   json.RawMessage `json:"analysis"`
	AnalyzedAt string          `json:"analyzedAt"`
}

// The types below document what the prompts ask the model to return. They are
// only used to derive advisory JSON schemas; answers are never decoded into them.

type WorkoutProgram struct {
	WeeklySchedule        []ScheduledSession         `json:"weeklySchedule"`
	SessionTemplates      map[string]SessionTemplate `json:"sessionTemplates"`
	ProgressionGuidelines ProgressionGuidelines      `json:"progressionGuidelines"`
}

type ScheduledSession struct {
	Day         string `json:"day"`
	SessionType string `json:"sessionType"`
	Focus       string `json:"focus"`
}

type SessionTemplate struct {
	Exercises   []TemplateExercise `json:"exercises"`
	TotalVolume string             `json:"totalVolume"`
	Duration    string             `json:"duration"`
}

type TemplateExercise struct {
	Name     string `json:"name"`
	Sets     string `json:"sets"`
	Reps     string `json:"reps"`
	Priority string `json:"priority"`
}

type ProgressionGuidelines struct {
	WeightProgression string `json:"weightProgression"`
	DeloadWeek        string `json:"deloadWeek"`
}

type Recommendation struct {
	Exercise         RecommendedExercise `json:"exercise"`
	Reasoning        string              `json:"reasoning"`
	ProgressionNotes string              `json:"progressionNotes"`
	Alternatives     []string            `json:"alternatives"`
}

type RecommendedExercise struct {
	Name            string  `json:"name"`
	TargetSets      int     `json:"targetSets"`
	TargetReps      string  `json:"targetReps"`
	SuggestedWeight float64 `json:"suggestedWeight"`
	MuscleGroup     string  `json:"muscleGroup"`
	Angle           string  `json:"angle"`
}

type ProgressionAnalysis struct {
	OverallProgression  string              `json:"overallProgression" jsonschema:"enum=Excellente,enum=Bonne,enum=Stagnante,enum=Régressive"`
	PlateausDetected    []Plateau           `json:"plateausDetected"`
	Recommendations     []Adjustment        `json:"recommendations"`
	NextWeekAdjustments NextWeekAdjustments `json:"nextWeekAdjustments"`
}

type Plateau struct {
	Exercise string `json:"exercise"`
	Since    string `json:"since"`
	Reason   string `json:"reason"`
}

type Adjustment struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type NextWeekAdjustments struct {
	VolumeChange    string `json:"volumeChange"`
	IntensityChange string `json:"intensityChange"`
	SuggestedDeload bool   `json:"suggestedDeload"`
}
