// Package workout holds the request payloads, response envelopes and the
// documented shapes of the coaching answers.
package workout

import "encoding/json"

// DefaultFocusGroups is rendered when a program request names no focus.
const DefaultFocusGroups = "Équilibré"

type ProgramRequest struct {
	Objective string `json:"objective"`
	Level     string `json:"level"`
	// Frequency is sessions per week, rendered as sent (4, 4.0 or "4").
	Frequency   json.RawMessage `json:"frequency,omitempty"`
	SplitType   string          `json:"splitType"`
	FocusGroups string          `json:"focusGroups,omitempty"`
}

// Focus returns the requested focus groups or DefaultFocusGroups.
func (r ProgramRequest) Focus() string {
	if r.FocusGroups == "" {
		return DefaultFocusGroups
	}
	return r.FocusGroups
}

type UserProfile struct {
	Objective string `json:"objective"`
	Level     string `json:"level"`
	SplitType string `json:"splitType,omitempty"`
}

type CurrentSession struct {
	Type               string   `json:"type"`
	ExercisesDone      []string `json:"exercisesDone"`
	MuscleGroupsWorked []string `json:"muscleGroupsWorked"`
}

type RecentTrends struct {
	Last4WeeksVolume float64 `json:"last4WeeksVolume"`
	// ProgressionRate is whatever the client computed (a number or a label).
	ProgressionRate json.RawMessage `json:"progressionRate,omitempty"`
	PlateauDetected bool            `json:"plateauDetected"`
}

// RecommendationRequest carries the in-session state. ExerciseHistory maps an
// exercise name to its ordered {date, sets, reps, weight} records; it is kept
// raw so the prompt reproduces the caller's key order.
//
// The profile, session and trends groups are required; a nil group means the
// caller omitted it or sent null.
type RecommendationRequest struct {
	UserProfile     *UserProfile    `json:"userProfile"`
	CurrentSession  *CurrentSession `json:"currentSession"`
	ExerciseHistory json.RawMessage `json:"exerciseHistory,omitempty"`
	RecentTrends    *RecentTrends   `json:"recentTrends"`
}

// Missing names the first absent required group, or "" when all are present.
func (r RecommendationRequest) Missing() string {
	switch {
	case r.UserProfile == nil:
		return "userProfile"
	case r.CurrentSession == nil:
		return "currentSession"
	case r.RecentTrends == nil:
		return "recentTrends"
	}
	return ""
}

type ProgressionRequest struct {
	UserProfile     *UserProfile    `json:"userProfile"`
	ExerciseHistory json.RawMessage `json:"exerciseHistory,omitempty"`
	WeeklyStats     json.RawMessage `json:"weeklyStats,omitempty"`
}

func (r ProgressionRequest) Missing() string {
	if r.UserProfile == nil {
		return "userProfile"
	}
	return ""
}
