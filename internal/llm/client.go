package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaronromeo/fitcoach/internal/auth"
	"github.com/aaronromeo/fitcoach/internal/id"
	"github.com/aaronromeo/fitcoach/internal/llm/provider"
	"github.com/aaronromeo/fitcoach/internal/workout"
)

// ISO8601Millis matches JavaScript's Date.prototype.toISOString.
const ISO8601Millis = "2006-01-02T15:04:05.000Z"

func systemPrompt(op Operation) string {
	switch op {
	case OpGenerateProgram:
		return programSystem
	case OpRecommendExercise:
		return recommendationSystem
	default:
		return analysisSystem
	}
}

type Client struct {
	creds    *Credentials
	parser   Parser
	settings Settings
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time
}

type LLMClientOption func(*Client)

func WithCredentials(creds *Credentials) LLMClientOption {
	return func(c *Client) {
		c.creds = creds
	}
}

func WithParser(p Parser) LLMClientOption {
	return func(c *Client) {
		c.parser = p
	}
}

func WithSettings(s Settings) LLMClientOption {
	return func(c *Client) {
		c.settings = s
	}
}

func WithLogger(l *slog.Logger) LLMClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTimeout bounds each provider call. Zero leaves the caller's context
// untouched.
func WithTimeout(d time.Duration) LLMClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithClock(now func() time.Time) LLMClientOption {
	return func(c *Client) {
		c.now = now
	}
}

func New(opts ...LLMClientOption) (*Client, error) {
	c := &Client{
		parser:   JSONParser{},
		settings: DefaultSettings,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.creds == nil {
		return nil, errors.New("llm credentials not configured")
	}
	return c, nil
}

// GenerateWorkoutProgram builds a weekly plan from the user's objectives.
func (c *Client) GenerateWorkoutProgram(ctx context.Context, who *auth.Identity, in workout.ProgramRequest) (workout.ProgramResponse, error) {
	program, err := c.complete(ctx, who, OpGenerateProgram, func() (string, error) {
		return fmt.Sprintf(programUser, in.Objective, in.Level, plainValue(in.Frequency), in.SplitType, in.Focus()), nil
	})
	if err != nil {
		return workout.ProgramResponse{}, err
	}
	return workout.ProgramResponse{Success: true, Program: program, GeneratedAt: c.timestamp()}, nil
}

// GetExerciseRecommendation picks the next exercise for an ongoing session.
func (c *Client) GetExerciseRecommendation(ctx context.Context, who *auth.Identity, in workout.RecommendationRequest) (workout.RecommendationResponse, error) {
	rec, err := c.complete(ctx, who, OpRecommendExercise, func() (string, error) {
		if group := in.Missing(); group != "" {
			return "", fmt.Errorf("missing %s", group)
		}
		return fmt.Sprintf(recommendationUser,
			in.UserProfile.Objective, in.UserProfile.Level, in.UserProfile.SplitType,
			in.CurrentSession.Type,
			compactJSON(in.CurrentSession.ExercisesDone),
			compactJSON(in.CurrentSession.MuscleGroupsWorked),
			indentJSON(in.ExerciseHistory),
			formatNumber(in.RecentTrends.Last4WeeksVolume),
			plainValue(in.RecentTrends.ProgressionRate),
			yesNo(in.RecentTrends.PlateauDetected),
		), nil
	})
	if err != nil {
		return workout.RecommendationResponse{}, err
	}
	return workout.RecommendationResponse{Success: true, Recommendation: rec, Timestamp: c.timestamp()}, nil
}

// AnalyzeProgression reviews multi-week history and suggests adjustments.
func (c *Client) AnalyzeProgression(ctx context.Context, who *auth.Identity, in workout.ProgressionRequest) (workout.AnalysisResponse, error) {
	analysis, err := c.complete(ctx, who, OpAnalyzeProgress, func() (string, error) {
		if group := in.Missing(); group != "" {
			return "", fmt.Errorf("missing %s", group)
		}
		return fmt.Sprintf(analysisUser,
			in.UserProfile.Objective, in.UserProfile.Level,
			indentJSON(in.ExerciseHistory),
			indentJSON(in.WeeklyStats),
		), nil
	})
	if err != nil {
		return workout.AnalysisResponse{}, err
	}
	return workout.AnalysisResponse{Success: true, Analysis: analysis, AnalyzedAt: c.timestamp()}, nil
}

// complete gates on identity, fetches the provider, renders the user prompt,
// sends one completion and parses the answer. Every failure past the identity
// gate is logged here once.
func (c *Client) complete(ctx context.Context, who *auth.Identity, op Operation, render func() (string, error)) (json.RawMessage, error) {
	if who == nil {
		return nil, unauthenticated(op)
	}

	log := c.logger.With("op", op, "uid", who.UID)
	if rid, ok := id.RequestIDFrom(ctx); ok {
		log = log.With("request_id", rid)
	}

	p, err := c.creds.Provider()
	if err != nil {
		log.Error("provider unavailable", "err", err)
		var e *Error
		if errors.As(err, &e) {
			e.Op = op
		}
		return nil, err
	}

	user, err := render()
	if err != nil {
		log.Error("prompt rendering failed", "err", err)
		return nil, internal(op, err)
	}

	system := systemPrompt(op)
	cs := c.settings.Operations[op]
	log = log.With("prompt", id.Fingerprint(system, user))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	out, err := p.Complete(ctx, provider.Request{
		Model:        c.settings.Model,
		Temperature:  cs.Temperature,
		MaxTokens:    cs.MaxTokens,
		SystemPrompt: system,
		UserPrompt:   user,
	})
	if err != nil {
		log.Error("completion failed", "err", err, "elapsed", time.Since(started))
		return nil, internal(op, err)
	}

	parsed, err := c.parser.Parse(op, out)
	if err != nil {
		log.Error("completion parse failed", "err", err, "bytes", len(out))
		return nil, internal(op, err)
	}
	log.Debug("completion ok", "bytes", len(parsed), "elapsed", time.Since(started))
	return parsed, nil
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(ISO8601Millis)
}
