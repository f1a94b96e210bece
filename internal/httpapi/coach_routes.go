package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aaronromeo/fitcoach/internal/auth"
	"github.com/aaronromeo/fitcoach/internal/id"
	"github.com/aaronromeo/fitcoach/internal/llm"
	"github.com/aaronromeo/fitcoach/internal/metrics"
	"github.com/aaronromeo/fitcoach/internal/workout"
)

// Coach is the set of callable operations served over HTTP. *llm.Client
// implements it.
type Coach interface {
	GenerateWorkoutProgram(ctx context.Context, who *auth.Identity, in workout.ProgramRequest) (workout.ProgramResponse, error)
	GetExerciseRecommendation(ctx context.Context, who *auth.Identity, in workout.RecommendationRequest) (workout.RecommendationResponse, error)
	AnalyzeProgression(ctx context.Context, who *auth.Identity, in workout.ProgressionRequest) (workout.AnalysisResponse, error)
}

func registerCoach(app *fiber.App, d Deps) {
	app.Post("/"+string(llm.OpGenerateProgram), callable(d, llm.OpGenerateProgram, d.Coach.GenerateWorkoutProgram))
	app.Post("/"+string(llm.OpRecommendExercise), callable(d, llm.OpRecommendExercise, d.Coach.GetExerciseRecommendation))
	app.Post("/"+string(llm.OpAnalyzeProgress), callable(d, llm.OpAnalyzeProgress, d.Coach.AnalyzeProgression))
}

type callableRequest struct {
	Data json.RawMessage `json:"data"`
}

// callable adapts an operation to the {"data": ...} / {"result": ...} wire shape.
func callable[In, Out any](d Deps, op llm.Operation, fn func(context.Context, *auth.Identity, In) (Out, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		log := requestLogger(c, d.Logger).With("op", op)

		in, ok := decodeData[In](c.Body())
		if !ok {
			d.Metrics.Observe(string(op), metrics.OutcomeBadRequest, time.Since(started))
			return writeError(c, http.StatusBadRequest, "INVALID_ARGUMENT", "Bad Request")
		}

		ctx := c.UserContext()
		if rid, ok := c.Locals(requestIDKey).(string); ok {
			ctx = id.WithRequestID(ctx, rid)
		}

		// Failures are logged by the operation itself.
		out, err := fn(ctx, identity(c), in)
		if err != nil {
			kind := llm.KindOf(err)
			d.Metrics.Observe(string(op), kind.String(), time.Since(started))
			if kind == llm.KindUnauthenticated {
				return writeError(c, http.StatusUnauthorized, "UNAUTHENTICATED", llm.PublicMessage(err))
			}
			return writeError(c, http.StatusInternalServerError, "INTERNAL", llm.PublicMessage(err))
		}

		d.Metrics.Observe(string(op), metrics.OutcomeOK, time.Since(started))
		log.Info("callable ok", "elapsed", time.Since(started))
		return c.JSON(fiber.Map{"result": out})
	}
}

func decodeData[In any](body []byte) (In, bool) {
	var in In
	var req callableRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return in, false
	}
	data := bytes.TrimSpace(req.Data)
	if len(data) == 0 || data[0] != '{' {
		return in, false
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, false
	}
	return in, true
}
