package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"quantum-energy-scheduler/internal/api/models"
	"quantum-energy-scheduler/internal/backend"
	"quantum-energy-scheduler/internal/circuit"
	"quantum-energy-scheduler/internal/config"
	"quantum-energy-scheduler/internal/decode"
	"quantum-energy-scheduler/internal/logger"
	"quantum-energy-scheduler/internal/model"
	"quantum-energy-scheduler/internal/optimizer"
	"quantum-energy-scheduler/internal/pipeline"
)

// Override clamps to keep a single request from burning the worker.
const (
	maxRepetitions   = 4
	maxIterationsCap = 200
	maxShots         = 8192
)

// ResultSink receives completed runs; the MQTT publisher implements it.
type ResultSink interface {
	Publish(run *pipeline.Run)
}

// OptimizeHandler runs the optimization pipeline for API requests.
type OptimizeHandler struct {
	engine *pipeline.Engine
	tuning config.Tuning
	sink   ResultSink
	log    *logger.Logger
}

// NewOptimizeHandler creates the handler. sink may be nil.
func NewOptimizeHandler(engine *pipeline.Engine, tuning config.Tuning, sink ResultSink, log *logger.Logger) *OptimizeHandler {
	return &OptimizeHandler{engine: engine, tuning: tuning, sink: sink, log: log}
}

// Optimize handles POST /api/v1/optimize.
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req models.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}
	if err := validateRequest(req); err != nil {
		badRequest(c, "INVALID_REQUEST", err.Error())
		return
	}

	run, err := h.engine.Execute(c.Request.Context(), pipeline.Request{
		Region:   req.Region,
		Hourly:   toHourly(req.Hourly),
		Capacity: model.CapacityProfile(req.Capacity),
		Tuning:   h.applyOptions(req.Options),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.sink != nil {
		h.sink.Publish(run)
	}
	c.JSON(http.StatusOK, models.NewOptimizeResponse(run.ID, run.Region, run.Result))
}

// applyOptions merges clamped request overrides onto the server preset.
func (h *OptimizeHandler) applyOptions(opts *models.OptimizeOptions) config.Tuning {
	t := h.tuning
	if opts == nil {
		return t
	}
	override := config.Tuning{
		Repetitions:   clampInt(opts.Repetitions, 0, maxRepetitions),
		MaxIterations: clampInt(opts.MaxIterations, 0, maxIterationsCap),
		Shots:         clampInt(opts.Shots, 0, maxShots),
	}
	return config.MergeTuning(t, override)
}

// writeError maps pipeline failures onto the error envelope without
// leaking backend internals.
func (h *OptimizeHandler) writeError(c *gin.Context, err error) {
	var (
		winErr  *model.InvalidWindowError
		repErr  *circuit.InvalidRepetitionError
		execErr *backend.ExecutionError
		optErr  *optimizer.FailedError
		decErr  *decode.Error
	)
	switch {
	case errors.As(err, &winErr):
		writeEnvelope(c, http.StatusBadRequest, "INVALID_WINDOW", winErr.Error(), nil)
	case errors.As(err, &repErr):
		writeEnvelope(c, http.StatusBadRequest, "INVALID_REPETITIONS", repErr.Error(), nil)
	case errors.As(err, &optErr):
		h.log.Errorw("optimization failed", "error", err)
		writeEnvelope(c, http.StatusBadGateway, "OPTIMIZATION_FAILED", "the optimization loop could not complete", map[string]interface{}{
			"iterations": optErr.Iterations,
		})
	case errors.As(err, &execErr):
		h.log.Errorw("backend execution failed", "backend", execErr.Backend, "error", err)
		writeEnvelope(c, http.StatusBadGateway, "EXECUTION_ERROR", "the execution backend is unavailable", nil)
	case errors.As(err, &decErr):
		h.log.Errorw("decode failed", "error", err)
		writeEnvelope(c, http.StatusInternalServerError, "DECODE_ERROR", decErr.Error(), nil)
	default:
		h.log.Errorw("pipeline failed", "error", err)
		writeEnvelope(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}

func validateRequest(req models.OptimizeRequest) error {
	if len(req.Hourly) == 0 {
		return errors.New("hourly series must not be empty")
	}
	for _, r := range req.Hourly {
		for _, v := range []float64{r.Solar, r.Wind, r.Hydro, r.Demand, r.Total} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return errors.New("hourly values must be finite and non-negative")
			}
		}
	}
	profile := model.CapacityProfile(req.Capacity)
	return profile.Validate()
}

func toHourly(in []models.HourlyInput) []model.HourlyRecord {
	out := make([]model.HourlyRecord, 0, len(in))
	for _, r := range in {
		out = append(out, model.HourlyRecord(r))
	}
	return out
}

func badRequest(c *gin.Context, code, message string) {
	writeEnvelope(c, http.StatusBadRequest, code, message, nil)
}

func writeEnvelope(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message, Details: details},
	})
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
