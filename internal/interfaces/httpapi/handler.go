package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	teamService       *usecase.TeamService
	predictionService *usecase.PredictionService
	health            HealthChecker
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	teamService *usecase.TeamService,
	predictionService *usecase.PredictionService,
	health HealthChecker,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		teamService:       teamService,
		predictionService: predictionService,
		health:            health,
		logger:            logger,
		validator:         validator.New(),
	}
}

type predictionRequest struct {
	HomeTeamID int64 `json:"homeTeamId" validate:"required,gt=0"`
	AwayTeamID int64 `json:"awayTeamId" validate:"required,gt=0,nefield=HomeTeamID"`
}

type batchPredictionRequest struct {
	Pairs []predictionRequest `json:"pairs" validate:"required,min=1,max=100"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	if h.health != nil {
		if err := h.health.PingContext(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "error", err)
			writeError(ctx, w, fmt.Errorf("%w: database unreachable", usecase.ErrDependencyUnavailable))
			return
		}
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	query := r.URL.Query()
	teams, err := h.teamService.ListTeams(ctx, query.Get("name"), query.Get("league"))
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teams)
}

func (h *Handler) GetTeamSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamSummary")
	defer span.End()

	teamID, err := parsePositiveInt(r.PathValue("teamID"), "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	window := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("window")); raw != "" {
		parsed, err := parsePositiveInt(raw, "window")
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		window = int(parsed)
	}

	summary, err := h.teamService.GetTeamSummary(ctx, teamID, window)
	if err != nil {
		h.logger.WarnContext(ctx, "get team summary failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) PredictMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PredictMatch")
	defer span.End()

	var req predictionRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.predictionService.PredictMatch(ctx, req.HomeTeamID, req.AwayTeamID)
	if err != nil {
		h.logger.WarnContext(ctx, "predict match failed",
			"home_team_id", req.HomeTeamID,
			"away_team_id", req.AwayTeamID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PredictBatch")
	defer span.End()

	var req batchPredictionRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	pairs := make([]usecase.PredictionPair, 0, len(req.Pairs))
	for _, pair := range req.Pairs {
		pairs = append(pairs, usecase.PredictionPair{HomeTeamID: pair.HomeTeamID, AwayTeamID: pair.AwayTeamID})
	}

	results, err := h.predictionService.PredictMany(ctx, pairs)
	if err != nil {
		h.logger.WarnContext(ctx, "batch prediction failed", "pairs", len(pairs), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"items": results})
}

func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parsePositiveInt(raw, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, field)
	}
	return value, nil
}
