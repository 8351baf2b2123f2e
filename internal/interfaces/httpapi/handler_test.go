package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/domain/team"
	"github.com/riskibarqy/match-predictor/internal/domain/teamstats"
	teammock "github.com/riskibarqy/match-predictor/internal/mocks/domain/team"
	teamstatsmock "github.com/riskibarqy/match-predictor/internal/mocks/domain/teamstats"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(context.Context) error {
	return p.err
}

type handlerFixture struct {
	router    http.Handler
	teamRepo  *teammock.Repository
	statsRepo *teamstatsmock.Repository
}

func newHandlerFixture(t *testing.T, pinger HealthChecker) handlerFixture {
	t.Helper()

	teamRepo := teammock.NewRepository(t)
	statsRepo := teamstatsmock.NewRepository(t)
	logger := logging.NewNop()
	features := usecase.NewFeatureService(teamRepo, statsRepo, usecase.FeatureConfig{}, logger)
	heuristic := prediction.NewHeuristic(prediction.DefaultHeuristicConfig(), prediction.DefaultScorelineModel())
	predictions := usecase.NewPredictionService(teamRepo, features, heuristic, nil, usecase.PredictionConfig{BatchWorkers: 2}, logger)
	teams := usecase.NewTeamService(teamRepo, features)

	handler := NewHandler(teams, predictions, pinger, logger)
	return handlerFixture{
		router:    NewRouter(handler, logger, nil),
		teamRepo:  teamRepo,
		statsRepo: statsRepo,
	}
}

func (f handlerFixture) expectTeam(id int64, name string, goalsFor, goalsAgainst int) {
	records := make([]teamstats.MatchRecord, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, teamstats.MatchRecord{
			MatchID:      id*10 + int64(i),
			GoalsFor:     goalsFor,
			GoalsAgainst: goalsAgainst,
			Stats:        &teamstats.Statistics{Possession: 0.5, Shots: 12, ShotsOnTarget: 5, Corners: 5},
		})
	}
	f.teamRepo.On("GetByID", mock.Anything, id).Return(team.Team{ID: id, Name: name, League: "Premier League", Country: "England"}, nil)
	f.statsRepo.On("ListRecentByTeam", mock.Anything, id, teamstats.DefaultWindow, time.Time{}).Return(records, nil)
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec, payload
}

func TestHandler_Healthz(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, stubPinger{})
	rec, body := doRequest(t, f.router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])

	down := newHandlerFixture(t, stubPinger{err: errors.New("connection refused")})
	rec, _ = doRequest(t, down.router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_ListTeams_PassesFilters(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, nil)
	f.teamRepo.On("List", mock.Anything, "Arsenal", "Premier League").
		Return([]team.Team{{ID: 3, Name: "Arsenal", League: "Premier League", Country: "England"}}, nil).Once()

	rec, body := doRequest(t, f.router, http.MethodGet, "/v1/teams?name=Arsenal&league=Premier+League", "")
	require.Equal(t, http.StatusOK, rec.Code)

	items := body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Arsenal", items[0].(map[string]any)["name"])
}

func TestHandler_GetTeamSummary(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, nil)
	f.expectTeam(7, "Brighton", 2, 1)

	rec, body := doRequest(t, f.router, http.MethodGet, "/v1/teams/7/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(teamstats.DefaultWindow), data["window"])
	assert.Equal(t, "Brighton", data["team"].(map[string]any)["name"])
}

func TestHandler_GetTeamSummary_RejectsBadInput(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, nil)

	rec, _ := doRequest(t, f.router, http.MethodGet, "/v1/teams/abc/summary", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doRequest(t, f.router, http.MethodGet, "/v1/teams/7/summary?window=-2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_PredictMatch(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, nil)
	f.expectTeam(1, "Manchester City", 3, 0)
	f.expectTeam(2, "Burnley", 0, 2)

	rec, body := doRequest(t, f.router, http.MethodPost, "/v1/predictions", `{"homeTeamId":1,"awayTeamId":2}`)
	require.Equal(t, http.StatusOK, rec.Code, body)

	data := body["data"].(map[string]any)
	assert.Equal(t, string(prediction.HomeWin), data["predictedOutcome"])
	assert.Equal(t, "Manchester City", data["homeTeam"].(map[string]any)["name"])
}

func TestHandler_PredictMatch_ValidatesPayload(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, nil)

	cases := map[string]string{
		"same team":     `{"homeTeamId":4,"awayTeamId":4}`,
		"missing away":  `{"homeTeamId":4}`,
		"unknown field": `{"homeTeamId":4,"awayTeamId":5,"venue":"x"}`,
		"not json":      `home=4`,
	}
	for name, payload := range cases {
		rec, body := doRequest(t, f.router, http.MethodPost, "/v1/predictions", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Equal(t, "INVALID_ARGUMENT", body["error"].(map[string]any)["status"], name)
	}
}

func TestHandler_PredictMatch_UnknownTeamIsNotFound(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, nil)
	f.teamRepo.On("GetByID", mock.Anything, int64(1)).Return(team.Team{ID: 1, Name: "Fulham"}, nil).Maybe()
	f.statsRepo.On("ListRecentByTeam", mock.Anything, int64(1), teamstats.DefaultWindow, time.Time{}).
		Return([]teamstats.MatchRecord{}, nil).Maybe()
	f.teamRepo.On("GetByID", mock.Anything, int64(99)).Return(team.Team{}, usecase.ErrNotFound).Once()

	rec, _ := doRequest(t, f.router, http.MethodPost, "/v1/predictions", `{"homeTeamId":1,"awayTeamId":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_PredictBatch_ReportsPerPairErrors(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, nil)
	f.expectTeam(1, "Arsenal", 2, 0)
	f.expectTeam(2, "Chelsea", 1, 1)

	rec, body := doRequest(t, f.router, http.MethodPost, "/v1/predictions/batch",
		`{"pairs":[{"homeTeamId":1,"awayTeamId":2},{"homeTeamId":2,"awayTeamId":2}]}`)
	require.Equal(t, http.StatusOK, rec.Code, body)

	items := body["data"].(map[string]any)["items"].([]any)
	require.Len(t, items, 2)
	assert.NotNil(t, items[0].(map[string]any)["prediction"])
	assert.NotEmpty(t, items[1].(map[string]any)["error"])
}

func TestHandler_PredictBatch_RejectsEmptyBatch(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t, nil)
	rec, _ := doRequest(t, f.router, http.MethodPost, "/v1/predictions/batch", `{"pairs":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
