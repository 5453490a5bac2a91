package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/squad-dashboard/internal/api/handlers"
	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/dom/squad-dashboard/internal/service"
	"github.com/dom/squad-dashboard/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, method, url, token string) *http.Response {
	t.Helper()
	req := testutil.CreateAuthenticatedRequest(t, method, url, nil, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestFinalizationHandler_FullFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.SeedAchievementCatalog(t, ts.DB.DB)
	g := testutil.SeedScoredGame(t, ts.DB.DB)
	token := ts.Token(t)
	gamePath := fmt.Sprintf("/games/%s", g.Game.ID)

	ws := testutil.NewWSClient(t, ts.WebSocketURL(token, g.Game.ID))
	snapshot := ws.ExpectFinalizationState(2 * time.Second)
	assert.Equal(t, domain.FinalizationNotStarted, snapshot.State)
	assert.True(t, snapshot.TriggerEnabled)

	resp := do(t, http.MethodPost, ts.APIURL(gamePath+"/finalize"), token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var result handlers.FinalizationResponse
	testutil.AssertJSONResponse(t, resp, &result)
	assert.Equal(t, domain.FinalizationSuccess, result.State)
	assert.Equal(t, 8, result.TransactionCount)
	assert.Empty(t, result.Warnings)
	require.NotNil(t, result.Summary)
	assert.Equal(t, g.Alice.ID, *result.Summary.OverallMvpPlayerID)

	states := ws.CollectFinalizationStates(5 * time.Second)
	require.Len(t, states, 3)
	assert.Equal(t, domain.FinalizationComputing, states[0].State)
	assert.False(t, states[0].TriggerEnabled)
	assert.Equal(t, domain.FinalizationWritingTransactions, states[1].State)
	assert.Equal(t, domain.FinalizationSuccess, states[2].State)
	assert.True(t, states[2].TriggerEnabled)

	t.Run("second finalize is a no-op", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.APIURL(gamePath+"/finalize"), token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var again handlers.FinalizationResponse
		testutil.AssertJSONResponse(t, resp, &again)
		assert.Equal(t, domain.FinalizationAlreadyFinalized, again.State)
		assert.Nil(t, again.Summary)
	})

	t.Run("status", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.APIURL(gamePath+"/finalization"), token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var status domain.FinalizationStatus
		testutil.AssertJSONResponse(t, resp, &status)
		assert.Equal(t, domain.FinalizationAlreadyFinalized, status.State)
		assert.True(t, status.TriggerEnabled)
	})

	t.Run("achievements", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.APIURL(gamePath+"/achievements"), token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var summary domain.GameAchievementsSummary
		testutil.AssertJSONResponse(t, resp, &summary)
		assert.Equal(t, g.Red.ID, *summary.WinningTeamID)
		require.Len(t, summary.PodiumFinishers, 3)
		assert.Equal(t, g.Cara.ID, summary.PodiumFinishers[2].PlayerID)
	})

	t.Run("game merits", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.APIURL(gamePath+"/merits"), token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var txs []domain.MeritTransaction
		testutil.AssertJSONResponse(t, resp, &txs)
		assert.Len(t, txs, 8)
	})

	t.Run("player merits", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.APIURL(fmt.Sprintf("/players/%s/merits?limit=2", g.Alice.ID)), token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var merits service.PlayerMerits
		testutil.AssertJSONResponse(t, resp, &merits)
		// MVP 500, KPI 250, winning team 100, team leader 300.
		assert.EqualValues(t, 1150, merits.Balance)
		assert.Len(t, merits.Transactions, 2)
	})

	t.Run("reconcile is idempotent", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.APIURL(gamePath+"/merits/reconcile"), token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var rec service.ReconcileResult
		testutil.AssertJSONResponse(t, resp, &rec)
		assert.Equal(t, 8, rec.Expected)
		assert.Zero(t, rec.Inserted)
	})
}

func TestFinalizationHandler_Errors(t *testing.T) {
	ts := testutil.NewTestServer(t)
	token := ts.Token(t)
	completed := testutil.NewGameBuilder().Build(t, ts.DB.DB)
	inProgress := testutil.NewGameBuilder().WithStatus(domain.GameStatusInProgress).Build(t, ts.DB.DB)

	finalizeURL := func(id string) string {
		return ts.APIURL(fmt.Sprintf("/games/%s/finalize", id))
	}

	// The catalog has not been loaded yet.
	resp := do(t, http.MethodPost, finalizeURL(completed.ID.String()), token)
	testutil.AssertErrorResponse(t, resp, http.StatusServiceUnavailable, "Achievement catalog")

	testutil.SeedAchievementCatalog(t, ts.DB.DB)
	player := testutil.CreatePlayer(t, ts.DB.DB, "dana")

	tests := []struct {
		name           string
		method         string
		url            string
		token          string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing token",
			method:         http.MethodPost,
			url:            finalizeURL(completed.ID.String()),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Authorization header required",
		},
		{
			name:           "bad token",
			method:         http.MethodPost,
			url:            finalizeURL(completed.ID.String()),
			token:          "not-a-jwt",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid token",
		},
		{
			name:           "invalid game id",
			method:         http.MethodPost,
			url:            finalizeURL("not-a-uuid"),
			token:          token,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid game ID",
		},
		{
			name:           "unknown game",
			method:         http.MethodPost,
			url:            finalizeURL(uuid.NewString()),
			token:          token,
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Game not found",
		},
		{
			name:           "game not completed",
			method:         http.MethodPost,
			url:            finalizeURL(inProgress.ID.String()),
			token:          token,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "Game is not completed",
		},
		{
			name:           "reconcile before finalization",
			method:         http.MethodPost,
			url:            ts.APIURL(fmt.Sprintf("/games/%s/merits/reconcile", completed.ID)),
			token:          token,
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Game has not been finalized",
		},
		{
			name:           "achievements before finalization",
			method:         http.MethodGet,
			url:            ts.APIURL(fmt.Sprintf("/games/%s/achievements", completed.ID)),
			token:          token,
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Game has not been finalized",
		},
		{
			name:           "unknown player",
			method:         http.MethodGet,
			url:            ts.APIURL(fmt.Sprintf("/players/%s/merits", uuid.New())),
			token:          token,
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Player not found",
		},
		{
			name:           "invalid limit",
			method:         http.MethodGet,
			url:            ts.APIURL(fmt.Sprintf("/players/%s/merits?limit=lots", player.ID)),
			token:          token,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.url, tt.token)
			testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedBody)
		})
	}
}

func TestFinalizationHandler_SkippedGame(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.SeedAchievementCatalog(t, ts.DB.DB)
	token := ts.Token(t)

	game := testutil.NewGameBuilder().Build(t, ts.DB.DB)
	team := testutil.CreateTeam(t, ts.DB.DB, game, "Solo", 0)
	player := testutil.CreatePlayer(t, ts.DB.DB, "erin")
	testutil.DraftPlayer(t, ts.DB.DB, team, player, 1)
	kpi := testutil.CreateKpi(t, ts.DB.DB, "Fouls", "-2")
	testutil.RecordStat(t, ts.DB.DB, game, player, kpi.ID, "3", time.Now())

	resp := do(t, http.MethodPost, ts.APIURL(fmt.Sprintf("/games/%s/finalize", game.ID)), token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var result handlers.FinalizationResponse
	testutil.AssertJSONResponse(t, resp, &result)
	assert.Equal(t, domain.FinalizationSuccess, result.State)
	assert.True(t, result.Skipped)
	assert.Zero(t, result.TransactionCount)

	exists, err := ts.Repos.AchievementSummary.ExistsByGameID(context.Background(), game.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
