package httpapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/davidriba/f1-fantasy-league/internal/domain/user"
	"github.com/davidriba/f1-fantasy-league/internal/infrastructure/repository/memory"
	"github.com/davidriba/f1-fantasy-league/internal/platform/cache"
	"github.com/davidriba/f1-fantasy-league/internal/platform/id"
	"github.com/davidriba/f1-fantasy-league/internal/usecase"

	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	"github.com/davidriba/f1-fantasy-league/internal/domain/pricing"
)

// staticVerifier authenticates a fixed token to a fixed principal.
type staticVerifier struct {
	token     string
	principal user.Principal
}

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token != v.token {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return v.principal, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewMarketStore()
	provider := memory.NewStaticResultsProvider(memory.SeedSeasonStats())
	rules := market.DefaultRules(2025)
	formula := pricing.DefaultFormula()
	idGen := id.NewRandomGenerator()
	rng := rand.New(rand.NewSource(7))

	marketService := usecase.NewMarketService(store, provider, rules, formula, idGen, rng, nil, logger)
	teamService := usecase.NewTeamService(store, provider,
		memory.NewDriverRepository(memory.SeedDrivers()),
		memory.NewUserRepository(memory.SeedUsers()),
		rules, idGen, rng, logger)
	ownershipService := usecase.NewOwnershipService(store,
		memory.NewDriverRepository(memory.SeedDrivers()),
		provider, formula, rules, cache.NewStore(time.Minute), logger)

	handler := NewHandler(marketService, teamService, ownershipService, 2025, logger)

	if _, err := marketService.InitializeLeagueOwnership(t.Context(), 1, 2025); err != nil {
		t.Fatalf("seed league market: %v", err)
	}

	verifier := staticVerifier{token: "token-abc", principal: user.Principal{ID: 1, ExternalID: "acct-1"}}
	return NewRouter(handler, verifier, logger, false, []string{"*"}, "ops-secret")
}

func decodeEnvelopeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestRouter_BuyRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/leagues/1/market/drivers/1/buy", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}
}

func TestRouter_BuyFromMarket(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/leagues/1/teams/initialize", strings.NewReader(`{"team_name":"Scuderia Test"}`))
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 initializing team, got %d body=%s", rec.Code, rec.Body.String())
	}

	// Cheapest remaining free agent; the listing is price-descending.
	req = httptest.NewRequest(http.MethodGet, "/v1/leagues/1/drivers?status=free", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing free agents, got %d", rec.Code)
	}
	items, _ := decodeEnvelopeBody(t, rec)["data"].([]any)
	if len(items) == 0 {
		t.Fatalf("expected free agents after team initialization")
	}
	target, _ := items[len(items)-1].(map[string]any)
	targetID := int64(target["id"].(float64))
	targetPrice := int64(target["price"].(float64))

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/v1/leagues/1/market/drivers/%d/buy", targetID), nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	data, ok := decodeEnvelopeBody(t, rec)["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in trade result")
	}
	if got := int64(data["price"].(float64)); got != targetPrice {
		t.Fatalf("expected settled price %d, got %d", targetPrice, got)
	}
	if _, ok := data["locked_until"].(string); !ok {
		t.Fatalf("expected locked_until in trade result")
	}
}

func TestRouter_ListDrivers(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/1/drivers?status=free", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelopeBody(t, rec)
	items, ok := body["data"].([]any)
	if !ok || len(items) != 20 {
		t.Fatalf("expected 20 free agents after initialization, got %d", len(items))
	}
}

func TestRouter_ListDrivers_UnknownStatus(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/1/drivers?status=benched", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestRouter_InitializeOwnershipRequiresOpsToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/leagues/1/initialize-ownership", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without ops token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/leagues/1/initialize-ownership", strings.NewReader(`{}`))
	req.Header.Set("X-Ops-Token", "ops-secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with ops token, got %d body=%s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelopeBody(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["created"].(float64); got != 0 {
		t.Fatalf("expected idempotent re-initialization to create 0 rows, got %v", data["created"])
	}
}

func TestRouter_BuyInUninitializedLeague(t *testing.T) {
	router := newTestRouter(t)

	// League 2 has no ownership rows seeded.
	req := httptest.NewRequest(http.MethodPost, "/v1/leagues/2/market/drivers/1/buy", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 buying in an uninitialized league, got %d", rec.Code)
	}
}
