package jolpica

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/davidriba/f1-fantasy-league/internal/domain/pricing"
	"github.com/davidriba/f1-fantasy-league/internal/platform/logging"
	"github.com/davidriba/f1-fantasy-league/internal/platform/resilience"
	"github.com/davidriba/f1-fantasy-league/internal/usecase"
)

const (
	defaultBaseURL   = "https://api.jolpi.ca/ergast/f1"
	defaultTimeout   = 15 * time.Second
	defaultPageLimit = 100
	maxResponseBytes = 4 << 20
)

var errJolpicaTransient = crerr.New("jolpica transient failure")

type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	PageLimit  int

	// DriverIDsByCode maps the provider's three-letter driver codes to
	// internal catalog ids. Results for codes outside the map are skipped.
	DriverIDsByCode map[string]int64

	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads season results from the jolpica F1 API and folds them
// into the per-driver tallies the pricing engine consumes.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	timeout        time.Duration
	maxRetries     int
	pageLimit      int
	ids            map[string]int64
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}

	ids := make(map[string]int64, len(cfg.DriverIDsByCode))
	for code, id := range cfg.DriverIDsByCode {
		ids[strings.ToUpper(strings.TrimSpace(code))] = id
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBytes,
		},
		baseURL:        baseURL,
		timeout:        timeout,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		pageLimit:      pageLimit,
		ids:            ids,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

var _ usecase.ResultsProvider = (*Client)(nil)

func (c *Client) GetSeasonStats(ctx context.Context, seasonYear int) (pricing.SeasonStats, error) {
	standings, err := c.fetchStandings(ctx, seasonYear)
	if err != nil {
		return pricing.SeasonStats{}, fmt.Errorf("fetch season standings season=%d: %w", seasonYear, err)
	}

	races, err := c.fetchRaces(ctx, fmt.Sprintf("/%d/results", seasonYear))
	if err != nil {
		return pricing.SeasonStats{}, fmt.Errorf("fetch season results season=%d: %w", seasonYear, err)
	}

	sprints, err := c.fetchRaces(ctx, fmt.Sprintf("/%d/sprint", seasonYear))
	if err != nil {
		return pricing.SeasonStats{}, fmt.Errorf("fetch sprint results season=%d: %w", seasonYear, err)
	}

	stats, skipped := foldSeasonStats(seasonYear, standings, races, sprints, c.ids)
	if skipped > 0 {
		c.logger.WarnContext(ctx, "jolpica results skipped for unmapped driver codes", "season", seasonYear, "skipped", skipped)
	}

	return stats, nil
}

func (c *Client) ListActiveDrivers(ctx context.Context, seasonYear int) ([]int64, error) {
	standings, err := c.fetchStandings(ctx, seasonYear)
	if err != nil {
		return nil, fmt.Errorf("fetch season standings season=%d: %w", seasonYear, err)
	}

	out := make([]int64, 0, len(standings))
	for _, standing := range standings {
		id, ok := c.resolveDriverID(standing.Driver)
		if !ok {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}

func (c *Client) resolveDriverID(payload driverPayload) (int64, bool) {
	id, ok := c.ids[strings.ToUpper(strings.TrimSpace(payload.Code))]
	return id, ok
}

func (c *Client) fetchStandings(ctx context.Context, seasonYear int) ([]driverStanding, error) {
	path := fmt.Sprintf("/%d/driverstandings", seasonYear)

	var standings []driverStanding
	err := c.fetchPaged(ctx, path, func(envelope mrEnvelope) int {
		if envelope.MRData.StandingsTable == nil {
			return 0
		}
		count := 0
		for _, list := range envelope.MRData.StandingsTable.StandingsLists {
			standings = append(standings, list.DriverStandings...)
			count += len(list.DriverStandings)
		}
		return count
	})
	if err != nil {
		return nil, err
	}

	return standings, nil
}

func (c *Client) fetchRaces(ctx context.Context, path string) ([]racePayload, error) {
	byRound := make(map[int]*racePayload, 32)
	err := c.fetchPaged(ctx, path, func(envelope mrEnvelope) int {
		if envelope.MRData.RaceTable == nil {
			return 0
		}
		count := 0
		// Result pages can split a single race across two pages, so
		// rows for the same round are merged.
		for _, race := range envelope.MRData.RaceTable.Races {
			round := parseInt(race.Round)
			existing, ok := byRound[round]
			if !ok {
				copied := race
				byRound[round] = &copied
			} else {
				existing.Results = append(existing.Results, race.Results...)
				existing.SprintResults = append(existing.SprintResults, race.SprintResults...)
			}
			count += len(race.Results) + len(race.SprintResults)
		}
		return count
	})
	if err != nil {
		return nil, err
	}

	rounds := make([]int, 0, len(byRound))
	for round := range byRound {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)

	out := make([]racePayload, 0, len(rounds))
	for _, round := range rounds {
		out = append(out, *byRound[round])
	}

	return out, nil
}

// fetchPaged walks the envelope's offset pagination until every row is
// consumed. collect reports how many rows the page carried so short
// pages can end the walk early.
func (c *Client) fetchPaged(ctx context.Context, path string, collect func(mrEnvelope) int) error {
	offset := 0
	for {
		var envelope mrEnvelope
		if err := c.doJSON(ctx, path, offset, &envelope); err != nil {
			return err
		}

		rows := collect(envelope)
		total := parseInt(envelope.MRData.Total)
		limit := parseInt(envelope.MRData.Limit)
		if limit <= 0 {
			limit = c.pageLimit
		}

		offset += limit
		if offset >= total || rows == 0 {
			return nil
		}
	}
}

func (c *Client) doJSON(ctx context.Context, path string, offset int, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "jolpica circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: results provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.buildURL(path, offset)

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errJolpicaTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode results payload: %w", err)
	}

	return nil
}

func (c *Client) buildURL(path string, offset int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	_, _ = buf.WriteString(path)
	_, _ = buf.WriteString(".json?limit=")
	_, _ = buf.WriteString(strconv.Itoa(c.pageLimit))
	if offset > 0 {
		_, _ = buf.WriteString("&offset=")
		_, _ = buf.WriteString(strconv.Itoa(offset))
	}

	return buf.String()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, status, err := c.roundTrip(fullURL)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errJolpicaTransient, err)
		} else if status >= 200 && status < 300 {
			return raw, nil
		} else if isRetryableStatus(status) {
			lastErr = fmt.Errorf("%w: provider status=%d body=%s", errJolpicaTransient, status, abbreviateBody(raw))
		} else {
			return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "jolpica request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) roundTrip(fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, 0, err
	}

	// The response buffer is pooled, so the body is copied out before release.
	raw := append([]byte(nil), resp.Body()...)
	return raw, resp.StatusCode(), nil
}

func foldSeasonStats(
	seasonYear int,
	standings []driverStanding,
	races []racePayload,
	sprints []racePayload,
	ids map[string]int64,
) (pricing.SeasonStats, int) {
	byDriver := make(map[int64]pricing.SeasonResults, len(standings))
	skipped := 0

	lookup := func(payload driverPayload) (int64, bool) {
		id, ok := ids[strings.ToUpper(strings.TrimSpace(payload.Code))]
		if !ok {
			skipped++
		}
		return id, ok
	}

	for _, standing := range standings {
		id, ok := lookup(standing.Driver)
		if !ok {
			continue
		}
		entry := byDriver[id]
		entry.Points = parsePoints(standing.Points)
		entry.Victories = parseInt(standing.Wins)
		byDriver[id] = entry
	}

	for _, race := range races {
		for _, result := range race.Results {
			id, ok := lookup(result.Driver)
			if !ok {
				continue
			}
			entry := byDriver[id]
			if result.isPodium() {
				entry.Podiums++
			}
			if result.isPole() {
				entry.Poles++
			}
			if result.hasFastestLap() {
				entry.FastestLaps++
			}
			byDriver[id] = entry
		}
	}

	for _, race := range sprints {
		for _, result := range race.SprintResults {
			id, ok := lookup(result.Driver)
			if !ok {
				continue
			}
			entry := byDriver[id]
			if result.isPodium() {
				entry.SprintPodiums++
			}
			if result.isVictory() {
				entry.SprintVictories++
			}
			if result.isPole() {
				entry.SprintPoles++
			}
			byDriver[id] = entry
		}
	}

	return pricing.SeasonStats{
		SeasonYear:      seasonYear,
		CompletedRounds: len(races),
		SprintRounds:    len(sprints),
		ByDriver:        byDriver,
	}, skipped
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const max = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > max {
		return body[:max] + "...(truncated)"
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
