package robotevents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
	"github.com/intelicampusai/vex5hub-site/internal/platform/resilience"
	"github.com/intelicampusai/vex5hub-site/internal/usecase"
)

const (
	defaultBaseURL     = "https://www.robotevents.com/api/v2"
	defaultPageSize    = 250
	defaultMaxPages    = 50
	defaultBackoffBase = time.Second
	userAgent          = "vex5hub-updater/1.0"
	maxResponseBytes   = 6 << 20
)

var errRobotEventsTransient = crerr.New("robotevents transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Credentials    usecase.CredentialSource
	Timeout        time.Duration
	MaxRetries     int
	MaxPages       int
	RateRPS        float64
	RateBurst      int
	BackoffBase    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.BreakerConfig
}

// Client talks to the RobotEvents API v2. All requests share one rate
// limiter so worker concurrency never raises the aggregate request rate.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	credentials    usecase.CredentialSource
	maxRetries     int
	maxPages       int
	backoffBase    time.Duration
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.Breaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	sleep          func(ctx context.Context, d time.Duration) error

	tokenMu sync.Mutex
	token   string
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}
	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		credentials:    cfg.Credentials,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		maxPages:       maxPages,
		backoffBase:    backoffBase,
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
		logger:         logger,
		breaker:        resilience.NewBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
		sleep:          sleepContext,
	}
}

func (c *Client) FetchSeasonEvents(ctx context.Context, seasonID int, startFrom string) ([]usecase.ExternalEvent, error) {
	if seasonID <= 0 {
		return nil, fmt.Errorf("season id must be greater than zero")
	}

	out := make([]usecase.ExternalEvent, 0, 64)
	err := c.forEachPage(ctx, func(page int) string {
		values := url.Values{}
		values.Set("season[]", strconv.Itoa(seasonID))
		if startFrom != "" {
			values.Set("start", startFrom)
		}
		return c.pagedURL("/events", values, page)
	}, func(raw []byte) (pageMeta, error) {
		var envelope eventsEnvelope
		if err := sonic.Unmarshal(raw, &envelope); err != nil {
			return pageMeta{}, fmt.Errorf("decode events payload: %w", err)
		}
		for _, item := range envelope.Data {
			out = append(out, mapEventPayload(item))
		}
		return envelope.Meta, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch season events season_id=%d: %w", seasonID, err)
	}
	return out, nil
}

func (c *Client) FetchEventBySKU(ctx context.Context, sku string) (usecase.ExternalEvent, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return usecase.ExternalEvent{}, fmt.Errorf("event sku must not be empty")
	}

	values := url.Values{}
	values.Set("sku[]", sku)

	var envelope eventsEnvelope
	if err := c.doJSON(ctx, "/events", values, &envelope); err != nil {
		return usecase.ExternalEvent{}, fmt.Errorf("fetch event sku=%s: %w", sku, err)
	}
	if len(envelope.Data) == 0 {
		return usecase.ExternalEvent{}, fmt.Errorf("%w: event sku=%s", usecase.ErrNotFound, sku)
	}
	return mapEventPayload(envelope.Data[0]), nil
}

func (c *Client) FetchEventTeamNumbers(ctx context.Context, eventID int64) ([]string, error) {
	if eventID <= 0 {
		return nil, fmt.Errorf("event id must be greater than zero")
	}

	out := make([]string, 0, 64)
	path := fmt.Sprintf("/events/%d/teams", eventID)
	err := c.forEachPage(ctx, func(page int) string {
		return c.pagedURL(path, url.Values{}, page)
	}, func(raw []byte) (pageMeta, error) {
		var envelope teamsEnvelope
		if err := sonic.Unmarshal(raw, &envelope); err != nil {
			return pageMeta{}, fmt.Errorf("decode event teams payload: %w", err)
		}
		for _, item := range envelope.Data {
			if number := strings.TrimSpace(item.Number); number != "" {
				out = append(out, number)
			}
		}
		return envelope.Meta, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch event teams event_id=%d: %w", eventID, err)
	}
	return out, nil
}

// FetchSkillsStandings hits the season skills endpoint, which lives outside
// the versioned API surface and returns a bare JSON array.
func (c *Client) FetchSkillsStandings(ctx context.Context, skillsSeasonID int, gradeLevel string) ([]usecase.ExternalSkillsEntry, error) {
	if skillsSeasonID <= 0 {
		return nil, fmt.Errorf("skills season id must be greater than zero")
	}

	base := strings.TrimSuffix(c.baseURL, "/v2")
	fullURL := fmt.Sprintf("%s/seasons/%d/skills?post_season=0&grade_level=%s",
		base, skillsSeasonID, url.QueryEscape(gradeLevel))

	raw, err := c.doRaw(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch skills standings season_id=%d grade=%s: %w", skillsSeasonID, gradeLevel, err)
	}

	var entries []skillsEntryPayload
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode skills payload: %w", err)
	}

	out := make([]usecase.ExternalSkillsEntry, 0, len(entries))
	for _, item := range entries {
		out = append(out, mapSkillsPayload(item))
	}
	return out, nil
}

func (c *Client) FetchTeamIDByNumber(ctx context.Context, teamNumber string) (int64, error) {
	teamNumber = strings.TrimSpace(teamNumber)
	if teamNumber == "" {
		return 0, fmt.Errorf("team number must not be empty")
	}

	values := url.Values{}
	values.Set("number[]", teamNumber)

	var envelope teamsEnvelope
	if err := c.doJSON(ctx, "/teams", values, &envelope); err != nil {
		return 0, fmt.Errorf("fetch team number=%s: %w", teamNumber, err)
	}
	if len(envelope.Data) == 0 {
		return 0, fmt.Errorf("%w: team number=%s", usecase.ErrNotFound, teamNumber)
	}
	return envelope.Data[0].ID, nil
}

func (c *Client) FetchTeamMatches(ctx context.Context, teamID int64, seasonID int) ([]usecase.ExternalMatch, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("team id must be greater than zero")
	}
	if seasonID <= 0 {
		return nil, fmt.Errorf("season id must be greater than zero")
	}

	out := make([]usecase.ExternalMatch, 0, 64)
	path := fmt.Sprintf("/teams/%d/matches", teamID)
	err := c.forEachPage(ctx, func(page int) string {
		values := url.Values{}
		values.Set("season[]", strconv.Itoa(seasonID))
		return c.pagedURL(path, values, page)
	}, func(raw []byte) (pageMeta, error) {
		var envelope matchesEnvelope
		if err := sonic.Unmarshal(raw, &envelope); err != nil {
			return pageMeta{}, fmt.Errorf("decode team matches payload: %w", err)
		}
		for _, item := range envelope.Data {
			out = append(out, mapMatchPayload(item))
		}
		return envelope.Meta, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch team matches team_id=%d season_id=%d: %w", teamID, seasonID, err)
	}
	return out, nil
}

func (c *Client) pagedURL(path string, values url.Values, page int) string {
	values.Set("per_page", strconv.Itoa(defaultPageSize))
	values.Set("page", strconv.Itoa(page))
	return c.baseURL + path + "?" + values.Encode()
}

// forEachPage fetches consecutive pages until the reported last page or the
// configured page cap, whichever comes first.
func (c *Client) forEachPage(ctx context.Context, makeURL func(page int) string, handle func(raw []byte) (pageMeta, error)) error {
	for page := 1; ; page++ {
		if page > c.maxPages {
			c.logger.WarnContext(ctx, "stopping pagination at page cap", "max_pages", c.maxPages)
			return nil
		}

		raw, err := c.doRaw(ctx, makeURL(page))
		if err != nil {
			return err
		}

		meta, err := handle(raw)
		if err != nil {
			return err
		}
		if meta.LastPage <= page {
			return nil
		}
	}
}

func (c *Client) doJSON(ctx context.Context, path string, values url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.doRaw(ctx, fullURL)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, fullURL string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "robotevents circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: results provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		if waitErr := c.limiter.Wait(ctx); waitErr != nil {
			return nil, waitErr
		}
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errRobotEventsTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	token, err := c.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errRobotEventsTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errRobotEventsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: provider status=404", usecase.ErrNotFound)
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errRobotEventsTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := c.backoffBase << attempt
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "robotevents request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// apiKey resolves the bearer credential once and caches it for the
// lifetime of the client.
func (c *Client) apiKey(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	if c.credentials == nil {
		return "", fmt.Errorf("%w: no credential source configured", usecase.ErrMissingCredential)
	}
	token, err := c.credentials.APIKey(ctx)
	if err != nil {
		return "", err
	}
	c.token = strings.TrimSpace(token)
	if c.token == "" {
		return "", fmt.Errorf("%w: credential source returned empty key", usecase.ErrMissingCredential)
	}
	return c.token, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
