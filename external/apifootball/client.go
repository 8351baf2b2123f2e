package apifootball

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/platform/resilience"
	"github.com/riskibarqy/match-predictor/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL          = "https://v3.football.api-sports.io"
	defaultDailyBudget      = 100
	defaultRetryAfter       = 60 * time.Second
	maxResponseBytes        = 8 << 20
	headerRemainingRequests = "x-ratelimit-requests-remaining"
	finishedStatus          = "FT"
)

var errBudgetExhausted = crerr.New("api-football request budget exhausted")

// RetryAfterError is returned for HTTP 429 answers.
type RetryAfterError struct {
	Wait time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("api-football rate limited, retry after %s", e.Wait)
}

func (e *RetryAfterError) RetryAfter() time.Duration {
	return e.Wait
}

func (e *RetryAfterError) Is(target error) bool {
	return target == usecase.ErrTransientSource
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	// Host switches authentication to the RapidAPI header pair.
	Host           string
	Timeout        time.Duration
	DailyBudget    int
	PacingInterval time.Duration
	RetryMaxWait   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// Sleep replaces the pacing and retry waits; tests pass a recorder.
	Sleep resilience.Sleeper
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	host       string
	pacing     time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	retrier    *resilience.Retrier
	sleep      resilience.Sleeper
	budget     *RequestBudget
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("apifootball")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	daily := cfg.DailyBudget
	if daily <= 0 {
		daily = defaultDailyBudget
	}
	pacing := cfg.PacingInterval
	if pacing < 0 {
		pacing = 0
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = resilience.SleepContext
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("api-football circuit state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		host:       strings.TrimSpace(cfg.Host),
		pacing:     pacing,
		logger:     logger,
		breaker:    breaker,
		retrier: resilience.NewRetrier(resilience.RetryPolicy{
			MaxAttempts: 2,
			MaxDelay:    cfg.RetryMaxWait,
		}, sleep),
		sleep:  sleep,
		budget: NewRequestBudget(daily),
	}
}

func (c *Client) Budget() *RequestBudget {
	return c.budget
}

func (c *Client) RemainingRequests() int {
	return c.budget.Remaining()
}

// RequestsMade counts quota-bearing requests answered since the client was
// built.
func (c *Client) RequestsMade() int {
	return c.budget.Made()
}

// Fetch performs one budgeted GET and returns the raw body. Every failure is
// logged and reported as absent; nothing past this point returns an error.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, bool) {
	endpoint = strings.Trim(strings.TrimSpace(endpoint), "/")
	if c.budget.Remaining() <= 0 {
		c.logger.WarnContext(ctx, "api-football request budget exhausted", "endpoint", endpoint)
		return nil, false
	}
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "api-football request short-circuited", "endpoint", endpoint, "error", err)
		return nil, false
	}

	var body []byte
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		if c.budget.Remaining() <= 0 {
			return errBudgetExhausted
		}
		var execErr error
		body, execErr = c.execute(ctx, endpoint, params, true)
		return execErr
	})
	if err == nil {
		_, err = decodeEnvelope(body)
	}
	if err != nil {
		c.budget.recordFailure()
		if isCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		c.logger.WarnContext(ctx, "api-football request failed",
			"endpoint", endpoint,
			"remaining", c.budget.Remaining(),
			"failed_total", c.budget.Failed(),
			"error", err,
		)
		return nil, false
	}
	c.breaker.RecordSuccess()

	if c.pacing > 0 {
		if sleepErr := c.sleep(ctx, c.pacing); sleepErr != nil {
			c.logger.DebugContext(ctx, "api-football pacing interrupted", "error", sleepErr)
		}
	}
	return body, true
}

// RefreshBudget reads the account status. The status endpoint does not
// count against the daily quota.
func (c *Client) RefreshBudget(ctx context.Context) bool {
	body, err := c.execute(ctx, "status", nil, false)
	if err != nil {
		c.logger.WarnContext(ctx, "api-football status check failed", "error", err)
		return false
	}

	var status statusEnvelope
	if err := sonic.Unmarshal(body, &status); err != nil {
		c.logger.WarnContext(ctx, "api-football status payload malformed", "error", err)
		return false
	}
	if hasProviderErrors(status.Errors) {
		c.logger.WarnContext(ctx, "api-football status reported errors", "errors", abbreviateBody(status.Errors))
		return false
	}

	requests := status.Response.Requests
	c.budget.Set(requests.LimitDay - requests.Current)
	c.logger.InfoContext(ctx, "api-football budget refreshed",
		"limit_day", requests.LimitDay,
		"current", requests.Current,
		"remaining", c.budget.Remaining(),
	)
	return true
}

func (c *Client) execute(ctx context.Context, endpoint string, params url.Values, account bool) ([]byte, error) {
	target := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, crerr.Wrapf(err, "build request endpoint=%s", endpoint)
	}
	req.Header.Set("Accept", "application/json")
	if c.host != "" {
		req.Header.Set("x-rapidapi-key", c.apiKey)
		req.Header.Set("x-rapidapi-host", c.host)
	} else {
		req.Header.Set("x-apisports-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request endpoint=%s: %v", usecase.ErrTransientSource, endpoint, err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return nil, fmt.Errorf("%w: read response endpoint=%s: %v", usecase.ErrTransientSource, endpoint, err)
	}

	if account {
		c.budget.observe(resp.Header.Get(headerRemainingRequests))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RetryAfterError{Wait: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case isRetryableStatus(resp.StatusCode):
		return nil, fmt.Errorf("%w: endpoint=%s status=%d body=%s", usecase.ErrTransientSource, endpoint, resp.StatusCode, abbreviateBody(buf.B))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, crerr.Newf("api-football endpoint=%s status=%d body=%s", endpoint, resp.StatusCode, abbreviateBody(buf.B))
	}

	out := make([]byte, len(buf.B))
	copy(out, buf.B)
	return out, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func isCircuitFailure(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, errBudgetExhausted) {
		return false
	}
	return stderrors.Is(err, usecase.ErrTransientSource)
}

func parseRetryAfter(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
		return 0
	}
	return defaultRetryAfter
}
