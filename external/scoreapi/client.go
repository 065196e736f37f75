package scoreapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/kickoffhq/matchday/internal/domain/match"
	"github.com/kickoffhq/matchday/internal/platform/logging"
	"github.com/kickoffhq/matchday/internal/platform/resilience"
	"github.com/kickoffhq/matchday/internal/usecase"
)

const (
	defaultBaseURL = "https://api.football-data.org/v4"
	maxBodyBytes   = 6 << 20
)

var authTokenParamRegex = regexp.MustCompile(`(?i)(x-auth-token|api_token)=[^&\s"']+`)
var errTransient = crerr.New("score provider transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the upstream score provider. Reads are deduplicated via
// singleflight, guarded by a circuit breaker, and retried on transient
// failures with linear backoff.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
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

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchMatches returns every match the provider has for one UTC calendar
// date, in the provider's raw status vocabulary.
func (c *Client) FetchMatches(ctx context.Context, date string) ([]match.Match, error) {
	if strings.TrimSpace(date) == "" {
		return nil, fmt.Errorf("date is required")
	}
	if _, err := time.Parse(match.DayKeyLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	var envelope matchesEnvelope
	if err := c.getJSON(ctx, "/matches", map[string]string{"date": date}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch matches date=%s: %w", date, err)
	}
	return mapWireMatches(envelope.Matches), nil
}

// FetchLiveMatches returns every match currently in play.
func (c *Client) FetchLiveMatches(ctx context.Context) ([]match.Match, error) {
	var envelope matchesEnvelope
	if err := c.getJSON(ctx, "/matches", map[string]string{"status": "LIVE"}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch live matches: %w", err)
	}
	return mapWireMatches(envelope.Matches), nil
}

// Vote submits the viewer's prediction and returns the confirmed tally.
func (c *Client) Vote(ctx context.Context, matchID int64, choice match.VoteChoice) (usecase.VoteResult, error) {
	if matchID <= 0 {
		return usecase.VoteResult{}, fmt.Errorf("match id must be greater than zero")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	encoded, err := sonic.Marshal(voteRequest{Choice: string(choice)})
	if err != nil {
		return usecase.VoteResult{}, fmt.Errorf("encode vote request: %w", err)
	}
	_, _ = buf.Write(encoded)

	path := "/matches/" + strconv.FormatInt(matchID, 10) + "/predictions"
	raw, err := c.do(ctx, http.MethodPost, path, nil, buf.String())
	if err != nil {
		return usecase.VoteResult{}, fmt.Errorf("submit vote match_id=%d: %w", matchID, err)
	}

	var resp voteResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return usecase.VoteResult{}, fmt.Errorf("decode vote response: %w", err)
	}
	return usecase.VoteResult{
		Votes:    resp.Votes,
		UserVote: match.VoteChoice(resp.UserVote),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, target any) error {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	// Identical in-flight reads share one response.
	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		return c.do(ctx, http.MethodGet, path, values, "")
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "score provider circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: score provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.executeRequest(ctx, method, fullURL, body)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, method, fullURL, body string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := c.buildRequest(ctx, method, fullURL, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
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
	c.logger.WarnContext(ctx, "score provider request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) buildRequest(ctx context.Context, method, fullURL, body string) (*http.Request, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}
	return req, nil
}

func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests || code == http.StatusRequestTimeout {
		return true
	}
	return code >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	value := strings.TrimSpace(string(raw))
	if len(value) > limit {
		return value[:limit] + "..."
	}
	return value
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return authTokenParamRegex.ReplaceAllString(value, "$1=REDACTED")
}
