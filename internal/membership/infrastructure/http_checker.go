// Package infrastructure implements membership checkers.
package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/reelgate/internal/membership/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

// HTTPCheckerConfig configures the bot-API membership checker.
type HTTPCheckerConfig struct {
	BaseURL  string
	BotToken string
	Timeout  time.Duration

	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	HTTPClient *http.Client
	Metrics    observability.Metrics
	Logger     *slog.Logger
}

// HTTPChecker asks a bot API's getChatMember endpoint whether a user is in
// a chat. Calls go through a circuit breaker; while it is open every check
// fails fast with ErrVerificationUnavailable.
type HTTPChecker struct {
	baseURL  string
	botToken string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[bool]
	logger   *slog.Logger
}

type chatMemberResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		Status   string `json:"status"`
		IsMember bool   `json:"is_member"`
	} `json:"result"`
}

// NewHTTPChecker creates a checker.
func NewHTTPChecker(cfg HTTPCheckerConfig) (*HTTPChecker, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("membership API URL is required")
	}
	if cfg.BotToken == "" {
		return nil, errors.New("membership bot token is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}

	c := &HTTPChecker{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		botToken: cfg.BotToken,
		client:   cfg.HTTPClient,
		logger:   cfg.Logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[bool](gobreaker.Settings{
		Name:        "membership",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			// closed=0, half-open=1, open=2
			cfg.Metrics.Gauge(observability.MetricMembershipBreakerState, float64(to))
		},
	})
	return c, nil
}

// IsMember reports whether userID is a member of groupRef.
func (c *HTTPChecker) IsMember(ctx context.Context, userID sharedDomain.UserID, groupRef string) (bool, error) {
	member, err := c.breaker.Execute(func() (bool, error) {
		return c.fetch(ctx, userID, groupRef)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return false, fmt.Errorf("%w: %v", domain.ErrVerificationUnavailable, err)
		}
		return false, err
	}
	return member, nil
}

// State returns the breaker state name.
func (c *HTTPChecker) State() string {
	return c.breaker.State().String()
}

func (c *HTTPChecker) fetch(ctx context.Context, userID sharedDomain.UserID, groupRef string) (bool, error) {
	q := url.Values{}
	q.Set("chat_id", groupRef)
	q.Set("user_id", userID.String())
	endpoint := fmt.Sprintf("%s/bot%s/getChatMember?%s", c.baseURL, c.botToken, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrVerificationUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return false, fmt.Errorf("%w: read body: %v", domain.ErrVerificationUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status %d", domain.ErrVerificationUnavailable, resp.StatusCode)
	}

	var payload chatMemberResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return false, fmt.Errorf("%w: decode: %v", domain.ErrVerificationUnavailable, err)
	}
	if !payload.OK {
		return false, fmt.Errorf("%w: %s", domain.ErrVerificationUnavailable, payload.Description)
	}
	return isMemberStatus(payload.Result.Status, payload.Result.IsMember), nil
}

func isMemberStatus(status string, isMember bool) bool {
	switch status {
	case "creator", "administrator", "member":
		return true
	case "restricted":
		return isMember
	default:
		return false
	}
}

var _ domain.Checker = (*HTTPChecker)(nil)
