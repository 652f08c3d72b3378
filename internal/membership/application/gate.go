package application

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/reelgate/internal/membership/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

// Result is the outcome of a gate check. Missing lists the groups the user
// must join, in configured order.
type Result struct {
	Allowed bool
	Missing []string
}

// Gate checks every required group. It is fail-closed: a check that errors
// counts as "not a member".
type Gate struct {
	checker domain.Checker
	groups  []string
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewGate creates a gate over groups. With no groups every user passes.
func NewGate(checker domain.Checker, groups []string, metrics observability.Metrics, logger *slog.Logger) *Gate {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		checker: checker,
		groups:  append([]string(nil), groups...),
		metrics: metrics,
		logger:  logger,
	}
}

// Groups returns the configured groups.
func (g *Gate) Groups() []string {
	return append([]string(nil), g.groups...)
}

// Verify checks all groups concurrently.
func (g *Gate) Verify(ctx context.Context, userID sharedDomain.UserID) Result {
	if len(g.groups) == 0 {
		return Result{Allowed: true}
	}
	if g.checker == nil {
		return Result{Missing: g.Groups()}
	}

	member := make([]bool, len(g.groups))
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	for i, group := range g.groups {
		eg.Go(func() error {
			ok, err := g.checker.IsMember(egCtx, userID, group)
			result := "member"
			switch {
			case err != nil:
				result = "error"
				g.logger.Warn("membership check failed, treating as non-member",
					observability.UserIDKey, userID.String(),
					"group", group,
					observability.ErrorKey, err,
				)
				ok = false
			case !ok:
				result = "not_member"
			}
			g.metrics.Counter(observability.MetricMembershipChecks, 1, observability.T("result", result))
			mu.Lock()
			member[i] = ok
			mu.Unlock()
			// Errors are folded into the result so sibling checks still run.
			return nil
		})
	}
	_ = eg.Wait()

	res := Result{Allowed: true}
	for i, ok := range member {
		if !ok {
			res.Allowed = false
			res.Missing = append(res.Missing, g.groups[i])
		}
	}
	return res
}
