package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/reelgate/internal/access/domain"
	"github.com/felixgeelhaar/reelgate/internal/access/token"
	catalogDomain "github.com/felixgeelhaar/reelgate/internal/catalog/domain"
	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

// Dependencies wires the pipeline's collaborators.
type Dependencies struct {
	Tiers   TierSource
	Quota   QuotaLedger
	Catalog catalogDomain.Reader
	Gate    MembershipGate
	// Ceilings defaults to DefaultCeilings when nil. A zero ceiling is
	// honoured and denies every unit on that tier.
	Ceilings  *domain.Ceilings
	Clock     sharedDomain.Clock
	Publisher eventbus.Publisher
	Metrics   observability.Metrics
	Logger    *slog.Logger
}

// Service runs the access decision pipeline:
// parse, membership, existence, quota, commit.
type Service struct {
	tiers     TierSource
	quota     QuotaLedger
	catalog   catalogDomain.Reader
	gate      MembershipGate
	ceilings  domain.Ceilings
	clock     sharedDomain.Clock
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewService creates the pipeline. Tiers, Quota and Catalog are required.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Tiers == nil || deps.Quota == nil || deps.Catalog == nil {
		return nil, errors.New("access service requires tiers, quota and catalog")
	}
	ceilings := domain.DefaultCeilings()
	if deps.Ceilings != nil {
		ceilings = *deps.Ceilings
	}
	if ceilings.Free < 0 || ceilings.Pro < 0 {
		return nil, fmt.Errorf("access ceilings must not be negative: free=%d pro=%d", ceilings.Free, ceilings.Pro)
	}
	if deps.Clock == nil {
		deps.Clock = sharedDomain.SystemClock{}
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Publisher == nil {
		deps.Publisher = eventbus.NewNoopPublisher(deps.Logger)
	}
	return &Service{
		tiers:     deps.Tiers,
		quota:     deps.Quota,
		catalog:   deps.Catalog,
		gate:      deps.Gate,
		ceilings:  ceilings,
		clock:     deps.Clock,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}, nil
}

// target is what the existence step found.
type target struct {
	pkg    *catalogDomain.Package
	series *catalogDomain.Series
	media  string
}

// Decide runs one request through the pipeline. Business refusals are
// returned as denied decisions with a nil error; a non-nil error means a
// store failure (wrapping domain.ErrStoreUnavailable) or cancellation, and
// in both cases nothing was committed.
func (s *Service) Decide(ctx context.Context, userID sharedDomain.UserID, raw string) (domain.Decision, error) {
	ctx = observability.WithUserID(ctx, userID.String())
	start := time.Now()
	decision, err := s.decide(ctx, userID, raw)
	s.record(ctx, decision, err, time.Since(start))
	return decision, err
}

func (s *Service) decide(ctx context.Context, userID sharedDomain.UserID, raw string) (domain.Decision, error) {
	// Parse
	intent, err := token.Resolve(raw)
	if err != nil {
		return domain.Denied(raw, intent, domain.ReasonBadRequest), nil
	}

	// Membership
	if s.gate != nil {
		if res := s.gate.Verify(ctx, userID); !res.Allowed {
			d := domain.Denied(raw, intent, domain.ReasonMembershipRequired)
			d.MissingGroups = res.Missing
			return d, nil
		}
	}

	// Existence
	found, reason, err := s.lookup(ctx, intent)
	if err != nil {
		return domain.Decision{Token: raw, Intent: intent}, err
	}
	if reason != "" {
		return domain.Denied(raw, intent, reason), nil
	}

	// Quota
	day := sharedDomain.Today(s.clock)
	tier, err := s.tiers.GetTier(ctx, userID)
	if err != nil {
		return domain.Decision{Token: raw, Intent: intent}, fmt.Errorf("%w: tier lookup: %v", domain.ErrStoreUnavailable, err)
	}
	ceiling, unlimited := s.ceilings.For(tier)
	if !unlimited {
		consumed, err := s.quota.ConsumedOn(ctx, userID, day)
		if err != nil {
			return domain.Decision{Token: raw, Intent: intent, Tier: tier}, fmt.Errorf("%w: quota lookup: %v", domain.ErrStoreUnavailable, err)
		}
		if consumed >= ceiling {
			d := domain.Denied(raw, intent, domain.ReasonQuotaExceeded)
			d.Tier = tier
			return d, nil
		}
	}

	if !intent.Action.Delivers() {
		return domain.Decision{
			Outcome: domain.OutcomePreview,
			Token:   raw,
			Intent:  intent,
			Tier:    tier,
			Preview: preview(intent, found),
		}, nil
	}

	// Commit. An abandoned request must not consume quota.
	if err := ctx.Err(); err != nil {
		return domain.Decision{Token: raw, Intent: intent, Tier: tier}, err
	}
	total, ok, err := s.commit(ctx, userID, day, ceiling, unlimited)
	if err != nil {
		return domain.Decision{Token: raw, Intent: intent, Tier: tier}, fmt.Errorf("%w: record view: %v", domain.ErrStoreUnavailable, err)
	}
	if !ok {
		// A concurrent request took the last unit between the gate and here.
		d := domain.Denied(raw, intent, domain.ReasonQuotaExceeded)
		d.Tier = tier
		return d, nil
	}
	s.metrics.Counter(observability.MetricQuotaViews, 1, observability.T("tier", tier.Canonical().String()))

	return domain.Decision{
		Outcome: domain.OutcomeGranted,
		Token:   raw,
		Intent:  intent,
		Tier:    tier,
		Grant:   grant(intent, found, tier, total, day),
	}, nil
}

// lookup resolves the intent's target. A returned reason means not found.
func (s *Service) lookup(ctx context.Context, intent token.Intent) (target, domain.DenialReason, error) {
	switch intent.Action {
	case token.ActionViewPackage, token.ActionPlayPackage:
		pkg, err := s.catalog.FindPackage(ctx, intent.TargetID)
		if errors.Is(err, catalogDomain.ErrPackageNotFound) {
			return target{}, domain.ReasonNotFound, nil
		}
		if err != nil {
			return target{}, "", fmt.Errorf("%w: find package: %v", domain.ErrStoreUnavailable, err)
		}
		return target{pkg: pkg, media: pkg.VideoRef}, "", nil

	case token.ActionViewSeries, token.ActionPlayChapter:
		series, err := s.catalog.FindSeries(ctx, intent.TargetID)
		if errors.Is(err, catalogDomain.ErrSeriesNotFound) {
			return target{}, domain.ReasonNotFound, nil
		}
		if err != nil {
			return target{}, "", fmt.Errorf("%w: find series: %v", domain.ErrStoreUnavailable, err)
		}
		if intent.Action == token.ActionViewSeries {
			return target{series: series}, "", nil
		}
		media, err := series.Chapter(intent.Index)
		if err != nil {
			return target{}, domain.ReasonNotFound, nil
		}
		return target{series: series, media: media}, "", nil
	}
	return target{}, domain.ReasonBadRequest, nil
}

// commit consumes one unit. Limited tiers use a conditional increment so
// two requests racing for the last unit cannot both succeed.
func (s *Service) commit(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day, ceiling int, unlimited bool) (int, bool, error) {
	if unlimited {
		total, err := s.quota.RecordView(ctx, userID, day)
		return total, err == nil, err
	}
	return s.quota.RecordViewWithin(ctx, userID, day, ceiling)
}

func grant(intent token.Intent, found target, tier entitlementDomain.PlanTier, total int, day sharedDomain.Day) *domain.Grant {
	g := &domain.Grant{
		MediaRef:      found.media,
		Forwardable:   tier.Forwardable(),
		ConsumedToday: total,
		Day:           day.String(),
	}
	if found.pkg != nil {
		g.Caption = found.pkg.Caption
	}
	if intent.Action == token.ActionPlayChapter && found.series != nil {
		nav := &domain.Navigation{}
		if found.series.HasPrevious(intent.Index) {
			nav.Previous = &domain.ChapterLink{Index: intent.Index - 1, Token: token.PlayChapter(found.series.ID, intent.Index-1)}
		}
		if found.series.HasNext(intent.Index) {
			nav.Next = &domain.ChapterLink{Index: intent.Index + 1, Token: token.PlayChapter(found.series.ID, intent.Index+1)}
		}
		g.Caption = found.series.Title
		g.Navigation = nav
	}
	return g
}

func preview(intent token.Intent, found target) *domain.Preview {
	if found.pkg != nil {
		return &domain.Preview{
			CoverRef:  found.pkg.CoverRef,
			Caption:   found.pkg.Caption,
			PlayToken: token.PlayPackage(found.pkg.ID),
		}
	}
	p := &domain.Preview{
		Title:         found.series.Title,
		CoverRef:      found.series.CoverRef,
		Caption:       found.series.Caption,
		ChapterTokens: make([]string, found.series.Len()),
	}
	for i := range p.ChapterTokens {
		p.ChapterTokens[i] = token.PlayChapter(found.series.ID, i)
	}
	return p
}

func (s *Service) record(ctx context.Context, d domain.Decision, err error, elapsed time.Duration) {
	outcome := string(d.Outcome)
	if err != nil {
		outcome = "error"
	}
	tags := []observability.Tag{
		observability.T("outcome", outcome),
		observability.T("reason", string(d.Reason)),
		observability.T("action", string(d.Intent.Action)),
	}
	s.metrics.Counter(observability.MetricAccessDecisions, 1, tags...)
	s.metrics.Timing(observability.MetricAccessDecisionDuration, elapsed)

	attrs := []any{
		"action", string(d.Intent.Action),
		"target", d.Intent.TargetID,
		"outcome", outcome,
	}
	switch {
	case err != nil:
		s.logger.ErrorContext(ctx, "access decision failed", append(attrs, observability.ErrorKey, err)...)
	case d.IsDenied():
		s.logger.InfoContext(ctx, "access denied", append(attrs, "reason", string(d.Reason))...)
	default:
		s.logger.DebugContext(ctx, "access decided", append(attrs, "tier", d.Tier.String())...)
	}
}
