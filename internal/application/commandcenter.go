package application

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wms-platform/intelligence-service/pkg/logging"
)

// SnapshotPublisher announces composed snapshots to downstream
// consumers. Publishing is advisory; failures never fail the snapshot.
type SnapshotPublisher interface {
	PublishCommandCenter(ctx context.Context, snapshot *CommandCenterSnapshot) error
}

// CommandCenter fans out to every engine and composes one snapshot.
// The orchestration and substitution sections reuse the single ATP pass
// instead of recomputing coverage.
type CommandCenter struct {
	atp           *ATPEngine
	orchestration *OrchestrationPlanner
	substitution  *SubstitutionEngine
	intent        *IntentScorer
	risk          *RiskEngine
	quality       *DataQualityEngine
	publisher     SnapshotPublisher
	logger        *logging.Logger
	now           func() time.Time
}

// NewCommandCenter creates a new CommandCenter. The publisher may be
// nil when snapshot events are disabled.
func NewCommandCenter(
	atp *ATPEngine,
	orchestration *OrchestrationPlanner,
	substitution *SubstitutionEngine,
	intent *IntentScorer,
	risk *RiskEngine,
	quality *DataQualityEngine,
	publisher SnapshotPublisher,
	logger *logging.Logger,
) *CommandCenter {
	return &CommandCenter{
		atp:           atp,
		orchestration: orchestration,
		substitution:  substitution,
		intent:        intent,
		risk:          risk,
		quality:       quality,
		publisher:     publisher,
		logger:        logger.WithComponent("command-center"),
		now:           time.Now,
	}
}

// Snapshot composes all six sections. Sections fail independently: a
// failed branch yields a nil section plus a SectionError while the
// others still return.
func (c *CommandCenter) Snapshot(ctx context.Context, query CommandCenterQuery) (*CommandCenterSnapshot, error) {
	orderQuery := OrderQuery{Series: query.Series, OrderLimit: query.OrderLimit}
	customerQuery := CustomerQuery{CustomerLimit: query.CustomerLimit}
	riskQuery := RiskQuery{OrderLimit: query.OrderLimit}

	snapshot := &CommandCenterSnapshot{
		GeneratedAt: c.now().UTC(),
	}

	var atpErr, orchestrationErr, substitutionErr, intentErr, riskErr, qualityErr error

	g, gctx := errgroup.WithContext(ctx)

	// Coverage first, then the two consumers of its result
	g.Go(func() error {
		snapshot.ATP, atpErr = c.atp.Snapshot(gctx, orderQuery)
		if atpErr != nil {
			return nil
		}
		snapshot.Orchestration, orchestrationErr = c.orchestration.PlanFromATP(gctx, snapshot.ATP)
		snapshot.Substitutions, substitutionErr = c.substitution.SuggestFromATP(gctx, snapshot.ATP)
		return nil
	})

	g.Go(func() error {
		snapshot.Intent, intentErr = c.intent.Snapshot(gctx, customerQuery)
		return nil
	})

	g.Go(func() error {
		snapshot.Risk, riskErr = c.risk.Snapshot(gctx, riskQuery)
		return nil
	})

	g.Go(func() error {
		snapshot.DataQuality, qualityErr = c.quality.Snapshot(gctx)
		return nil
	})

	// Branches report failures through their section errors
	_ = g.Wait()

	if atpErr != nil {
		orchestrationErr = atpErr
		substitutionErr = atpErr
	}
	c.collectError(snapshot, "atp", atpErr)
	c.collectError(snapshot, "orchestration", orchestrationErr)
	c.collectError(snapshot, "substitutions", substitutionErr)
	c.collectError(snapshot, "customerIntent", intentErr)
	c.collectError(snapshot, "risk", riskErr)
	c.collectError(snapshot, "dataQuality", qualityErr)

	snapshot.Summary = buildSummary(snapshot)

	if c.publisher != nil {
		if err := c.publisher.PublishCommandCenter(ctx, snapshot); err != nil {
			c.logger.WithError(err).Warn("Failed to publish command center snapshot")
		}
	}

	return snapshot, nil
}

func (c *CommandCenter) collectError(snapshot *CommandCenterSnapshot, section string, err error) {
	if err == nil {
		return
	}
	c.logger.WithError(err).Error("Command center section failed", "section", section)
	snapshot.Errors = append(snapshot.Errors, SectionError{Section: section, Message: err.Error()})
}

// buildSummary rolls the cross-cutting counters up from whichever
// sections succeeded.
func buildSummary(snapshot *CommandCenterSnapshot) CommandCenterSummary {
	var summary CommandCenterSummary

	if snapshot.ATP != nil {
		summary.OpenOrders = snapshot.ATP.OrderCount
		summary.LowCoverageOrders = snapshot.ATP.LowCoverageCount()
		summary.ShortageQty = snapshot.ATP.TotalShortageQty
	}
	if snapshot.Orchestration != nil {
		summary.ActivePickers = snapshot.Orchestration.ActivePickerCount()
	}
	if snapshot.Substitutions != nil {
		summary.SubstitutionNeeds = snapshot.Substitutions.LineCount
	}
	if snapshot.Intent != nil {
		summary.HotCustomers = snapshot.Intent.HotCount
	}
	if snapshot.Risk != nil {
		summary.OrdersNeedingReview = snapshot.Risk.ReviewCount
		summary.OrdersBlocked = snapshot.Risk.BlockCount
	}
	if snapshot.DataQuality != nil {
		summary.BlockedQualityChecks = snapshot.DataQuality.BlockingCount
	}

	return summary
}
