package decision

import (
	"context"
	"time"

	"go-antiraid/internal/config"
	"go-antiraid/internal/detectors"
	"go-antiraid/internal/logging"
	"go-antiraid/internal/metrics"
	"go-antiraid/internal/models"
	"go-antiraid/internal/whitelist"
)

// ActionSink executes side effects. Implementations must not block on the
// network; the controller has already committed its counters when it calls them.
type ActionSink interface {
	Warn(ctx context.Context, action *models.WarningAction) error
	// Sanction applies the timeout. A non-nil disclosure is published only
	// after the timeout has been applied.
	Sanction(ctx context.Context, action *models.SanctionAction, disclosure *models.DisclosureRecord) error
	Disclose(ctx context.Context, record *models.DisclosureRecord) error
}

type Outcome uint8

const (
	OutcomeIgnored Outcome = iota
	OutcomeExempt
	OutcomeTracked
	OutcomeWarned
	OutcomeSanctioned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeExempt:
		return "exempt"
	case OutcomeTracked:
		return "tracked"
	case OutcomeWarned:
		return "warned"
	case OutcomeSanctioned:
		return "sanctioned"
	default:
		return "unknown"
	}
}

type ControllerOptions struct {
	Policy     *config.PolicyStore
	Privileges *whitelist.PrivilegeSet
	Tracker    *detectors.RateTracker
	Ledger     *Ledger
	Profiles   *config.ProfileStore
	Sink       ActionSink

	// SanctionFor defaults to five minutes.
	SanctionFor time.Duration
	Now         func() time.Time
}

// Controller runs the anti-raid pipeline for one message at a time. Callers
// must serialize messages per actor; distinct actors may run concurrently.
type Controller struct {
	policy      *config.PolicyStore
	privileges  *whitelist.PrivilegeSet
	tracker     *detectors.RateTracker
	ledger      *Ledger
	profiles    *config.ProfileStore
	sink        ActionSink
	sanctionFor time.Duration
	now         func() time.Time
}

func NewController(opts ControllerOptions) *Controller {
	c := &Controller{
		policy:      opts.Policy,
		privileges:  opts.Privileges,
		tracker:     opts.Tracker,
		ledger:      opts.Ledger,
		profiles:    opts.Profiles,
		sink:        opts.Sink,
		sanctionFor: opts.SanctionFor,
		now:         opts.Now,
	}
	if c.sanctionFor <= 0 {
		c.sanctionFor = time.Duration(models.DefaultSanctionMillis) * time.Millisecond
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.profiles == nil {
		c.profiles = config.NewProfileStore()
	}
	return c
}

func (c *Controller) HandleMessage(ctx context.Context, event *models.MessageEvent) Outcome {
	outcome := c.handle(ctx, event)
	metrics.MessagesEvaluated.WithLabelValues(outcome.String()).Inc()
	return outcome
}

func (c *Controller) handle(ctx context.Context, event *models.MessageEvent) Outcome {
	if !c.policy.Enabled() || event.GuildID == "" || event.IsBot {
		return OutcomeIgnored
	}
	if c.privileges.IsAuthorized(event.ActorID, event.RoleIDs, whitelist.TierMod) {
		return OutcomeExempt
	}

	nowMs := event.TimestampMillis
	if nowMs == 0 {
		nowMs = c.now().UnixMilli()
	}

	eval := c.tracker.RecordAndEvaluate(event.ActorID, nowMs)
	if !eval.Breached {
		return OutcomeTracked
	}
	metrics.Breaches.Inc()

	verdict := c.ledger.BumpAndDecide(event.ActorID)
	logging.Warn("Spam breach: actor=%s guild=%s count=%d/%d verdict=%s warnings=%d",
		event.ActorID, event.GuildID, eval.Count, eval.Threshold, verdict, c.ledger.Count(event.ActorID))

	if verdict == VerdictWarn {
		c.warn(ctx, event)
		return OutcomeWarned
	}
	c.sanction(ctx, event)
	return OutcomeSanctioned
}

func (c *Controller) warn(ctx context.Context, event *models.MessageEvent) {
	action := &models.WarningAction{
		ActorID:   event.ActorID,
		GuildID:   event.GuildID,
		ChannelID: event.ChannelID,
		MessageID: event.MessageID,
	}
	metrics.ActionsDispatched.WithLabelValues("warn").Inc()
	if err := c.sink.Warn(ctx, action); err != nil {
		logging.Error("Failed to dispatch warning for %s in %s: %v", event.ActorID, event.GuildID, err)
	}
}

func (c *Controller) sanction(ctx context.Context, event *models.MessageEvent) {
	action := models.NewSanctionAction(event.GuildID, event.ActorID, c.sanctionFor)

	var disclosure *models.DisclosureRecord
	if channelID, ok := c.profiles.DisclosureChannel(event.GuildID); ok {
		disclosure = models.NewDisclosureRecord(event.GuildID, channelID, event.ActorID, c.now())
	}

	metrics.ActionsDispatched.WithLabelValues("sanction").Inc()
	if err := c.sink.Sanction(ctx, action, disclosure); err != nil {
		logging.Error("Failed to dispatch timeout for %s in %s: %v", event.ActorID, event.GuildID, err)
	}
}

func (c *Controller) Policy() *config.PolicyStore {
	return c.policy
}

func (c *Controller) SetEnabled(enabled bool) {
	c.policy.SetEnabled(enabled)
	logging.Info("Anti-raid enabled=%t", enabled)
}

// Toggle flips the enabled flag and returns the new value.
func (c *Controller) Toggle() bool {
	enabled := c.policy.Toggle()
	logging.Info("Anti-raid enabled=%t", enabled)
	return enabled
}

func (c *Controller) SetLevel(name string) config.RaidLevel {
	level := c.policy.SetLevel(name)
	logging.Info("Anti-raid level set to %s (requested %q)", level, name)
	return level
}

// ResetWarnings gives the actor a clean slate: warn count and message window
// are both cleared. Reports whether the actor had any warnings.
func (c *Controller) ResetWarnings(actorID string) bool {
	c.tracker.Forget(actorID)
	return c.ledger.Reset(actorID)
}

func (c *Controller) Warnings(actorID string) int {
	return c.ledger.Count(actorID)
}
