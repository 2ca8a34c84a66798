// Package processor lands swarm life events on relationships: validate,
// dedup, mutate under the registry lock, persist, and publish. It is the
// only writer that touches a relationship in response to events; the HTTP
// API shares it for direct injection and milestone announcements.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/bus"
	"github.com/MikeSquared-Agency/dyad/internal/dedup"
	"github.com/MikeSquared-Agency/dyad/internal/events"
	"github.com/MikeSquared-Agency/dyad/internal/notify"
	"github.com/MikeSquared-Agency/dyad/internal/registry"
	"github.com/MikeSquared-Agency/dyad/internal/relationship"
	"github.com/MikeSquared-Agency/dyad/internal/store"
)

// Processor orchestrates dyad's event pipeline. Store, bus, and notifier are
// optional: backfill runs with no bus, dry runs with no store, and most
// deployments have no webhook.
type Processor struct {
	registry *registry.Registry
	mapping  events.Mapping
	store    *store.Store
	bus      *bus.Client
	notifier *notify.Notifier
	seen     *dedup.Set
	logger   *slog.Logger
}

func New(reg *registry.Registry, mapping events.Mapping, db *store.Store, busClient *bus.Client, notifier *notify.Notifier, logger *slog.Logger) *Processor {
	return &Processor{
		registry: reg,
		mapping:  mapping,
		store:    db,
		bus:      busClient,
		notifier: notifier,
		seen:     dedup.New(0),
		logger:   logger,
	}
}

// Result reports what one event did. Skipped carries the gate reason when
// the event was dropped without touching any relationship.
type Result struct {
	Applied bool
	Skipped string
	Version uint64
	Outcome events.Outcome
}

// trustUpdate is the payload published on bus.SubjectTrustUpdated.
type trustUpdate struct {
	EventID     uuid.UUID `json:"event_id"`
	EventType   string    `json:"event_type"`
	Pair        string    `json:"pair"`
	Trustor     uuid.UUID `json:"trustor"`
	Antecedents int       `json:"antecedents"`
	Betrayal    bool      `json:"betrayal"`
	Version     uint64    `json:"version"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// HandleLifeEvent is the NATS handler for the life-event subject. It never
// returns an error to the bus; failures are logged and the consumer keeps
// running.
func (p *Processor) HandleLifeEvent(subject string, data []byte) {
	evt, err := events.Parse(data)
	if err != nil {
		p.logger.Warn("failed to parse life event", "subject", subject, "error", err)
		return
	}

	res, err := p.ApplyEvent(context.Background(), evt)
	if err != nil {
		p.logger.Error("life event failed",
			"event_id", evt.EventID,
			"event_type", evt.EventType,
			"error", err,
		)
		return
	}
	if res.Skipped != "" {
		p.logger.Debug("life event skipped",
			"event_id", evt.EventID,
			"event_type", evt.EventType,
			"reason", res.Skipped,
		)
	}
}

// ApplyEvent runs one life event through the full pipeline. Gate rejections
// come back as a Skipped result with a nil error; an error means the
// relationship mutated but persistence or publishing failed afterward.
func (p *Processor) ApplyEvent(ctx context.Context, evt events.LifeEvent) (Result, error) {
	if reason := p.gate(&evt); reason != "" {
		return Result{Skipped: reason}, nil
	}

	var (
		outcome  events.Outcome
		snapshot []byte
		pairKey  string
	)
	version, err := p.registry.Mutate(evt.Source, evt.Target, func(rel *relationship.Relationship) error {
		outcome = p.mapping.Apply(rel, evt)
		pairKey = rel.Key()
		var err error
		snapshot, err = rel.Snapshot()
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("mutate relationship: %w", err)
	}
	if !outcome.Applied {
		return Result{Skipped: "no effect"}, nil
	}

	res := Result{Applied: true, Version: version, Outcome: outcome}

	if p.store != nil {
		row := store.SnapshotRow{
			PairKey:  pairKey,
			EntityA:  minUUID(evt.Source, evt.Target),
			EntityB:  maxUUID(evt.Source, evt.Target),
			Snapshot: snapshot,
			Version:  version,
		}
		if err := p.store.SaveSnapshot(ctx, row); err != nil {
			return res, fmt.Errorf("persist snapshot: %w", err)
		}
		if err := p.store.InsertAntecedents(ctx, pairKey, outcome.Trustor, evt.EventID, outcome.Antecedents); err != nil {
			return res, fmt.Errorf("persist antecedents: %w", err)
		}
	}

	if p.bus != nil {
		update := trustUpdate{
			EventID:     evt.EventID,
			EventType:   evt.EventType,
			Pair:        pairKey,
			Trustor:     outcome.Trustor,
			Antecedents: len(outcome.Antecedents),
			Betrayal:    outcome.Betrayal,
			Version:     version,
			OccurredAt:  evt.OccurredAt,
		}
		if err := p.bus.Publish(bus.SubjectTrustUpdated, update); err != nil {
			p.logger.Warn("failed to publish trust update", "pair", pairKey, "error", err)
		}
	}

	if outcome.Betrayal {
		p.AnnounceMilestone(ctx, notify.Milestone{
			Kind:    notify.KindBetrayal,
			Pair:    pairKey,
			EntityA: minUUID(evt.Source, evt.Target),
			EntityB: maxUUID(evt.Source, evt.Target),
			Detail:  evt.EventType + ": " + evt.Detail,
			At:      evt.OccurredAt,
		})
	}

	p.logger.Info("life event applied",
		"event_id", evt.EventID,
		"event_type", evt.EventType,
		"pair", pairKey,
		"trustor", outcome.Trustor,
		"antecedents", len(outcome.Antecedents),
		"version", version,
	)
	return res, nil
}

// AnnounceMilestone publishes a milestone on the bus and posts it to the
// webhook. Both targets are best-effort.
func (p *Processor) AnnounceMilestone(ctx context.Context, m notify.Milestone) {
	if p.bus != nil {
		if err := p.bus.Publish(bus.SubjectMilestone, m); err != nil {
			p.logger.Warn("failed to publish milestone", "kind", m.Kind, "pair", m.Pair, "error", err)
		}
	}
	if p.notifier != nil {
		if err := p.notifier.Post(ctx, m); err != nil {
			p.logger.Warn("failed to notify milestone", "kind", m.Kind, "pair", m.Pair, "error", err)
		}
	}
}

// SaveRelationship persists the current snapshot of one pair, for API
// mutations that bypass the event pipeline. A nil store is a no-op.
func (p *Processor) SaveRelationship(ctx context.Context, a, b uuid.UUID) error {
	if p.store == nil {
		return nil
	}
	var snapshot []byte
	var pairKey string
	version, err := p.registry.View(a, b, func(rel *relationship.Relationship) error {
		pairKey = rel.Key()
		var err error
		snapshot, err = rel.Snapshot()
		return err
	})
	if err != nil {
		return err
	}
	return p.store.SaveSnapshot(ctx, store.SnapshotRow{
		PairKey:  pairKey,
		EntityA:  minUUID(a, b),
		EntityB:  maxUUID(a, b),
		Snapshot: snapshot,
		Version:  version,
	})
}

// BusConnected reports bus connectivity for the status endpoint.
func (p *Processor) BusConnected() bool {
	return p.bus != nil && p.bus.Connected()
}

func minUUID(a, b uuid.UUID) uuid.UUID {
	if b.String() < a.String() {
		return b
	}
	return a
}

func maxUUID(a, b uuid.UUID) uuid.UUID {
	if b.String() < a.String() {
		return a
	}
	return b
}
