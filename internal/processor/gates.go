package processor

import (
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/events"
)

// Gate reasons. An event failing a gate is dropped before any relationship
// is touched; these strings surface in skip logs and backfill counts.
const (
	skipMissingEntity = "missing entity id"
	skipSelfPair      = "source and target are the same entity"
	skipUnmappedType  = "unmapped event type"
	skipDuplicate     = "duplicate event id"
)

// gate validates an event before it reaches the registry. A zero occurred_at
// is repaired to now rather than rejected; everything else that fails comes
// back as a non-empty skip reason.
func (p *Processor) gate(evt *events.LifeEvent) string {
	if evt.Source == uuid.Nil || evt.Target == uuid.Nil {
		return skipMissingEntity
	}
	if evt.Source == evt.Target {
		return skipSelfPair
	}
	if len(p.mapping[evt.EventType]) == 0 {
		return skipUnmappedType
	}
	if p.seen.Seen(evt.EventID) {
		return skipDuplicate
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return ""
}
