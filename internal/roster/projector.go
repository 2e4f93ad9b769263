// Package roster projects a session's attendance into a live, order-preserving
// event stream: one snapshot on subscribe, then exactly-once appends as new
// scans land.
package roster

import (
	"context"
	"log"

	"absensi/internal/attendance"
	"absensi/internal/realtime"
)

// EventKind tells the viewer how to apply an event.
type EventKind string

const (
	// KindSnapshot replaces the viewer's whole roster.
	KindSnapshot EventKind = "snapshot"
	// KindAppend adds one record to the viewer's roster.
	KindAppend EventKind = "append"
)

// Event is one update delivered to a viewer.
type Event struct {
	Kind   EventKind           `json:"kind"`
	Roster []attendance.Record `json:"roster,omitempty"`
	Record *attendance.Record  `json:"record,omitempty"`
}

// RecordSource reads roster state back from the store.
type RecordSource interface {
	Roster(ctx context.Context, sessionID string, oldestFirst bool) ([]attendance.Record, error)
	Record(ctx context.Context, id string) (*attendance.Record, error)
}

// Projector bridges the store's change notifications to viewers.
type Projector struct {
	records RecordSource
	bus     realtime.Bus
}

// NewProjector creates a projector over the record source and bus.
func NewProjector(records RecordSource, bus realtime.Bus) *Projector {
	return &Projector{records: records, bus: bus}
}

// Subscribe returns a stream of roster events for the session. The first
// event is a full snapshot (newest scan first); each later scan arrives as a
// single append. When the underlying bus reports a gap the projector refetches
// the roster and emits a fresh snapshot instead of dropping scans silently.
// The stream closes when ctx ends.
func (p *Projector) Subscribe(ctx context.Context, sessionID string) (<-chan Event, error) {
	busCh, err := p.bus.Subscribe(ctx, realtime.SessionChannel(sessionID))
	if err != nil {
		return nil, err
	}

	// Snapshot is taken after subscribing so no scan can fall between the
	// two; anything in both is deduped below.
	snapshot, err := p.records.Roster(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)

		seen := make(map[string]bool, len(snapshot))
		for _, rec := range snapshot {
			seen[rec.ID] = true
		}
		if !emit(ctx, out, Event{Kind: KindSnapshot, Roster: snapshot}) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case busEv, ok := <-busCh:
				if !ok {
					return
				}
				switch busEv.Kind {
				case realtime.KindMessage:
					recordID := string(busEv.Payload)
					if seen[recordID] {
						continue
					}
					rec, err := p.records.Record(ctx, recordID)
					if err != nil {
						log.Printf("roster: fetch record %s failed: %v", recordID, err)
						continue
					}
					if rec == nil {
						continue
					}
					seen[recordID] = true
					if !emit(ctx, out, Event{Kind: KindAppend, Record: rec}) {
						return
					}
				case realtime.KindReset:
					fresh, err := p.records.Roster(ctx, sessionID, false)
					if err != nil {
						log.Printf("roster: resnapshot of %s failed: %v", sessionID, err)
						continue
					}
					seen = make(map[string]bool, len(fresh))
					for _, rec := range fresh {
						seen[rec.ID] = true
					}
					if !emit(ctx, out, Event{Kind: KindSnapshot, Roster: fresh}) {
						return
					}
				}
			}
		}
	}()
	return out, nil
}

func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
