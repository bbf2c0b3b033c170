package operator

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// FleetEvent is one notification about a station (status change,
// transaction start/stop, diagnostics outcome). Nothing in this module
// builds an EventPublisher or calls Publish: neither the station nor
// the ATG emits FleetEvents. The
// shape mirrors the teacher's notifier.Notification{Topic, Data}
// pair, repurposed from a request/reply Central-System notifier into
// a fire-and-forget fan-out of simulator events for any operator
// tooling subscribed to the subject. EventId lets a subscriber dedupe
// redelivered messages across NATS reconnects.
type FleetEvent struct {
	EventId           string      `json:"eventId"`
	ChargingStationId string      `json:"chargingStationId"`
	Kind              string      `json:"kind"`
	Data              interface{} `json:"data"`
	At                time.Time   `json:"at"`
}

// EventPublisher fans FleetEvents out over NATS, grounded on the
// teacher's natsCentralSystemNotifier.notificationFromCentralSystem
// channel-drain loop (NatsCentralSystemNotifier.go), inverted from a
// request/reply RPC channel into a plain Publish per event.
type EventPublisher struct {
	conn    *nats.Conn
	subject string
	events  chan FleetEvent
	log     *logrus.Entry
}

// NewEventPublisher dials the given NATS URL and starts the
// publishing loop.
func NewEventPublisher(natsURL, subject string, log *logrus.Entry) (*EventPublisher, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}
	p := &EventPublisher{
		conn:    conn,
		subject: subject,
		events:  make(chan FleetEvent, 256),
		log:     log,
	}
	go p.drain()
	return p, nil
}

// Publish enqueues an event for asynchronous delivery; it never
// blocks the caller's station execution context.
func (p *EventPublisher) Publish(stationID, kind string, data interface{}) {
	select {
	case p.events <- FleetEvent{EventId: uuid.NewString(), ChargingStationId: stationID, Kind: kind, Data: data}:
	default:
		p.log.Warn("fleet event channel full, dropping event")
	}
}

func (p *EventPublisher) drain() {
	for event := range p.events {
		event.At = time.Now()
		payload, err := json.Marshal(event)
		if err != nil {
			p.log.WithError(err).Error("marshal fleet event")
			continue
		}
		if err := p.conn.Publish(p.subject, payload); err != nil {
			p.log.WithError(err).Error("publish fleet event")
		}
	}
}

// Close closes the event channel and the underlying NATS connection
// without waiting for queued events to be published; events still
// queued at that point may be lost.
func (p *EventPublisher) Close() {
	close(p.events)
	p.conn.Close()
}
