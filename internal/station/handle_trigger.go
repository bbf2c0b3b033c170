package station

import (
	"time"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/core"
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/remotetrigger"
)

// TriggerMessageDelay is the fixed delay before a triggered message is
// actually sent (spec.md §4.4 TriggerMessage).
const TriggerMessageDelay = 500 * time.Millisecond

// OnTriggerMessage implements spec.md §4.4 TriggerMessage.
func (s *Station) OnTriggerMessage(request *remotetrigger.TriggerMessageRequest) (*remotetrigger.TriggerMessageConfirmation, error) {
	s.RLock()
	remoteTriggerEnabled := s.Features.RemoteTrigger
	s.RUnlock()
	if !remoteTriggerEnabled {
		return remotetrigger.NewTriggerMessageConfirmation(remotetrigger.TriggerMessageStatusNotImplemented), nil
	}

	if request.ConnectorId != nil && *request.ConnectorId < 0 {
		return remotetrigger.NewTriggerMessageConfirmation(remotetrigger.TriggerMessageStatusRejected), nil
	}

	switch request.RequestedMessage {
	case remotetrigger.MessageTrigger(core.BootNotificationFeatureName):
		go s.scheduleTriggeredBootNotification()
	case remotetrigger.MessageTrigger(core.HeartbeatFeatureName):
		go s.scheduleTriggeredHeartbeat()
	case remotetrigger.MessageTrigger(core.StatusNotificationFeatureName):
		go s.scheduleTriggeredStatusNotification(request.ConnectorId)
	default:
		return remotetrigger.NewTriggerMessageConfirmation(remotetrigger.TriggerMessageStatusNotImplemented), nil
	}

	return remotetrigger.NewTriggerMessageConfirmation(remotetrigger.TriggerMessageStatusAccepted), nil
}

func (s *Station) scheduleTriggeredBootNotification() {
	time.Sleep(TriggerMessageDelay)
	s.RLock()
	out := s.Outbound
	vendor, model := s.Boot.Vendor, s.Boot.Model
	s.RUnlock()
	if out == nil {
		return
	}
	if _, _, err := out.SendBootNotification(vendor, model); err != nil {
		s.Log.WithError(err).Warn("triggered BootNotification failed")
	}
}

func (s *Station) scheduleTriggeredHeartbeat() {
	time.Sleep(TriggerMessageDelay)
	s.RLock()
	out := s.Outbound
	s.RUnlock()
	if out == nil {
		return
	}
	if err := out.SendHeartbeat(OutboundOptions{TriggerMessage: true}); err != nil {
		s.Log.WithError(err).Warn("triggered Heartbeat failed")
	}
}

func (s *Station) scheduleTriggeredStatusNotification(connectorID *int) {
	time.Sleep(TriggerMessageDelay)
	s.RLock()
	out := s.Outbound
	var targets []int
	if connectorID != nil {
		targets = []int{*connectorID}
	} else {
		targets = s.Connectors.PerConnectorIDs()
	}
	statuses := make(map[int]ChargePointStatus, len(targets))
	for _, id := range targets {
		if conn := s.Connectors.Lookup(id); conn != nil {
			statuses[id] = conn.Status
		}
	}
	s.RUnlock()
	if out == nil {
		return
	}
	for _, id := range targets {
		status, ok := statuses[id]
		if !ok {
			continue
		}
		if err := out.SendStatusNotification(id, status, OutboundOptions{TriggerMessage: true}); err != nil {
			s.Log.WithError(err).WithField("connectorId", id).Warn("triggered StatusNotification failed")
		}
	}
}
