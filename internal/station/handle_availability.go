package station

import "github.com/lorenzodonini/ocpp-go/ocpp1.6/core"

func targetStatusFor(avail AvailabilityType) ChargePointStatus {
	if avail == AvailabilityOperative {
		return StatusAvailable
	}
	return StatusUnavailable
}

// OnChangeAvailability implements spec.md §4.4 ChangeAvailability.
func (s *Station) OnChangeAvailability(request *core.ChangeAvailabilityRequest) (*core.ChangeAvailabilityConfirmation, error) {
	requested := AvailabilityType(request.Type)

	if request.ConnectorId == 0 {
		return s.changeStationAvailability(requested), nil
	}
	return s.changeConnectorAvailability(request.ConnectorId, requested)
}

func (s *Station) changeStationAvailability(requested AvailabilityType) *core.ChangeAvailabilityConfirmation {
	s.Lock()
	anyRunning := false
	for _, id := range s.Connectors.PerConnectorIDs() {
		if s.Connectors.Lookup(id).TransactionStarted {
			anyRunning = true
			break
		}
	}
	for _, id := range s.Connectors.PerConnectorIDs() {
		s.Connectors.Lookup(id).Availability = requested
	}
	s.Connectors.Lookup(0).Availability = requested
	target := targetStatusFor(requested)

	type pending struct {
		id     int
		status ChargePointStatus
	}
	var toNotify []pending
	if !anyRunning {
		for _, id := range s.Connectors.PerConnectorIDs() {
			conn := s.Connectors.Lookup(id)
			conn.Status = target
			toNotify = append(toNotify, pending{id, target})
		}
	}
	out := s.Outbound
	s.Unlock()

	if out != nil {
		for _, p := range toNotify {
			_ = out.SendStatusNotification(p.id, p.status)
		}
	}

	if anyRunning {
		return core.NewChangeAvailabilityConfirmation(core.AvailabilityStatusScheduled)
	}
	return core.NewChangeAvailabilityConfirmation(core.AvailabilityStatusAccepted)
}

func (s *Station) changeConnectorAvailability(connectorID int, requested AvailabilityType) (*core.ChangeAvailabilityConfirmation, error) {
	s.Lock()
	station := s.Connectors.Lookup(0)
	conn := s.Connectors.Lookup(connectorID)
	if conn == nil {
		s.Unlock()
		return core.NewChangeAvailabilityConfirmation(core.AvailabilityStatusRejected), nil
	}

	stationOperative := station.Availability == AvailabilityOperative
	bothInoperative := station.Availability == AvailabilityInoperative && requested == AvailabilityInoperative
	if !stationOperative && !bothInoperative {
		s.Unlock()
		return core.NewChangeAvailabilityConfirmation(core.AvailabilityStatusRejected), nil
	}

	if conn.TransactionStarted {
		conn.Availability = requested
		s.Unlock()
		return core.NewChangeAvailabilityConfirmation(core.AvailabilityStatusScheduled), nil
	}

	conn.Availability = requested
	target := targetStatusFor(requested)
	conn.Status = target
	out := s.Outbound
	s.Unlock()

	if out != nil {
		_ = out.SendStatusNotification(connectorID, target)
	}
	return core.NewChangeAvailabilityConfirmation(core.AvailabilityStatusAccepted), nil
}
