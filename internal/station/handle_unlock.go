package station

import "github.com/lorenzodonini/ocpp-go/ocpp1.6/core"

// OnUnlockConnector implements spec.md §4.4 UnlockConnector.
func (s *Station) OnUnlockConnector(request *core.UnlockConnectorRequest) (*core.UnlockConnectorConfirmation, error) {
	if request.ConnectorId == 0 {
		return core.NewUnlockConnectorConfirmation(core.UnlockStatusNotSupported), nil
	}

	s.Lock()
	conn := s.Connectors.Lookup(request.ConnectorId)
	if conn == nil {
		s.Unlock()
		return core.NewUnlockConnectorConfirmation(core.UnlockStatusNotSupported), nil
	}

	if !conn.TransactionStarted {
		conn.Status = StatusAvailable
		out := s.Outbound
		connectorID := conn.ID
		s.Unlock()
		if out != nil {
			_ = out.SendStatusNotification(connectorID, StatusAvailable)
		}
		return core.NewUnlockConnectorConfirmation(core.UnlockStatusUnlocked), nil
	}

	transactionID := conn.TransactionID
	idTag := conn.TransactionIDTag
	energy := conn.TransactionEnergyImport
	connectorID := conn.ID
	out := s.Outbound
	emitEndMeterValues := s.Features.BeginEndMeterValues && s.Features.OCPPStrictCompliance && !s.Features.OutOfOrderEndMeterValues
	s.Unlock()

	if out == nil {
		return core.NewUnlockConnectorConfirmation(core.UnlockStatusUnlockFailed), nil
	}
	if emitEndMeterValues {
		_ = out.SendMeterValuesForStop(connectorID, transactionID, energy)
	}
	result, err := out.SendStopTransaction(transactionID, energy, idTag, ReasonUnlockCommand)
	if err != nil || result == nil || !result.Accepted {
		return core.NewUnlockConnectorConfirmation(core.UnlockStatusUnlockFailed), nil
	}

	s.Lock()
	if conn := s.Connectors.Lookup(connectorID); conn != nil {
		conn.EndTransaction()
	}
	s.Unlock()

	return core.NewUnlockConnectorConfirmation(core.UnlockStatusUnlocked), nil
}
