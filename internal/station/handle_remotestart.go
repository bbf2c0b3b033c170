package station

import (
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/core"
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/types"
)

// OnRemoteStartTransaction implements spec.md §4.4 RemoteStartTransaction.
func (s *Station) OnRemoteStartTransaction(request *core.RemoteStartTransactionRequest) (*core.RemoteStartTransactionConfirmation, error) {
	if request.ConnectorId == nil || *request.ConnectorId <= 0 {
		return core.NewRemoteStartTransactionConfirmation(types.RemoteStartStopStatusRejected), nil
	}
	connectorID := *request.ConnectorId
	idTag := request.IdTag

	s.Lock()
	conn := s.Connectors.Lookup(connectorID)
	if conn == nil {
		s.Unlock()
		return core.NewRemoteStartTransactionConfirmation(types.RemoteStartStopStatusRejected), nil
	}
	conn.Status = StatusPreparing
	out := s.Outbound
	s.Unlock()
	if out != nil {
		_ = out.SendStatusNotification(connectorID, StatusPreparing)
	}

	s.RLock()
	stationAvailable := s.Connectors.Lookup(0).Availability == AvailabilityOperative
	connAvailable := conn.Availability == AvailabilityOperative
	s.RUnlock()
	if !stationAvailable || !connAvailable {
		return core.NewRemoteStartTransactionConfirmation(s.notifyRejected(connectorID)), nil
	}

	if s.Features.AuthorizeRemoteTxRequests {
		if !s.authorizeRemoteStart(conn, idTag) {
			return core.NewRemoteStartTransactionConfirmation(s.notifyRejected(connectorID)), nil
		}
	}

	if request.ChargingProfile != nil {
		if !s.tryInstallProfile(connectorID, request.ChargingProfile) {
			return core.NewRemoteStartTransactionConfirmation(s.notifyRejected(connectorID)), nil
		}
	}

	s.Lock()
	conn.TransactionRemoteStarted = true
	s.Unlock()

	s.RLock()
	out = s.Outbound
	s.RUnlock()
	if out == nil {
		return core.NewRemoteStartTransactionConfirmation(s.notifyRejected(connectorID)), nil
	}
	result, err := out.SendStartTransaction(connectorID, idTag)
	if err != nil || result == nil || !result.Accepted {
		return core.NewRemoteStartTransactionConfirmation(s.notifyRejected(connectorID)), nil
	}
	return core.NewRemoteStartTransactionConfirmation(types.RemoteStartStopStatusAccepted), nil
}

// authorizeRemoteStart implements spec.md §4.4 step 3: local-list
// check first, else an optional Authorize round-trip, else a bare
// warning and implicit rejection.
func (s *Station) authorizeRemoteStart(conn *Connector, idTag string) bool {
	s.Lock()
	localEnabled := s.Features.LocalAuthListEnabled
	tags := s.AuthorizedTags
	s.Unlock()

	if localEnabled && len(tags) > 0 && containsTag(tags, idTag) {
		s.Lock()
		conn.LocalAuthorizeIDTag = idTag
		conn.IDTagLocalAuthorized = true
		s.Unlock()
		return true
	}

	if s.Features.MayAuthorizeAtRemoteStart {
		s.Lock()
		conn.AuthorizeIDTag = idTag
		out := s.Outbound
		s.Unlock()
		if out == nil {
			return false
		}
		result, err := out.SendAuthorize(idTag)
		return err == nil && result != nil && result.Accepted
	}

	s.Log.Warn("RemoteStartTransaction: idTag not locally authorized and MayAuthorizeAtRemoteStart is disabled")
	return false
}

func containsTag(tags []string, idTag string) bool {
	for _, t := range tags {
		if t == idTag {
			return true
		}
	}
	return false
}

// tryInstallProfile implements the charging-profile install helper
// from spec.md §4.4: absent profiles are allowed; TxProfile installs;
// anything else is denied.
func (s *Station) tryInstallProfile(connectorID int, raw *types.ChargingProfile) bool {
	if raw == nil {
		return true
	}
	if ChargingProfilePurpose(raw.ChargingProfilePurpose) != PurposeTxProfile {
		s.Log.Warnf("RemoteStartTransaction: refusing to pre-install profile with purpose %v", raw.ChargingProfilePurpose)
		return false
	}
	s.Lock()
	conn := s.Connectors.Lookup(connectorID)
	if conn != nil {
		conn.PushProfile(ChargingProfile{
			ChargingProfileId: raw.ChargingProfileId,
			StackLevel:        raw.StackLevel,
			Purpose:           ChargingProfilePurpose(raw.ChargingProfilePurpose),
			TransactionId:     raw.TransactionId,
			Raw:               raw,
		})
	}
	s.Unlock()
	return true
}

// notifyRejected implements spec.md §4.4's notifyRejected: rolls the
// connector's transient Preparing status back to Available (the
// ordering RemoteStartTransaction deliberately preserves per spec.md
// §9, open question 3) and returns Rejected.
func (s *Station) notifyRejected(connectorID int) types.RemoteStartStopStatus {
	s.Lock()
	conn := s.Connectors.Lookup(connectorID)
	rollback := conn != nil && conn.Status != StatusAvailable
	if rollback {
		conn.Status = StatusAvailable
	}
	out := s.Outbound
	s.Unlock()

	if rollback && out != nil {
		_ = out.SendStatusNotification(connectorID, StatusAvailable)
	}
	s.Log.WithField("connectorId", connectorID).Info("RemoteStartTransaction rejected")
	return types.RemoteStartStopStatusRejected
}

// OnRemoteStopTransaction implements spec.md §4.4 RemoteStopTransaction.
func (s *Station) OnRemoteStopTransaction(request *core.RemoteStopTransactionRequest) (*core.RemoteStopTransactionConfirmation, error) {
	s.Lock()
	connectorID, found := s.Connectors.TransactionConnectorID(request.TransactionId)
	if !found {
		s.Unlock()
		s.Log.WithField("transactionId", request.TransactionId).Info("RemoteStopTransaction: no matching connector")
		return core.NewRemoteStopTransactionConfirmation(types.RemoteStartStopStatusRejected), nil
	}
	conn := s.Connectors.Lookup(connectorID)
	conn.Status = StatusFinishing
	idTag := conn.TransactionIDTag
	energy := conn.TransactionEnergyImport
	emitEndMeterValues := s.Features.BeginEndMeterValues && s.Features.OCPPStrictCompliance && !s.Features.OutOfOrderEndMeterValues
	out := s.Outbound
	s.Unlock()

	if out != nil {
		_ = out.SendStatusNotification(connectorID, StatusFinishing)
		if emitEndMeterValues {
			_ = out.SendMeterValuesForStop(connectorID, request.TransactionId, energy)
		}
		_, _ = out.SendStopTransaction(request.TransactionId, energy, idTag, ReasonRemote)
	}

	return core.NewRemoteStopTransactionConfirmation(types.RemoteStartStopStatusAccepted), nil
}
