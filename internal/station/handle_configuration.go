package station

import "github.com/lorenzodonini/ocpp-go/ocpp1.6/core"

// OnGetConfiguration implements spec.md §4.4 GetConfiguration.
func (s *Station) OnGetConfiguration(request *core.GetConfigurationRequest) (*core.GetConfigurationConfirmation, error) {
	s.RLock()
	found, unknown := s.Config.ListVisible(request.Key)
	s.RUnlock()

	keys := make([]core.ConfigurationKey, 0, len(found))
	for _, entry := range found {
		value := entry.Value
		keys = append(keys, core.ConfigurationKey{
			Key:      entry.Key,
			Readonly: entry.Readonly,
			Value:    &value,
		})
	}
	confirmation := core.NewGetConfigurationConfirmation(keys)
	confirmation.UnknownKey = unknown
	return confirmation, nil
}

// OnChangeConfiguration implements spec.md §4.4 ChangeConfiguration.
func (s *Station) OnChangeConfiguration(request *core.ChangeConfigurationRequest) (*core.ChangeConfigurationConfirmation, error) {
	s.Lock()
	wasHeartbeat := IsHeartbeatKey(request.Key)
	wasPing := IsWebSocketPingKey(request.Key)
	before := s.Config.Get(request.Key)
	var beforeValue string
	if before != nil {
		beforeValue = before.Value
	}
	result := s.Config.Set(request.Key, request.Value, false)
	s.Unlock()

	switch result {
	case SetUnknownKey:
		return core.NewChangeConfigurationConfirmation(core.ConfigurationStatusNotSupported), nil
	case SetRejectedReadonly:
		return core.NewChangeConfigurationConfirmation(core.ConfigurationStatusRejected), nil
	}

	changed := beforeValue != request.Value
	if wasHeartbeat && changed {
		s.RestartHeartbeatTimer()
	}
	if wasPing && changed {
		s.RestartPingTimer()
	}

	if result == SetRebootRequired {
		return core.NewChangeConfigurationConfirmation(core.ConfigurationStatusRebootRequired), nil
	}
	return core.NewChangeConfigurationConfirmation(core.ConfigurationStatusAccepted), nil
}
