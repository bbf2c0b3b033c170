package station

import (
	"time"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/core"
)

// OnReset implements spec.md §4.4 Reset: schedules an asynchronous
// teardown/re-boot and returns Accepted immediately. The simulated
// down-time equals the station's configured resetTime.
func (s *Station) OnReset(request *core.ResetRequest) (*core.ResetConfirmation, error) {
	hard := request.Type == core.ResetTypeHard
	s.Log.WithField("type", request.Type).Info("reset requested")

	if s.onReset != nil {
		downtime := s.ResetTime
		go func() {
			time.Sleep(downtime)
			s.onReset(hard)
		}()
	}
	return core.NewResetConfirmation(core.ResetStatusAccepted), nil
}

// OnClearCache implements spec.md §4.4 ClearCache: the authorization
// cache isn't modeled, so every request is Accepted.
func (s *Station) OnClearCache(request *core.ClearCacheRequest) (*core.ClearCacheConfirmation, error) {
	return core.NewClearCacheConfirmation(core.ClearCacheStatusAccepted), nil
}
