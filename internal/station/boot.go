package station

import (
	"errors"
	"strconv"
	"time"
)

// DefaultHeartbeatInterval is used when a BootNotification response
// carries no usable interval (the configuration store is not
// consulted), and as the wait before retrying a failed BootNotification.
const DefaultHeartbeatInterval = 60 * time.Second

// DefaultPingInterval is the WebSocket ping timer's interval at boot;
// a WebSocketPingInterval already in the configuration store is not
// read then. ChangeConfiguration of that key restarts the timer.
const DefaultPingInterval = 30 * time.Second

var (
	errNoOutbound   = errors.New("station: no outbound adapter attached")
	errBootRejected = errors.New("station: BootNotification rejected")
)

// BootSequence sends BootNotification and drives the registration
// state through Unregistered → Pending/Registered (spec.md §3's
// registration states), retrying while Pending at the Central
// System's advertised interval until Registered, rejected, or
// attempts is exhausted (attempts <= 0 means retry indefinitely). A
// Registered response starts the heartbeat/ping timers with the
// interval the Central System supplied.
func (s *Station) BootSequence(attempts int) error {
	for i := 0; attempts <= 0 || i < attempts; i++ {
		s.RLock()
		out := s.Outbound
		vendor, model := s.Boot.Vendor, s.Boot.Model
		s.RUnlock()

		if out == nil {
			return errNoOutbound
		}

		status, interval, err := out.SendBootNotification(vendor, model)
		if err != nil {
			s.Log.WithError(err).Warn("BootNotification failed")
			time.Sleep(DefaultHeartbeatInterval)
			continue
		}

		s.Lock()
		s.Registration = status
		s.Unlock()

		switch status {
		case RegistrationRegistered:
			heartbeat := DefaultHeartbeatInterval
			if interval > 0 {
				heartbeat = time.Duration(interval) * time.Second
			}
			s.seedHeartbeatConfig(heartbeat)
			s.StartTimers(heartbeat, DefaultPingInterval)
			return nil
		case RegistrationPending:
			wait := DefaultHeartbeatInterval
			if interval > 0 {
				wait = time.Duration(interval) * time.Second
			}
			s.Log.Info("BootNotification pending, retrying after interval")
			time.Sleep(wait)
		default:
			s.Log.Warn("BootNotification rejected")
			return errBootRejected
		}
	}
	return errBootRejected
}

// seedHeartbeatConfig primes the HeartbeatInterval/HeartBeatInterval
// configuration entries with the Central System's accepted interval,
// so a later GetConfiguration reflects reality even if the station
// descriptor never defined the key.
func (s *Station) seedHeartbeatConfig(interval time.Duration) {
	s.Lock()
	defer s.Unlock()
	seconds := int(interval / time.Second)
	if s.Config.Get(keyHeartbeatInterval) == nil {
		s.Config.Define(keyHeartbeatInterval, strconv.Itoa(seconds), false, true, false)
	}
}
