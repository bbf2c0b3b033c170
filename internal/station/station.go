package station

import (
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// BootInfo is the station's boot-notification echo (spec.md §3):
// cached so TriggerMessage(BootNotification) and a forced reset can
// resend the same identity the Central System already saw.
type BootInfo struct {
	Vendor  string
	Model   string
	Serial  string
	FwVersion string
}

// Features records which optional OCPP 1.6 feature profiles and
// behavioral flags this station descriptor enabled (spec.md §6).
type Features struct {
	SmartCharging             bool
	FirmwareManagement        bool
	RemoteTrigger             bool
	LocalAuthListEnabled      bool
	AuthorizeRemoteTxRequests bool
	MayAuthorizeAtRemoteStart bool
	OCPPStrictCompliance      bool
	BeginEndMeterValues       bool
	OutOfOrderEndMeterValues  bool
	RequireAuthorize          bool
}

// Station is the per-station owner of C1 (Connectors), C2 (Config),
// registration state, and the timers (heartbeat, WebSocket ping) whose
// intervals ChangeConfiguration can mutate at runtime (spec.md §4.2).
// All mutation goes through s.mu, the single-writer lock spec.md §9
// calls for in a truly-parallel Go implementation of the otherwise
// cooperative single-threaded model spec.md §5 describes.
type Station struct {
	mu sync.RWMutex

	ID               string
	Registration     RegistrationStatus
	StrictCompliance bool
	Features         Features
	ResetTime        time.Duration
	Boot             BootInfo
	AuthorizedTags   []string

	Connectors *Connectors
	Config     *ConfigStore
	Outbound   Outbound
	Uploader   DiagnosticsUploader
	Log        *logrus.Entry

	heartbeat *timerHandle
	wsPing    *timerHandle

	onReset func(hard bool)
}

// timerHandle wraps a restartable ticker-driven goroutine so
// ChangeConfiguration can restart the heartbeat / WebSocket ping loop
// without tearing down the whole station (spec.md §4.2 side effects).
type timerHandle struct {
	stop    chan struct{}
	restart chan time.Duration
}

func newTimerHandle() *timerHandle {
	return &timerHandle{stop: make(chan struct{}), restart: make(chan time.Duration, 1)}
}

// run calls fn every interval until the handle is stopped, and
// re-reads the interval whenever Restart is called.
func (t *timerHandle) run(interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case newInterval := <-t.restart:
			ticker.Stop()
			if newInterval <= 0 {
				newInterval = time.Second
			}
			ticker = time.NewTicker(newInterval)
		case <-ticker.C:
			fn()
		}
	}
}

func (t *timerHandle) Restart(interval time.Duration) {
	select {
	case t.restart <- interval:
	default:
	}
}

func (t *timerHandle) Stop() {
	close(t.stop)
}

// StationOptions configures NewStation.
type StationOptions struct {
	ID               string
	ConnectorCount   int
	StrictCompliance bool
	Features         Features
	ResetTime        time.Duration
	AuthorizedTags   []string
	Log              *logrus.Entry
}

// NewStation builds a station with connectors in their boot-time
// state and a config store the caller populates via Config.Define
// before starting timers. Outbound must be attached separately once
// the transport is ready (see AttachOutbound), mirroring the
// teacher's two-phase setup (handler registered, then
// SetNewChargePointHandler supplies the live connection).
func NewStation(opts StationOptions) *Station {
	if opts.ConnectorCount < 1 {
		opts.ConnectorCount = 1
	}
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Station{
		ID:               opts.ID,
		Registration:     RegistrationUnregistered,
		StrictCompliance: opts.StrictCompliance,
		Features:         opts.Features,
		ResetTime:        opts.ResetTime,
		AuthorizedTags:   opts.AuthorizedTags,
		Connectors:       NewConnectors(opts.ConnectorCount),
		Config:           NewConfigStore(),
		Log:              log.WithField("chargingStationId", opts.ID),
	}
}

// AttachOutbound wires the C6 adapter once the transport is live.
func (s *Station) AttachOutbound(o Outbound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Outbound = o
}

// AttachUploader wires the diagnostics collaborator (internal/diagnostics).
func (s *Station) AttachUploader(u DiagnosticsUploader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Uploader = u
}

// SetOnReset registers the callback the Reset handler schedules work
// on (station teardown + re-boot, spec.md §4.4). Kept as an injected
// closure rather than a hard dependency on the transport/process
// supervisor, per spec.md §9's "pass collaborators through
// construction" guidance.
func (s *Station) SetOnReset(fn func(hard bool)) {
	s.onReset = fn
}

// StartTimers launches the heartbeat and WebSocket-ping loops at the
// configured intervals. Call once, after Config has been populated.
func (s *Station) StartTimers(heartbeatInterval, pingInterval time.Duration) {
	s.heartbeat = newTimerHandle()
	s.wsPing = newTimerHandle()
	go s.heartbeat.run(heartbeatInterval, s.sendHeartbeat)
	go s.wsPing.run(pingInterval, s.sendPing)
}

// StopTimers halts both background loops, e.g. during a simulated reset.
func (s *Station) StopTimers() {
	if s.heartbeat != nil {
		s.heartbeat.Stop()
	}
	if s.wsPing != nil {
		s.wsPing.Stop()
	}
}

func (s *Station) sendHeartbeat() {
	s.mu.RLock()
	out := s.Outbound
	s.mu.RUnlock()
	if out == nil {
		return
	}
	if err := out.SendHeartbeat(); err != nil {
		s.Log.WithError(err).Warn("heartbeat failed")
	}
}

// sendPing is a placeholder for the WebSocket-level ping frame the
// transport (out of scope, §1) actually emits; the station only owns
// the timer whose interval ChangeConfiguration can restart.
func (s *Station) sendPing() {}

// RestartHeartbeatTimer re-reads HeartbeatInterval from Config and
// restarts the ticker (spec.md §4.2 side effect).
func (s *Station) RestartHeartbeatTimer() {
	entry := s.Config.Get(keyHeartbeatInterval)
	if entry == nil || s.heartbeat == nil {
		return
	}
	if seconds, ok := parseSeconds(entry.Value); ok {
		s.heartbeat.Restart(time.Duration(seconds) * time.Second)
	}
}

// RestartPingTimer re-reads WebSocketPingInterval from Config and
// restarts the ticker (spec.md §4.2 side effect).
func (s *Station) RestartPingTimer() {
	entry := s.Config.Get(keyWebSocketPingInterval)
	if entry == nil || s.wsPing == nil {
		return
	}
	if seconds, ok := parseSeconds(entry.Value); ok {
		s.wsPing.Restart(time.Duration(seconds) * time.Second)
	}
}

func parseSeconds(value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Lock/RLock expose the single-writer lock to handlers and the ATG so
// both sides serialize their reads/writes of Connectors and Config
// (spec.md §9's single-writer-lock note).
func (s *Station) Lock()    { s.mu.Lock() }
func (s *Station) Unlock()  { s.mu.Unlock() }
func (s *Station) RLock()   { s.mu.RLock() }
func (s *Station) RUnlock() { s.mu.RUnlock() }

// IsAvailable reports whether the station pseudo-connector (id 0) is
// currently Operative — used by the ATG's per-iteration predicate
// checks (spec.md §4.5 step 3).
func (s *Station) IsAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Connectors.Lookup(0).Availability == AvailabilityOperative
}

// IsRegistered reports whether the station has completed boot
// registration (spec.md §4.5 step 2).
func (s *Station) IsRegistered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Registration == RegistrationRegistered
}
