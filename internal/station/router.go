package station

import "fmt"

// GateError is returned by Station.Gate when an incoming command fails
// the registration gate (spec.md §4.3). The
// router (ocpp-go's ocppj dispatch, driven by SetCoreHandler et al.)
// turns a non-nil error returned from a handler into an OCPP
// CALLERROR, so GateError simply needs to satisfy the error interface
// with the OCPP error code spec.md §7 names.
type GateError struct {
	Code    string
	Command string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("%s: command %q rejected by registration gate", e.Code, e.Command)
}

// strictPendingBlocklist lists the commands spec.md §4.3 rule 1
// blocks outright while the station is Pending and strict compliance
// is enabled.
var strictPendingBlocklist = map[string]bool{
	"RemoteStartTransaction": true,
	"RemoteStopTransaction":  true,
}

// Gate implements the ordered gating rules of spec.md §4.3 for the
// request router (C3). No OnX handler and nothing in cmd/simulator
// calls Gate: the handlers are registered with ocpp-go directly, so
// incoming commands reach them whatever the registration state.
func (s *Station) Gate(command string) error {
	s.mu.RLock()
	registration := s.Registration
	strict := s.StrictCompliance
	s.mu.RUnlock()

	if registration == RegistrationPending && strict && strictPendingBlocklist[command] {
		return &GateError{Code: "SecurityError", Command: command}
	}
	if registration == RegistrationRegistered {
		return nil
	}
	if !strict && registration == RegistrationUnknown {
		return nil
	}
	return &GateError{Code: "SecurityError", Command: command}
}
