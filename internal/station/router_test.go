package station

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newGateTestStation(strict bool, registration RegistrationStatus) *Station {
	s := NewStation(StationOptions{
		ID:             "GATE01",
		ConnectorCount: 1,
		Log:            logrus.NewEntry(logrus.New()),
	})
	s.StrictCompliance = strict
	s.Registration = registration
	return s
}

func TestGateRejectsRemoteStartWhilePendingAndStrict(t *testing.T) {
	s := newGateTestStation(true, RegistrationPending)

	err := s.Gate("RemoteStartTransaction")
	assert.Error(t, err)
	gateErr, ok := err.(*GateError)
	assert.True(t, ok)
	assert.Equal(t, "SecurityError", gateErr.Code)
}

func TestGateRejectsNonBlocklistedCommandWhilePendingAndStrict(t *testing.T) {
	s := newGateTestStation(true, RegistrationPending)
	assert.Error(t, s.Gate("Heartbeat"))
}

func TestGateAllowsEverythingOnceRegistered(t *testing.T) {
	s := newGateTestStation(true, RegistrationRegistered)
	assert.NoError(t, s.Gate("RemoteStartTransaction"))
	assert.NoError(t, s.Gate("Heartbeat"))
}

func TestGateAllowsUnknownRegistrationWhenNotStrict(t *testing.T) {
	s := newGateTestStation(false, RegistrationUnknown)
	assert.NoError(t, s.Gate("RemoteStartTransaction"))
}

func TestGateRejectsUnknownRegistrationWhenStrict(t *testing.T) {
	s := newGateTestStation(true, RegistrationUnknown)
	assert.Error(t, s.Gate("Heartbeat"))
}
