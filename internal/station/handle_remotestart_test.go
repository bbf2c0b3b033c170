package station

import (
	"testing"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/core"
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/firmware"
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOutbound is a scriptable Outbound double for handler tests: no
// transport, just canned results and a call log.
type fakeOutbound struct {
	ready              bool
	authorizeResult    *AuthorizeResult
	authorizeErr       error
	startResult        *StartTransactionResult
	startErr           error
	stopResult         *StopTransactionResult
	stopErr            error
	statusNotified     []ChargePointStatus
	bootStatus         RegistrationStatus
	bootHeartbeat      int
}

func (f *fakeOutbound) SendAuthorize(string) (*AuthorizeResult, error) { return f.authorizeResult, f.authorizeErr }
func (f *fakeOutbound) SendStartTransaction(int, string) (*StartTransactionResult, error) {
	return f.startResult, f.startErr
}
func (f *fakeOutbound) SendStopTransaction(int, float64, string, StopReason) (*StopTransactionResult, error) {
	return f.stopResult, f.stopErr
}
func (f *fakeOutbound) SendStatusNotification(_ int, status ChargePointStatus, _ ...OutboundOptions) error {
	f.statusNotified = append(f.statusNotified, status)
	return nil
}
func (f *fakeOutbound) SendMeterValuesForStop(int, int, float64, ...OutboundOptions) error { return nil }
func (f *fakeOutbound) SendDiagnosticsStatusNotification(firmware.DiagnosticsStatus, ...OutboundOptions) error {
	return nil
}
func (f *fakeOutbound) SendBootNotification(string, string) (RegistrationStatus, int, error) {
	return f.bootStatus, f.bootHeartbeat, nil
}
func (f *fakeOutbound) SendHeartbeat(...OutboundOptions) error { return nil }
func (f *fakeOutbound) IsReady() bool                          { return f.ready }

func newRemoteStartTestStation() (*Station, *fakeOutbound) {
	s := NewStation(StationOptions{
		ID:             "RS01",
		ConnectorCount: 1,
		Log:            logrus.NewEntry(logrus.New()),
	})
	s.Registration = RegistrationRegistered
	out := &fakeOutbound{ready: true, startResult: &StartTransactionResult{Accepted: true, TransactionID: 9}}
	s.AttachOutbound(out)
	return s, out
}

func connID(id int) *int { return &id }

func TestRemoteStartTransactionAcceptsWhenAvailable(t *testing.T) {
	s, _ := newRemoteStartTestStation()
	req := &core.RemoteStartTransactionRequest{ConnectorId: connID(1), IdTag: "TAG1"}

	confirmation, err := s.OnRemoteStartTransaction(req)

	require.NoError(t, err)
	assert.Equal(t, types.RemoteStartStopStatusAccepted, confirmation.Status)
	assert.True(t, s.Connectors.Lookup(1).TransactionRemoteStarted)
}

func TestRemoteStartTransactionRejectsMissingConnectorId(t *testing.T) {
	s, _ := newRemoteStartTestStation()
	req := &core.RemoteStartTransactionRequest{IdTag: "TAG1"}

	confirmation, err := s.OnRemoteStartTransaction(req)

	require.NoError(t, err)
	assert.Equal(t, types.RemoteStartStopStatusRejected, confirmation.Status)
}

func TestRemoteStartTransactionRejectsWhenConnectorInoperative(t *testing.T) {
	s, out := newRemoteStartTestStation()
	s.Connectors.Lookup(1).Availability = AvailabilityInoperative

	req := &core.RemoteStartTransactionRequest{ConnectorId: connID(1), IdTag: "TAG1"}
	confirmation, err := s.OnRemoteStartTransaction(req)

	require.NoError(t, err)
	assert.Equal(t, types.RemoteStartStopStatusRejected, confirmation.Status)
	assert.Contains(t, out.statusNotified, StatusAvailable)
}

func TestRemoteStartTransactionRejectsWhenStartTransactionDenied(t *testing.T) {
	s, out := newRemoteStartTestStation()
	out.startResult = &StartTransactionResult{Accepted: false}

	req := &core.RemoteStartTransactionRequest{ConnectorId: connID(1), IdTag: "TAG1"}
	confirmation, err := s.OnRemoteStartTransaction(req)

	require.NoError(t, err)
	assert.Equal(t, types.RemoteStartStopStatusRejected, confirmation.Status)
}

func TestRemoteStopTransactionAcceptsKnownTransaction(t *testing.T) {
	s, _ := newRemoteStartTestStation()
	require.NoError(t, s.Connectors.Lookup(1).StartTransaction(42, "TAG1"))

	req := &core.RemoteStopTransactionRequest{TransactionId: 42}
	confirmation, err := s.OnRemoteStopTransaction(req)

	require.NoError(t, err)
	assert.Equal(t, types.RemoteStartStopStatusAccepted, confirmation.Status)
	assert.Equal(t, StatusFinishing, s.Connectors.Lookup(1).Status)
}

func TestRemoteStopTransactionRejectsUnknownTransaction(t *testing.T) {
	s, _ := newRemoteStartTestStation()

	req := &core.RemoteStopTransactionRequest{TransactionId: 999}
	confirmation, err := s.OnRemoteStopTransaction(req)

	require.NoError(t, err)
	assert.Equal(t, types.RemoteStartStopStatusRejected, confirmation.Status)
}
