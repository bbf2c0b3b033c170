package station

import (
	"fmt"
	"time"

	ocpp16 "github.com/lorenzodonini/ocpp-go/ocpp1.6"
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/core"
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/firmware"
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/types"
	"github.com/sirupsen/logrus"
)

// retryFlushInterval is how often a ChargePointOutbound retries its
// buffered notifications once the transport is connected again.
const retryFlushInterval = 2 * time.Second

// pendingBufferSize bounds how many buffered notifications a
// ChargePointOutbound will hold while the transport is down; beyond
// this, further failures are dropped with a warning rather than
// growing without bound.
const pendingBufferSize = 64

// OutboundOptions mirrors spec.md §4.6's send options. TriggerMessage
// marks a one-shot send issued from TriggerMessage handling, which
// skips whatever retry/buffering policy a production transport would
// apply; SkipBufferingOnError means the adapter must not queue the
// send for a retry if the transport is currently down.
type OutboundOptions struct {
	SkipBufferingOnError bool
	TriggerMessage       bool
}

// AuthorizeResult is the core's own view of an Authorize confirmation:
// only whether the Central System accepted the idTag.
type AuthorizeResult struct {
	Accepted bool
	Status   string
}

// StartTransactionResult is the core's own view of a StartTransaction
// confirmation.
type StartTransactionResult struct {
	Accepted      bool
	Status        string
	TransactionID int
}

// StopTransactionResult is the core's own view of a StopTransaction
// confirmation.
type StopTransactionResult struct {
	Accepted bool
	Status   string
}

// Outbound is the uniform interface the core (C4 handlers, C5 ATG)
// uses to emit OCPP requests toward the Central System (C6, spec.md
// §4.6). The core never touches the WebSocket transport directly —
// it only calls through this interface, which the station wires to a
// real ocpp16.ChargePoint.
//
// This library collapses spec.md's separate "sendResponse" primitive
// into the handler's own return value: an OnX(request) (confirmation,
// error) handler's return IS the CALLRESULT, so no explicit
// SendResponse method is needed here.
type Outbound interface {
	SendAuthorize(idTag string) (*AuthorizeResult, error)
	SendStartTransaction(connectorID int, idTag string) (*StartTransactionResult, error)
	SendStopTransaction(transactionID int, meterStop float64, idTag string, reason StopReason) (*StopTransactionResult, error)
	// The remaining sends, except SendBootNotification, are
	// fire-and-forget notifications: spec.md §4.6's OutboundOptions only
	// applies to these. A failed send is queued for a background retry
	// unless opts says otherwise. SendBootNotification returns the
	// registration result synchronously and is never buffered.
	SendStatusNotification(connectorID int, status ChargePointStatus, opts ...OutboundOptions) error
	SendMeterValuesForStop(connectorID, transactionID int, energyImport float64, opts ...OutboundOptions) error
	SendDiagnosticsStatusNotification(status firmware.DiagnosticsStatus, opts ...OutboundOptions) error
	SendBootNotification(vendor, model string) (status RegistrationStatus, heartbeatInterval int, err error)
	SendHeartbeat(opts ...OutboundOptions) error
	// IsReady reports whether the underlying transport has completed
	// its handshake with the Central System (spec.md §4.5 step 5).
	IsReady() bool
}

// ChargePointOutbound is the production Outbound backed by ocpp-go's
// charge-point role, grounded on the teacher's callback-based send
// pattern (Callbacks.go), inverted from the Central-System direction
// to the Charge-Point direction ocpp-go's ChargePoint.* convenience
// methods already expose as blocking calls. Fire-and-forget
// notifications that fail while the transport is down are buffered
// and retried by a background flush loop, implementing spec.md §4.6's
// OutboundOptions contract.
type ChargePointOutbound struct {
	cp  ocpp16.ChargePoint
	log *logrus.Entry

	pending chan func() error
}

// NewChargePointOutbound wraps an already-configured ocpp16.ChargePoint
// and starts its retry-buffer flush loop.
func NewChargePointOutbound(cp ocpp16.ChargePoint, log *logrus.Entry) *ChargePointOutbound {
	o := &ChargePointOutbound{cp: cp, log: log, pending: make(chan func() error, pendingBufferSize)}
	go o.flushLoop()
	return o
}

func (o *ChargePointOutbound) IsReady() bool {
	return o.cp != nil && o.cp.IsConnected()
}

// flushLoop retries buffered notifications once the transport is
// connected again, oldest first, one attempt per tick.
func (o *ChargePointOutbound) flushLoop() {
	ticker := time.NewTicker(retryFlushInterval)
	defer ticker.Stop()
	for range ticker.C {
		if !o.IsReady() {
			continue
		}
		select {
		case send := <-o.pending:
			if err := send(); err != nil {
				o.log.WithError(err).Warn("buffered notification retry failed, requeueing")
				o.enqueue(send)
			}
		default:
		}
	}
}

// enqueue buffers a failed send for later retry, dropping it with a
// warning if the buffer is already full.
func (o *ChargePointOutbound) enqueue(send func() error) {
	select {
	case o.pending <- send:
	default:
		o.log.Warn("outbound retry buffer full, dropping notification")
	}
}

// dispatch runs send now; on failure it buffers a retry unless opts
// opts out of buffering (a TriggerMessage-originated send, or an
// explicit SkipBufferingOnError), in which case the error is returned
// to the caller instead.
func (o *ChargePointOutbound) dispatch(send func() error, opts []OutboundOptions) error {
	err := send()
	if err == nil {
		return nil
	}
	var opt OutboundOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.SkipBufferingOnError || opt.TriggerMessage {
		return err
	}
	o.enqueue(send)
	return nil
}

func (o *ChargePointOutbound) SendAuthorize(idTag string) (*AuthorizeResult, error) {
	confirmation, err := o.cp.Authorize(idTag)
	if err != nil {
		return nil, err
	}
	status := confirmation.IdTagInfo.Status
	return &AuthorizeResult{Accepted: status == types.AuthorizationStatusAccepted, Status: string(status)}, nil
}

func (o *ChargePointOutbound) SendStartTransaction(connectorID int, idTag string) (*StartTransactionResult, error) {
	confirmation, err := o.cp.StartTransaction(connectorID, idTag, 0, types.NewDateTime(time.Now()))
	if err != nil {
		return nil, err
	}
	status := confirmation.IdTagInfo.Status
	return &StartTransactionResult{
		Accepted:      status == types.AuthorizationStatusAccepted,
		Status:        string(status),
		TransactionID: confirmation.TransactionId,
	}, nil
}

func (o *ChargePointOutbound) SendStopTransaction(transactionID int, meterStop float64, idTag string, reason StopReason) (*StopTransactionResult, error) {
	opt := func(request *core.StopTransactionRequest) {
		request.IdTag = idTag
		if reason != ReasonNone {
			request.Reason = core.Reason(reason)
		}
	}
	confirmation, err := o.cp.StopTransaction(int(meterStop), types.NewDateTime(time.Now()), transactionID, opt)
	if err != nil {
		return nil, err
	}
	result := &StopTransactionResult{Accepted: true, Status: "Accepted"}
	if confirmation.IdTagInfo != nil {
		result.Accepted = confirmation.IdTagInfo.Status == types.AuthorizationStatusAccepted
		result.Status = string(confirmation.IdTagInfo.Status)
	}
	return result, nil
}

func (o *ChargePointOutbound) SendStatusNotification(connectorID int, status ChargePointStatus, opts ...OutboundOptions) error {
	return o.dispatch(func() error {
		_, err := o.cp.StatusNotification(connectorID, core.NoError, core.ChargePointStatus(status))
		return err
	}, opts)
}

func (o *ChargePointOutbound) SendMeterValuesForStop(connectorID, transactionID int, energyImport float64, opts ...OutboundOptions) error {
	return o.dispatch(func() error {
		sample := types.SampledValue{
			Value:     fmt.Sprintf("%.2f", energyImport),
			Measurand: types.MeasurandEnergyActiveImportRegister,
			Context:   types.ReadingContextTransactionEnd,
		}
		meterValue := types.MeterValue{Timestamp: types.NewDateTime(time.Now()), SampledValue: []types.SampledValue{sample}}
		_, err := o.cp.MeterValues(connectorID, []types.MeterValue{meterValue}, func(request *core.MeterValuesRequest) {
			request.TransactionId = &transactionID
		})
		return err
	}, opts)
}

func (o *ChargePointOutbound) SendDiagnosticsStatusNotification(status firmware.DiagnosticsStatus, opts ...OutboundOptions) error {
	return o.dispatch(func() error {
		_, err := o.cp.DiagnosticsStatusNotification(status)
		return err
	}, opts)
}

func (o *ChargePointOutbound) SendBootNotification(vendor, model string) (RegistrationStatus, int, error) {
	confirmation, err := o.cp.BootNotification(model, vendor)
	if err != nil {
		return RegistrationUnregistered, 0, err
	}
	switch confirmation.Status {
	case core.RegistrationStatusAccepted:
		return RegistrationRegistered, confirmation.Interval, nil
	case core.RegistrationStatusPending:
		return RegistrationPending, confirmation.Interval, nil
	default:
		return RegistrationUnregistered, confirmation.Interval, nil
	}
}

func (o *ChargePointOutbound) SendHeartbeat(opts ...OutboundOptions) error {
	return o.dispatch(func() error {
		_, err := o.cp.Heartbeat()
		return err
	}, opts)
}
