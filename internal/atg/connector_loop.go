package atg

import (
	"time"

	"github.com/sirupsen/logrus"

	"chargepointsim/internal/station"
)

// connectorLoop implements the per-connector driver of spec.md §4.5.
func (a *ATG) connectorLoop(connectorID int) {
	st := a.station
	log := st.Log.WithField("connectorId", connectorID)

	for {
		if a.stopRequested() {
			return
		}

		// 1. past stopDate → stop() and break.
		if a.pastStopDate() {
			a.Stop(station.ReasonNone)
			return
		}

		// 2. station not registered → log error and break.
		if !st.IsRegistered() {
			log.Error("ATG: station not registered, halting connector loop")
			return
		}

		// 3. station not available → stop() and break.
		if !st.IsAvailable() {
			a.Stop(station.ReasonNone)
			return
		}

		// 4. connector not available → break.
		st.RLock()
		conn := st.Connectors.Lookup(connectorID)
		connAvailable := conn != nil && conn.Availability == station.AvailabilityOperative
		st.RUnlock()
		if !connAvailable {
			return
		}

		// 5. outbound not ready → sleep InitTime and retry.
		st.RLock()
		out := st.Outbound
		st.RUnlock()
		if out == nil || !out.IsReady() {
			time.Sleep(InitTime)
			continue
		}

		// 6. sleep a random inter-transaction delay.
		time.Sleep(randomDuration(a.params.MinDelayBetweenTwoTransactions, a.params.MaxDelayBetweenTwoTransactions))

		// 7. probability draw.
		if cryptoFloat64() >= a.params.ProbabilityOfStart {
			a.sink.ObserveSkip(st.ID, connectorID)
			continue
		}

		// 8-9. attempt to start a transaction.
		started := a.startTransaction(connectorID, log)
		if !started {
			time.Sleep(WaitTime)
			continue
		}

		// 10. run for a random duration, then stop if still running.
		time.Sleep(randomDuration(a.params.MinDuration, a.params.MaxDuration))
		a.stopTransactionIfRunning(connectorID, log)

		// 11. update runningDuration.
		a.recordRunningDuration()
	}
}

// startTransaction implements spec.md §4.5 step 8: optional Authorize
// gate, then StartTransaction. Returns whether a transaction is now
// running on connectorID.
func (a *ATG) startTransaction(connectorID int, log *logrus.Entry) bool {
	st := a.station
	began := time.Now()
	defer func() { a.sink.ObserveTransactionStart(st.ID, connectorID, time.Since(began)) }()

	st.RLock()
	tags := st.AuthorizedTags
	requireAuthorize := st.Features.RequireAuthorize
	st.RUnlock()

	idTag := randomTag(tags)

	st.RLock()
	out := st.Outbound
	st.RUnlock()

	if len(tags) > 0 && requireAuthorize {
		result, err := out.SendAuthorize(idTag)
		if err != nil {
			log.WithError(err).Warn("ATG: Authorize failed")
			return false
		}
		if !result.Accepted {
			log.WithField("status", result.Status).Info("ATG: Authorize not accepted")
			return false
		}
	}

	result, err := out.SendStartTransaction(connectorID, idTag)
	if err != nil {
		log.WithError(err).Warn("ATG: StartTransaction failed")
		return false
	}
	if !result.Accepted {
		log.WithField("status", result.Status).Info("ATG: StartTransaction not accepted")
		return false
	}

	st.Lock()
	if conn := st.Connectors.Lookup(connectorID); conn != nil {
		_ = conn.StartTransaction(result.TransactionID, idTag)
		conn.Status = station.StatusCharging
	}
	st.Unlock()
	if err := out.SendStatusNotification(connectorID, station.StatusCharging); err != nil {
		log.WithError(err).Warn("ATG: StatusNotification(Charging) failed")
	}
	return true
}

// stopTransactionIfRunning implements spec.md §4.5 step 10's
// "if a transaction is still running" guard and emits
// StopTransaction(reason=None).
func (a *ATG) stopTransactionIfRunning(connectorID int, log *logrus.Entry) {
	st := a.station
	began := time.Now()
	defer func() { a.sink.ObserveTransactionStop(st.ID, connectorID, time.Since(began)) }()

	st.Lock()
	conn := st.Connectors.Lookup(connectorID)
	if conn == nil || !conn.TransactionStarted {
		st.Unlock()
		return
	}
	transactionID := conn.TransactionID
	idTag := conn.TransactionIDTag
	energy := conn.TransactionEnergyImport
	st.Unlock()

	st.RLock()
	out := st.Outbound
	st.RUnlock()

	result, err := out.SendStopTransaction(transactionID, energy, idTag, station.ReasonNone)
	if err != nil {
		log.WithError(err).Warn("ATG: StopTransaction failed")
		return
	}
	if result == nil || !result.Accepted {
		log.Info("ATG: StopTransaction not accepted")
	}

	st.Lock()
	if conn := st.Connectors.Lookup(connectorID); conn != nil && conn.TransactionID == transactionID {
		conn.EndTransaction()
		conn.Status = station.StatusAvailable
	}
	st.Unlock()
	if err := out.SendStatusNotification(connectorID, station.StatusAvailable); err != nil {
		log.WithError(err).Warn("ATG: StatusNotification(Available) failed")
	}
}
