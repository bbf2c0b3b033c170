// Package atg implements the Automatic Transaction Generator (C5):
// one instance per station, driving an independent randomized
// transaction loop per connector (spec.md §4.5).
package atg

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand"
	"sync"
	"time"

	"chargepointsim/internal/perf"
	"chargepointsim/internal/station"
)

// Fixed delay constants spec.md §5 calls out as station-descriptor-
// supplied or core-defaulted.
const (
	InitTime = 2 * time.Second
	WaitTime = 5 * time.Second
)

// Params are the per-station ATG knobs from the station descriptor's
// stationInfo.AutomaticTransactionGenerator (spec.md §6).
type Params struct {
	ProbabilityOfStart             float64
	MinDuration, MaxDuration       time.Duration
	MinDelayBetweenTwoTransactions time.Duration
	MaxDelayBetweenTwoTransactions time.Duration
	StopAfterHours                 float64
}

// ATG is the per-station workload generator.
type ATG struct {
	mu sync.Mutex

	station *station.Station
	params  Params
	sink    perf.Sink

	timeToStop     bool
	startDate      time.Time
	stopDate       time.Time
	runningDuration time.Duration

	wg sync.WaitGroup
}

// New builds an ATG for st, initially stopped (timeToStop = true per
// spec.md §4.5).
func New(st *station.Station, params Params, sink perf.Sink) *ATG {
	return &ATG{station: st, params: params, sink: sink, timeToStop: true}
}

// Start implements spec.md §4.5 start(): spawns one independent loop
// per connector id > 0.
func (a *ATG) Start() {
	a.mu.Lock()
	a.startDate = time.Now()
	stopAfter := time.Duration(a.params.StopAfterHours * float64(time.Hour))
	a.stopDate = a.startDate.Add(stopAfter - a.runningDuration)
	a.timeToStop = false
	a.mu.Unlock()

	for _, id := range a.station.Connectors.PerConnectorIDs() {
		connectorID := id
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.connectorLoop(connectorID)
		}()
	}
}

// Stop implements spec.md §4.5 stop(): emits StopTransaction for every
// connector with a running transaction, then cooperatively halts every
// loop. Callers that need the loops fully drained should follow Stop
// with Wait.
func (a *ATG) Stop(reason station.StopReason) {
	a.station.Lock()
	var running []struct {
		connectorID   int
		transactionID int
		idTag         string
		energy        float64
	}
	for _, id := range a.station.Connectors.PerConnectorIDs() {
		conn := a.station.Connectors.Lookup(id)
		if conn.TransactionStarted {
			running = append(running, struct {
				connectorID   int
				transactionID int
				idTag         string
				energy        float64
			}{id, conn.TransactionID, conn.TransactionIDTag, conn.TransactionEnergyImport})
		}
	}
	out := a.station.Outbound
	a.station.Unlock()

	if out != nil {
		for _, r := range running {
			_, err := out.SendStopTransaction(r.transactionID, r.energy, r.idTag, reason)
			if err != nil {
				a.station.Log.WithError(err).WithField("connectorId", r.connectorID).Warn("ATG stop: StopTransaction failed")
			}
		}
	}

	a.mu.Lock()
	a.timeToStop = true
	a.mu.Unlock()
}

// Wait blocks until every connector loop spawned by Start has exited.
func (a *ATG) Wait() {
	a.wg.Wait()
}

func (a *ATG) stopRequested() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timeToStop
}

func (a *ATG) pastStopDate() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return time.Now().After(a.stopDate)
}

func (a *ATG) recordRunningDuration() {
	a.mu.Lock()
	a.runningDuration = time.Since(a.startDate)
	a.mu.Unlock()
}

// cryptoFloat64 draws r ∈ [0,1) from a cryptographic RNG, per spec.md
// §4.5 step 7.
func cryptoFloat64() float64 {
	const precision = 1 << 53
	n, err := rand.Int(rand.Reader, big.NewInt(precision))
	if err != nil {
		return mathrand.Float64()
	}
	return float64(n.Int64()) / float64(precision)
}

func randomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := int64(max - min)
	return min + time.Duration(mathrand.Int63n(span))
}

// randomTag implements spec.md §4.5 step 8: pick a random authorized
// tag, or send no tag at all when none are configured.
func randomTag(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return tags[mathrand.Intn(len(tags))]
}
