// Command simulator boots a fleet of OCPP 1.6-J charge point
// simulators from a fleet descriptor: one Station + ATG per entry,
// all sharing a metrics sink and an operator control channel.
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	ocpp16 "github.com/lorenzodonini/ocpp-go/ocpp1.6"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"chargepointsim/internal/atg"
	"chargepointsim/internal/config"
	"chargepointsim/internal/diagnostics"
	"chargepointsim/internal/operator"
	"chargepointsim/internal/perf"
	"chargepointsim/internal/station"
)

func main() {
	configPath := flag.String("config", "fleet.yml", "path to the fleet descriptor")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load fleet configuration")
	}

	sink := perf.NewPrometheusSink()
	fleet := newFleet()

	go serveMetrics(cfg.MetricsBindAddr, log)
	go serveOperator(cfg.OperatorBindAddr, fleet, log)

	for _, info := range cfg.Stations {
		bootStation(info, cfg, sink, fleet, log)
	}

	select {}
}

// fleet tracks every booted station id for the operator channel's
// listChargingStations command (spec.md §6).
type fleet struct {
	ids []string
}

func newFleet() *fleet { return &fleet{} }

func (f *fleet) StationIDs() []string { return f.ids }

func (f *fleet) add(id string) { f.ids = append(f.ids, id) }

func serveMetrics(addr string, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.WithField("addr", addr).Info("starting metrics server")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("metrics server stopped")
	}
}

func serveOperator(addr string, lister operator.StationLister, log *logrus.Logger) {
	srv := operator.NewServer(lister, log.WithField("component", "operator"))
	log.WithField("addr", addr).Info("starting operator channel")
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.WithError(err).Error("operator channel stopped")
	}
}

func bootStation(info config.StationInfo, cfg *config.Config, sink perf.Sink, fleet *fleet, log *logrus.Logger) {
	entry := log.WithField("chargingStationId", info.ChargingStationId)

	st := station.NewStation(station.StationOptions{
		ID:             info.ChargingStationId,
		ConnectorCount: info.ConnectorCount,
		Features: station.Features{
			SmartCharging:             info.Features.SmartCharging,
			FirmwareManagement:        info.Features.FirmwareManagement,
			RemoteTrigger:             info.Features.RemoteTrigger,
			LocalAuthListEnabled:      info.Features.LocalAuthListEnabled,
			AuthorizeRemoteTxRequests: info.Features.AuthorizeRemoteTxRequests,
			MayAuthorizeAtRemoteStart: info.Features.MayAuthorizeAtRemoteStart,
			OCPPStrictCompliance:      info.Features.OCPPStrictCompliance,
			BeginEndMeterValues:       info.Features.BeginEndMeterValues,
			OutOfOrderEndMeterValues:  info.Features.OutOfOrderEndMeterValues,
			RequireAuthorize:          info.Features.RequireAuthorize,
		},
		ResetTime:      time.Duration(info.ResetTimeSeconds) * time.Second,
		AuthorizedTags: info.AuthorizedTags,
		Log:            entry,
	})
	st.Boot = station.BootInfo{Vendor: info.Vendor, Model: info.Model}
	st.Config.CompatLegacyClearAll = true

	// Handlers are registered unconditionally regardless of which
	// feature profiles are enabled: with no handler registered at all,
	// ocpp-go answers the action with its own "NotImplemented"
	// CALLERROR instead of the CALLRESULT statuses spec.md §4.4
	// mandates (NotSupported/Unknown/{}). Each OnX checks its own
	// feature flag and returns the correct CALLRESULT itself.
	cp := ocpp16.NewChargePoint(info.ChargingStationId, nil, nil)
	cp.SetCoreHandler(st)
	cp.SetFirmwareManagementHandler(st)
	cp.SetRemoteTriggerHandler(st)
	cp.SetSmartChargingHandler(st)

	st.AttachOutbound(station.NewChargePointOutbound(cp, entry))
	st.AttachUploader(diagnostics.New(cfg.DiagnosticsRoot))
	st.SetOnReset(func(hard bool) {
		entry.WithField("hard", hard).Info("reset teardown complete, reconnecting")
		if err := cp.Start(cfg.CentralSystemURL); err != nil {
			entry.WithError(err).Error("reconnect after reset failed")
		}
	})

	if err := cp.Start(cfg.CentralSystemURL); err != nil {
		entry.WithError(err).Error("failed to connect to central system")
		return
	}

	go func() {
		if err := st.BootSequence(0); err != nil {
			entry.WithError(err).Error("boot sequence failed")
			return
		}

		generator := atg.New(st, atg.Params{
			ProbabilityOfStart:             info.ATG.ProbabilityOfStart,
			MinDuration:                    time.Duration(info.ATG.MinDuration) * time.Second,
			MaxDuration:                    time.Duration(info.ATG.MaxDuration) * time.Second,
			MinDelayBetweenTwoTransactions: time.Duration(info.ATG.MinDelayBetweenTwoTransactions) * time.Second,
			MaxDelayBetweenTwoTransactions: time.Duration(info.ATG.MaxDelayBetweenTwoTransactions) * time.Second,
			StopAfterHours:                 info.ATG.StopAfterHours,
		}, sink)
		generator.Start()
	}()

	fleet.add(info.ChargingStationId)
}
