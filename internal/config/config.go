// Package config loads the fleet descriptor: the Central System
// connection target plus one StationInfo per simulated charge point
// (spec.md §6 "Station descriptor (collaborator)").
package config

import (
	"log"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

var validate = validator.New()

// ATGInfo is stationInfo.AutomaticTransactionGenerator (spec.md §6).
type ATGInfo struct {
	ProbabilityOfStart             float64 `yaml:"probability_of_start" env-default:"0.2"`
	MinDuration                    int     `yaml:"min_duration_seconds" env-default:"300"`
	MaxDuration                    int     `yaml:"max_duration_seconds" env-default:"1800"`
	MinDelayBetweenTwoTransactions int     `yaml:"min_delay_seconds" env-default:"10"`
	MaxDelayBetweenTwoTransactions int     `yaml:"max_delay_seconds" env-default:"60"`
	StopAfterHours                 float64 `yaml:"stop_after_hours" env-default:"24"`
}

// FeatureProfiles records which OCPP 1.6 feature profiles and
// behavioral flags a station descriptor enables (spec.md §6).
type FeatureProfiles struct {
	SmartCharging             bool `yaml:"smart_charging"`
	FirmwareManagement        bool `yaml:"firmware_management"`
	RemoteTrigger             bool `yaml:"remote_trigger" env-default:"true"`
	LocalAuthListEnabled      bool `yaml:"local_auth_list_enabled"`
	AuthorizeRemoteTxRequests bool `yaml:"authorize_remote_tx_requests"`
	MayAuthorizeAtRemoteStart bool `yaml:"may_authorize_at_remote_start"`
	OCPPStrictCompliance      bool `yaml:"ocpp_strict_compliance"`
	BeginEndMeterValues       bool `yaml:"begin_end_meter_values"`
	OutOfOrderEndMeterValues  bool `yaml:"out_of_order_end_meter_values"`
	RequireAuthorize          bool `yaml:"require_authorize"`
}

// StationInfo is one simulated charge point (spec.md §6).
type StationInfo struct {
	ChargingStationId string   `yaml:"charging_station_id" validate:"required"`
	ConnectorCount    int      `yaml:"connector_count" env-default:"2" validate:"min=1"`
	Vendor            string   `yaml:"vendor" env-default:"chargepointsim" validate:"required"`
	Model             string   `yaml:"model" env-default:"simulator" validate:"required"`
	ResetTimeSeconds  int      `yaml:"reset_time_seconds" env-default:"5" validate:"min=0"`
	AuthorizedTags    []string `yaml:"authorized_tags"`

	Features FeatureProfiles `yaml:"features"`
	ATG      ATGInfo         `yaml:"automatic_transaction_generator"`
}

// Config is the fleet-wide descriptor: one Central System endpoint
// shared by every simulated station.
type Config struct {
	CentralSystemURL string        `yaml:"central_system_url" env-default:"ws://localhost:8180/steve/websocket/CentralSystemService" validate:"required,url"`
	OperatorBindAddr string        `yaml:"operator_bind_addr" env-default:"0.0.0.0:9010" validate:"required"`
	MetricsBindAddr  string        `yaml:"metrics_bind_addr" env-default:"0.0.0.0:9090" validate:"required"`
	DiagnosticsRoot  string        `yaml:"diagnostics_root" env-default:"." validate:"required"`
	Stations         []StationInfo `yaml:"stations" validate:"required,min=1,dive"`
}

var (
	instance *Config
	once     sync.Once
)

// Load reads the fleet descriptor from path, memoized for the
// process lifetime (grounded on the teacher pack's
// sync.Once-guarded singleton).
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		log.Println("reading fleet configuration from", path)
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			log.Println(desc)
			instance = nil
			return
		}
		if err = validate.Struct(instance); err != nil {
			instance = nil
		}
	})
	return instance, err
}
