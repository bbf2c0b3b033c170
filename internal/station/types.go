// Package station implements the per-station OCPP 1.6-J protocol engine:
// connector state (C1), the configuration store (C2), the incoming
// request router and handlers (C3/C4), and the outbound request
// adapter (C6). The automatic transaction generator (C5) lives in
// package atg and talks to a Station through the same public surface
// the router/handlers use.
package station

import "github.com/lorenzodonini/ocpp-go/ocpp1.6/types"

// ChargePointStatus mirrors core.ChargePointStatus without importing
// the core package into the connector's pure state logic, so C1 stays
// free of wire-level concerns per spec.md §4.1 ("emits no I/O").
type ChargePointStatus string

const (
	StatusAvailable     ChargePointStatus = "Available"
	StatusPreparing     ChargePointStatus = "Preparing"
	StatusCharging      ChargePointStatus = "Charging"
	StatusSuspendedEVSE ChargePointStatus = "SuspendedEVSE"
	StatusSuspendedEV   ChargePointStatus = "SuspendedEV"
	StatusFinishing     ChargePointStatus = "Finishing"
	StatusReserved      ChargePointStatus = "Reserved"
	StatusUnavailable   ChargePointStatus = "Unavailable"
	StatusFaulted       ChargePointStatus = "Faulted"
)

// AvailabilityType is the requested/actual operative state of a
// connector or the whole station (connector 0).
type AvailabilityType string

const (
	AvailabilityOperative   AvailabilityType = "Operative"
	AvailabilityInoperative AvailabilityType = "Inoperative"
)

// RegistrationStatus is the Central-System-side acceptance state of
// this station's boot notification (spec.md §3).
type RegistrationStatus string

const (
	RegistrationUnregistered RegistrationStatus = "Unregistered"
	RegistrationPending      RegistrationStatus = "Pending"
	RegistrationRegistered   RegistrationStatus = "Registered"
	RegistrationUnknown      RegistrationStatus = "Unknown"
)

// ChargingProfilePurpose is the subset of OCPP charging-profile
// purposes the core cares about for gating (spec.md §3 invariant 4).
type ChargingProfilePurpose string

const (
	PurposeChargePointMaxProfile ChargingProfilePurpose = "ChargePointMaxProfile"
	PurposeTxDefaultProfile      ChargingProfilePurpose = "TxDefaultProfile"
	PurposeTxProfile             ChargingProfilePurpose = "TxProfile"
)

// ChargingProfile is the core's own representation of a charging
// profile: enough fields to drive the stack-replacement and clearing
// rules of spec.md §4.4, without dragging ocpp-go's richer
// types.ChargingProfile (charging schedules, recurrency kind, ...)
// into C1. The handler layer (handle_chargingprofile.go) is the only
// place that converts to/from types.ChargingProfile.
type ChargingProfile struct {
	ChargingProfileId int
	StackLevel        int
	Purpose           ChargingProfilePurpose
	TransactionId     int
	Raw               *types.ChargingProfile
}

// StopReason mirrors core.Reason for StopTransaction requests the
// core itself emits. ReasonNone is the empty string: OCPP 1.6 treats
// an absent Reason as "Local", the spec's "reason = None" default.
type StopReason string

const (
	ReasonNone          StopReason = ""
	ReasonUnlockCommand StopReason = "UnlockCommand"
	ReasonRemote        StopReason = "Remote"
)
