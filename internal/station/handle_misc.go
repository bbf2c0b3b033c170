package station

import (
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/core"
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/firmware"
	"github.com/lorenzodonini/ocpp-go/ocpp1.6/smartcharging"
)

// OnDataTransfer satisfies core.ChargePointHandler. Vendor-specific
// data transfer isn't part of the command surface spec.md §6 names;
// every request is rejected.
func (s *Station) OnDataTransfer(request *core.DataTransferRequest) (*core.DataTransferConfirmation, error) {
	return core.NewDataTransferConfirmation(core.DataTransferStatusUnknownVendorId), nil
}

// OnUpdateFirmware satisfies firmware.ChargePointHandler. Firmware
// update is out of spec.md's named command surface; requests are
// acknowledged but never actually scheduled.
func (s *Station) OnUpdateFirmware(request *firmware.UpdateFirmwareRequest) (*firmware.UpdateFirmwareConfirmation, error) {
	s.Log.Info("UpdateFirmware received but not implemented by this simulator")
	return firmware.NewUpdateFirmwareConfirmation(), nil
}

// OnGetCompositeSchedule satisfies smartcharging.ChargePointHandler.
// Schedule computation is an explicit non-goal (spec.md §1): profiles
// are stored and returned, not composed into a schedule.
func (s *Station) OnGetCompositeSchedule(request *smartcharging.GetCompositeScheduleRequest) (*smartcharging.GetCompositeScheduleConfirmation, error) {
	return smartcharging.NewGetCompositeScheduleConfirmation(smartcharging.GetCompositeScheduleStatusRejected), nil
}
