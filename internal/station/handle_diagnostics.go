package station

import (
	"net/url"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/firmware"
)

// OnGetDiagnostics implements spec.md §4.4 GetDiagnostics: only ftp://
// locations are supported; the archive build and transfer are
// delegated to the station's DiagnosticsUploader, with progress
// surfaced as DiagnosticsStatusNotification events.
func (s *Station) OnGetDiagnostics(request *firmware.GetDiagnosticsRequest) (*firmware.GetDiagnosticsConfirmation, error) {
	s.RLock()
	firmwareEnabled := s.Features.FirmwareManagement
	out := s.Outbound
	uploader := s.Uploader
	stationID := s.ID
	s.RUnlock()

	if !firmwareEnabled {
		return firmware.NewGetDiagnosticsConfirmation(), nil
	}

	parsed, err := url.Parse(request.Location)
	if err != nil || parsed.Scheme != "ftp" {
		if out != nil {
			_ = out.SendDiagnosticsStatusNotification(DiagnosticsUploadFailed)
		}
		return firmware.NewGetDiagnosticsConfirmation(), nil
	}

	if uploader == nil {
		if out != nil {
			_ = out.SendDiagnosticsStatusNotification(DiagnosticsUploadFailed)
		}
		return firmware.NewGetDiagnosticsConfirmation(), nil
	}

	onProgress := func() {
		if out != nil {
			_ = out.SendDiagnosticsStatusNotification(DiagnosticsUploading)
		}
	}

	fileName, err := uploader.Upload(stationID, request.Location, onProgress)
	if err != nil {
		s.Log.WithError(err).Warn("diagnostics upload failed")
		if out != nil {
			_ = out.SendDiagnosticsStatusNotification(DiagnosticsUploadFailed)
		}
		return firmware.NewGetDiagnosticsConfirmation(), nil
	}

	if out != nil {
		_ = out.SendDiagnosticsStatusNotification(DiagnosticsUploaded)
	}
	confirmation := firmware.NewGetDiagnosticsConfirmation()
	confirmation.FileName = fileName
	return confirmation, nil
}
