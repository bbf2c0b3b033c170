package station

import "github.com/lorenzodonini/ocpp-go/ocpp1.6/firmware"

// DiagnosticsUploader is the collaborator GetDiagnostics delegates
// archive building and FTP transfer to (spec.md §1's "diagnostic log
// collector and file-archive writer", out of the core's scope). The
// core only drives the DiagnosticsStatusNotification state machine
// around it; internal/diagnostics supplies the real implementation.
type DiagnosticsUploader interface {
	// Upload builds the gzipped tar archive for stationID and ships it
	// to ftpURL, invoking onProgress for every transport progress event
	// before the transfer completes. It returns the uploaded archive's
	// file name on success.
	Upload(stationID, ftpURL string, onProgress func()) (fileName string, err error)
}

// DiagnosticsStatus mirrors firmware.DiagnosticsStatus so C1/C2 callers
// don't need to import the wire package directly.
type DiagnosticsStatus = firmware.DiagnosticsStatus

const (
	DiagnosticsIdle         = firmware.DiagnosticsStatusIdle
	DiagnosticsUploaded     = firmware.DiagnosticsStatusUploaded
	DiagnosticsUploadFailed = firmware.DiagnosticsStatusUploadFailed
	DiagnosticsUploading    = firmware.DiagnosticsStatusUploading
)
