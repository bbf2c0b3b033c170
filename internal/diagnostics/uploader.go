package diagnostics

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Uploader implements station.DiagnosticsUploader: it builds the log
// archive rooted at Root and ships it over FTP.
type Uploader struct {
	Root string
}

// New returns an Uploader that searches root for *.log files.
func New(root string) *Uploader {
	return &Uploader{Root: root}
}

// Upload implements station.DiagnosticsUploader (spec.md §4.4
// GetDiagnostics): build the archive, dial the FTP target, STOR the
// archive at the URL's path, and always clean up the local temp file
// and the FTP connection, on every exit path.
func (u *Uploader) Upload(stationID, ftpURL string, onProgress func()) (string, error) {
	target, err := url.Parse(ftpURL)
	if err != nil {
		return "", fmt.Errorf("diagnostics: parse location: %w", err)
	}

	path, name, err := buildArchive(u.Root, stationID)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	client, err := dialFTP(target)
	if err != nil {
		return "", err
	}
	defer client.Close()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("diagnostics: reopen archive: %w", err)
	}
	defer f.Close()

	remotePath := strings.TrimSuffix(target.Path, "/") + "/" + name
	if err := client.store(remotePath, f, onProgress); err != nil {
		return "", err
	}
	return name, nil
}
