// Package diagnostics implements the GetDiagnostics collaborator
// (spec.md §1, §4.4): collecting log files into a gzipped tar archive
// and shipping it to an FTP server, reporting progress back to the
// core via a callback so it can emit DiagnosticsStatusNotification.
package diagnostics

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// buildArchive collects every *.log file under root into a gzipped
// tar archive named "<stationID>_logs.tar.gz" in the system temp
// directory, per spec.md §4.4. It returns the archive's path on disk
// and its bare file name.
func buildArchive(root, stationID string) (path, name string, err error) {
	name = fmt.Sprintf("%s_logs.tar.gz", stationID)
	path = filepath.Join(os.TempDir(), name)

	out, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("diagnostics: create archive: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	walkErr := filepath.Walk(root, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".log") {
			return nil
		}
		return appendFile(tw, p, info)
	})

	closeErr := tw.Close()
	gzErr := gz.Close()

	if walkErr != nil || closeErr != nil || gzErr != nil {
		os.Remove(path)
	}
	switch {
	case walkErr != nil:
		return "", "", fmt.Errorf("diagnostics: collect logs: %w", walkErr)
	case closeErr != nil:
		return "", "", fmt.Errorf("diagnostics: close tar writer: %w", closeErr)
	case gzErr != nil:
		return "", "", fmt.Errorf("diagnostics: close gzip writer: %w", gzErr)
	}
	return path, name, nil
}

func appendFile(tw *tar.Writer, path string, info os.FileInfo) error {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = info.Name()
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}
