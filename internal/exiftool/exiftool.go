// Package exiftool shells out to ExifTool to write sidecar metadata into
// placed media files.
package exiftool

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"takesort/internal/logging"
	"takesort/internal/services"
)

// Tags are written only where the file does not already carry them. The
// condition keeps ExifTool from clobbering embedded capture times.
const applyCondition = `($Filetype eq "MP4" and not $quicktime:TrackCreateDate) or ($Filetype eq "MP4" and $quicktime:TrackCreateDate eq "0000:00:00 00:00:00") or ($Filetype eq "JPEG" and not $exif:DateTimeOriginal) or ($Filetype eq "PNG" and not $PNG:CreationTime)`

// Tag assignments pull the capture timestamp out of the sidecar, converted
// from epoch seconds. QuickTime dates are stored as UTC by convention.
var applyTags = []string{
	"-AllDates<${PhotoTakenTimeTimestamp;$_=ConvertUnixTime($_,1)}",
	"-XMP-Exif:DateTimeOriginal<${PhotoTakenTimeTimestamp;$_=ConvertUnixTime($_,1)}",
	"-PNG:CreationTime<${PhotoTakenTimeTimestamp;$_=ConvertUnixTime($_,1)}",
	"-QuickTime:TrackCreateDate<${PhotoTakenTimeTimestamp;$_=ConvertUnixTime($_,0)}",
	"-QuickTime:TrackModifyDate<${PhotoTakenTimeTimestamp;$_=ConvertUnixTime($_,0)}",
	"-QuickTime:MediaCreateDate<${PhotoTakenTimeTimestamp;$_=ConvertUnixTime($_,0)}",
	"-QuickTime:MediaModifyDate<${PhotoTakenTimeTimestamp;$_=ConvertUnixTime($_,0)}",
}

// Applicator runs one ExifTool invocation per placed file.
type Applicator struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

func New(binary string, timeout time.Duration, logger *slog.Logger) *Applicator {
	return &Applicator{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "exiftool"),
	}
}

// Available reports whether the configured binary resolves on PATH.
func (a *Applicator) Available() bool {
	_, err := exec.LookPath(a.binary)
	return err == nil
}

// Apply copies metadata from the sidecar into the destination file in place.
// A file that already carries its capture metadata fails the -if condition;
// that is not an error. The destination file is left as copied whenever
// ExifTool fails.
func (a *Applicator) Apply(ctx context.Context, sidecarPath, destPath string) error {
	runCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	args := make([]string, 0, len(applyTags)+6)
	args = append(args, "-if", applyCondition, "-tagsfromfile", sidecarPath)
	args = append(args, applyTags...)
	args = append(args, "-overwrite_original", destPath)

	cmd := exec.CommandContext(runCtx, a.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		a.logger.Debug("metadata applied", logging.String(logging.FieldDest, destPath))
		return nil
	}

	if runCtx.Err() != nil && ctx.Err() == nil {
		return services.Wrap(services.ErrTimeout, "apply", "exiftool", "invocation deadline exceeded", runCtx.Err())
	}

	// Exit status 2 with "files failed condition" means the file already has
	// its metadata; nothing to write.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && strings.Contains(stdout.String(), "files failed condition") {
		a.logger.Debug("metadata already present", logging.String(logging.FieldDest, destPath))
		return nil
	}

	detail := strings.TrimSpace(stderr.String())
	if detail == "" {
		detail = strings.TrimSpace(stdout.String())
	}
	return services.Wrap(services.ErrExternalTool, "apply", "exiftool", detail, err)
}
