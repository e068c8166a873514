// Package converter launches the external osm_converter executable that
// turns a .osm.pbf extract into the streets/OSM binary pair this module's
// loaders read (§6.4). The converter's own internals are out of scope;
// this package only owns the process boundary.
package converter

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/NoahdaBoat/gisevo/internal/geoerr"
	"github.com/NoahdaBoat/gisevo/internal/obslog"
)

// Config configures a Launcher.
type Config struct {
	// ConverterPath is the absolute path to the osm_converter executable,
	// normally GISEVO_OSM_CONVERTER from internal/gisevoconfig.
	ConverterPath string
	Logger        obslog.Logger
}

// Launcher runs the osm_converter subprocess.
type Launcher struct {
	path string
	log  obslog.Logger
}

// New constructs a Launcher. ConverterPath must be non-empty; Convert
// returns a CodeNotFound error at call time if the executable doesn't exist.
func New(config Config) *Launcher {
	log := config.Logger
	if log == nil {
		log = obslog.Noop{}
	}
	return &Launcher{path: config.ConverterPath, log: log}
}

// Options describes one conversion request.
type Options struct {
	InputPath string // path to the source .osm.pbf
	OutputDir string
	MapName   string // slug used to name the output streets/OSM file pair
	Force     bool   // overwrite an existing output pair
}

// Convert runs `osm_converter --input <pbf> --output-dir <dir> --map-name
// <slug> --quiet` (plus --force when requested) and waits for it to exit.
// Exit code 0 is success; any other exit code or launch failure returns an
// error whose detail carries stderr's first line as the summary, per the
// converter's documented contract that stdout is informational and
// stderr's first line is the failure summary.
func (l *Launcher) Convert(ctx context.Context, opts Options) error {
	if l.path == "" {
		return pkgerrors.Wrap(
			geoerr.New(geoerr.CodeNotFound, "converter path not configured"),
			"launch osm converter",
		)
	}

	args := []string{
		"--input", opts.InputPath,
		"--output-dir", opts.OutputDir,
		"--map-name", opts.MapName,
		"--quiet",
	}
	if opts.Force {
		args = append(args, "--force")
	}

	cmd := exec.CommandContext(ctx, l.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		if errors.Is(runErr, fs.ErrNotExist) || errors.Is(runErr, exec.ErrNotFound) {
			return geoerr.Wrap(runErr, geoerr.CodeNotFound, "osm converter executable not found").
				WithDetail("path", l.path)
		}
		summary := firstLine(stderr.String())
		l.log.Event(obslog.LevelError, "converter subprocess failed",
			obslog.F("map", opts.MapName),
			obslog.F("input", opts.InputPath),
			obslog.F("stderr", summary))
		return geoerr.Wrap(runErr, geoerr.CodeIO, "osm converter subprocess failed").
			WithDetail("map", opts.MapName).
			WithDetail("stderr", summary)
	}

	l.log.Event(obslog.LevelInfo, "converter subprocess succeeded",
		obslog.F("map", opts.MapName),
		obslog.F("output_dir", opts.OutputDir))
	return nil
}

// firstLine returns s up to its first newline, trimmed, or s itself if it
// has none.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
