// Package schedule provides an embedded cron wrapper snippet.
package schedule

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// CronScript contains the cron wrapper script template.
//
//go:embed cron.sh
var CronScript string

// Render renders the cron wrapper for the current binary with the
// given command-line arguments.
func Render(args []string) (string, error) {
	// First resolve the running binary's path
	binary, err := os.Executable()
	if err != nil {
		return "", err
	}

	binary = filepath.ToSlash(binary)

	// Then use text/template to substitute binary and arguments
	tmpl, err := template.New("cron").Parse(CronScript)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Binary": binary,
		"Args":   strings.Join(args, " "),
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
