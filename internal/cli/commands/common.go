package commands

import (
	"encoding/json"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/ccollicutt/siftlog/pkg/appconfig"
	"github.com/ccollicutt/siftlog/pkg/applog"
)

// ExitCode is set by commands to indicate the process's final exit
// status, mirroring the teacher's own package-level ExitCode convention.
var ExitCode = 0

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// globalFlags holds the flags shared across every subcommand.
type globalFlags struct {
	DataDir string
	JSON    bool
	Verbose bool
	Quiet   bool
	NoColor bool
}

func (g *globalFlags) resolveDataDir() string {
	if g.DataDir != "" {
		return g.DataDir
	}
	if d := appconfig.DataDir(); d != "" {
		return d
	}
	return appconfig.DefaultDataDir()
}

func (g *globalFlags) applyColor() {
	if g.NoColor || g.Quiet {
		color.NoColor = true
	}
}

func (g *globalFlags) logger() *zap.SugaredLogger {
	if g.Quiet {
		return applog.Noop()
	}
	logger, err := applog.New(g.Verbose)
	if err != nil {
		return applog.Noop()
	}
	return logger
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResultOrJSON(asJSON bool, v interface{}, human func()) error {
	if asJSON {
		return printJSON(v)
	}
	human()
	return nil
}
