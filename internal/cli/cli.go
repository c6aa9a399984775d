// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/pipewright/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// varFlags collects repeatable -var KEY=VALUE flags.
type varFlags map[string]string

func (v varFlags) String() string {
	var parts []string
	for k, val := range v {
		parts = append(parts, k+"="+val)
	}
	return strings.Join(parts, ",")
}

func (v varFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected KEY=VALUE, got %q", s)
	}
	v[key] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("pipewright", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
pipewright - a template-driven CI/CD pipeline engine.

Usage:
  pipewright [options] [TEMPLATES_PATH]

Arguments:
  TEMPLATES_PATH
    Path to a template file or a directory of .hcl/.yaml template files.

Options:
`)
		flagSet.PrintDefaults()
	}

	templatesFlag := flagSet.String("templates", "", "Path to the template file or directory.")
	serveFlag := flagSet.Int("serve", 0, "Port for the HTTP API server. 0 runs one-shot mode instead.")
	templateFlag := flagSet.String("template", "", "Template name or id to run in one-shot mode.")
	subjectFlag := flagSet.String("subject", "", "Subject (application) id for one-shot mode.")
	versionFlag := flagSet.String("version", "", "Version for one-shot mode.")
	workersFlag := flagSet.Int("workers", 0, "Concurrent step workers per pipeline (0 = default).")
	stepTimeoutFlag := flagSet.Duration("step-timeout", 0, "Per-step timeout; exceeding it fails the step. 0 disables.")
	workdirFlag := flagSet.String("workdir", "", "Working directory for step commands.")
	strictDepsFlag := flagSet.Bool("strict-deps", false, "Reject templates with dangling dependency names.")
	strictVarsFlag := flagSet.Bool("strict-vars", false, "Reject commands with unresolved placeholders.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	variables := make(varFlags)
	flagSet.Var(variables, "var", "Variable binding KEY=VALUE for one-shot mode. Repeatable.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := *templatesFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		TemplatesPath: path,
		ServePort:     *serveFlag,
		TemplateName:  *templateFlag,
		SubjectID:     *subjectFlag,
		Version:       *versionFlag,
		Variables:     variables,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		WorkerCount:   *workersFlag,
		StepTimeout:   *stepTimeoutFlag,
		WorkDir:       *workdirFlag,
		StrictDeps:    *strictDepsFlag,
		StrictVars:    *strictVarsFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}
