// Package output provides functions to print messages with optional color formatting
package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

const (
	Plain   = color.FgWhite
	Success = color.FgGreen
	Warning = color.FgYellow
	Error   = color.FgRed
)

const timeFormat = "2006-01-02 15:04:05"

var maybeColorize func(kind color.Attribute, tmpl string, a ...any) string

// InitColors sets up color functions based on environment
func InitColors(isColorDisabled bool) {
	if color.NoColor || isColorDisabled {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return fmt.Sprintf(tmpl, a...)
		}
	} else {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return color.New(kind).SprintfFunc()(tmpl, a...)
		}
	}
}

// PrintMessage formats a message with color (if enabled) and a trailing newline
func PrintMessage(kind color.Attribute, tmpl string, a ...any) string {
	if maybeColorize == nil || kind == Plain {
		return fmt.Sprintf(tmpl+"\n", a...)
	}
	return fmt.Sprintln(maybeColorize(kind, tmpl, a...))
}

// FprintPlain writes an uncolored message to the command's stdout
func FprintPlain(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(Plain, tmpl, a...))
	return err
}

// FprintSuccess writes a success message to the command's stdout
func FprintSuccess(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(Success, tmpl, a...))
	return err
}

// FprintWarning writes a warning to the command's stderr
func FprintWarning(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.ErrOrStderr(), PrintMessage(Warning, tmpl, a...))
	return err
}

// FprintError writes an error to the command's stderr
func FprintError(cmd *cobra.Command, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.ErrOrStderr(), PrintMessage(Error, tmpl, a...))
	return err
}

func PrintTable(header []string, data [][]string) (string, error) {
	buf := strings.Builder{}

	table := tablewriter.NewTable(
		&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines: tw.Lines{
					ShowHeaderLine: tw.Off,
				},
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: []tw.Align{tw.AlignRight, tw.AlignLeft}},
			},
		}))

	if len(header) > 0 {
		table.Header(header)
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("bulk adding data to table: %w", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}

// PrintRunDetails renders the run header and one row per catalog entry.
func PrintRunDetails(run *domain.Run) (string, error) {
	details := [][]string{
		{"Run ID", run.ID.String()},
		{"Branch", run.Branch.String()},
		{"Tag", valueOrDash(run.Tag)},
		{"Host", hostOrDash(run.Host)},
		{"Dry Run", strconv.FormatBool(run.DryRun)},
		{"Status", colorizeRunStatus(run.Status)},
		{"Started At", run.StartedAt.Format(timeFormat)},
		{"Duration", formatDuration(run.StartedAt, run.FinishedAt)},
	}
	if run.Error != "" {
		details = append(details, []string{"Error", run.Error})
	}

	head, err := PrintTable([]string{}, details)
	if err != nil {
		return "", fmt.Errorf("printing run details table: %w", err)
	}

	if len(run.Outcomes) == 0 {
		return head, nil
	}

	outcomes, err := PrintOutcomeList(run.Outcomes)
	if err != nil {
		return "", err
	}
	return head + "\n" + outcomes, nil
}

func PrintOutcomeList(outcomes []domain.Outcome) (string, error) {
	header := []string{"Application", "Image", "Service", "Status", "Details"}
	var data [][]string
	for _, o := range outcomes {
		data = append(data, []string{
			o.Application.ShortName,
			o.Application.Image(),
			o.Service,
			colorizeOutcomeStatus(o.Status),
			outcomeDetails(o),
		})
	}

	table, err := PrintTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing outcome table: %w", err)
	}
	return table, nil
}

func PrintRunList(runs []*domain.Run) (string, error) {
	if len(runs) == 0 {
		return PrintMessage(Plain, "No deployment runs found."), nil
	}

	header := []string{"ID", "Started At", "Branch", "Tag", "Host", "Deployed", "Status"}
	var data [][]string
	for _, run := range runs {
		deployed := fmt.Sprintf("%d/%d", run.Deployed(), len(run.Outcomes))
		if run.DryRun {
			deployed += " (dry run)"
		}
		data = append(data, []string{
			run.ID.String(),
			run.StartedAt.Format(timeFormat),
			run.Branch.String(),
			valueOrDash(run.Tag),
			hostOrDash(run.Host),
			deployed,
			colorizeRunStatus(run.Status),
		})
	}

	table, err := PrintTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing run list table: %w", err)
	}
	return table, nil
}

// MaskSecret hides all but the edges of a secret value.
func MaskSecret(value string) string {
	switch n := len(value); {
	case n == 0:
		return "(not set)"
	case n <= 2:
		return strings.Repeat("*", n)
	case n <= 8:
		return value[:1] + strings.Repeat("*", n-2) + value[n-1:]
	default:
		return value[:3] + strings.Repeat("*", n-6) + value[n-3:]
	}
}

func outcomeDetails(o domain.Outcome) string {
	switch {
	case o.Status == domain.OutcomeFailed && o.ExitCode != 0:
		return fmt.Sprintf("exit code %d", o.ExitCode)
	case o.Error != "":
		return o.Error
	case o.Status == domain.OutcomeSkipped:
		return "tag not found"
	default:
		return ""
	}
}

func colorizeRunStatus(status domain.RunStatus) string {
	switch status {
	case domain.RunStatusSucceeded:
		return colorize(Success, status.String())
	case domain.RunStatusNoImagesDeployed:
		return colorize(Warning, status.String())
	case domain.RunStatusFailed:
		return colorize(Error, status.String())
	default:
		return status.String()
	}
}

func colorizeOutcomeStatus(status domain.OutcomeStatus) string {
	switch status {
	case domain.OutcomeSucceeded, domain.OutcomePlanned:
		return colorize(Success, status.String())
	case domain.OutcomeSkipped:
		return colorize(Warning, status.String())
	case domain.OutcomeFailed:
		return colorize(Error, status.String())
	default:
		return status.String()
	}
}

func colorize(kind color.Attribute, s string) string {
	if maybeColorize == nil {
		return s
	}
	return maybeColorize(kind, "%s", s)
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func hostOrDash(h domain.Host) string {
	if h.Hostname == "" {
		return "-"
	}
	return h.FQDN()
}

func formatDuration(start, end time.Time) string {
	if end.IsZero() || end.Before(start) {
		return "-"
	}
	return end.Sub(start).Round(time.Second).String()
}

// CLI flag for disabling color output

// NoColor is a flag that can be used to disable colored output in the CLI.
var NoColor = &noColorFlag{set: false}

type noColorFlag struct {
	set bool
}

func (f *noColorFlag) Set(value string) error {
	// This is a boolean flag, so we ignore the value and just mark it as set
	f.set = true
	return nil
}

func (f *noColorFlag) String() string {
	if f.set {
		return "true"
	}
	return "false"
}

func (f *noColorFlag) Type() string {
	return "bool"
}

// IsSet returns true if the --no-color flag was explicitly set
func (f *noColorFlag) IsSet() bool {
	return f.set
}

// IsBoolFlag tells pflag this is a boolean flag (no argument required)
func (f *noColorFlag) IsBoolFlag() bool {
	return true
}
