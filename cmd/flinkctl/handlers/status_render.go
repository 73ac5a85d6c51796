package handlers

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/rest"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	readyStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle  = lipgloss.NewStyle().Foreground(colorRed)
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	spinner   = "[..]"
	pending   = "[  ]"
)

// printStatusPlain writes a tab-aligned table for pipes and scripts.
func printStatusPlain(out io.Writer, statuses []DeploymentStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(out, "No FlinkDeployments found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAMESPACE\tNAME\tMODE\tJOBMANAGER\tJOB\tRECONCILED\tERROR")
	for _, s := range statuses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Namespace, s.Name, s.Mode, s.JobManager, orDash(jobColumn(s)), reconciledColumn(s), orDash(s.Error))
	}
	_ = w.Flush()
}

// printStatusStyled renders one block per deployment for interactive terminals.
func printStatusStyled(out io.Writer, statuses []DeploymentStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No FlinkDeployments found."))
		return
	}

	for _, s := range statuses {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %s %s\n", titleStyle.Render(s.Name), dimStyle.Render(fmt.Sprintf("(%s, %s)", s.Namespace, s.Mode)))
		fmt.Fprintln(out, "  "+strings.Repeat("─", 40))
		printStyledRow(out, "JobManager", jobManagerIndicator(s.JobManager), s.JobManager)
		if s.Mode == string(flinkv1alpha1.ClusterModeApplication) {
			printStyledRow(out, "Job", jobIndicator(s), jobColumn(s))
			if s.Savepoint != "" {
				printStyledRow(out, "Savepoint", pending, s.Savepoint)
			}
		}
		if s.Reconciled {
			printStyledRow(out, "Spec", readyStyle.Render(checkMark), "reconciled")
		} else {
			printStyledRow(out, "Spec", warningStyle.Render(spinner), "pending")
		}
		if s.Live != nil {
			printStyledRow(out, "REST", liveIndicator(s.Live), liveSummary(s.Live))
		}
		if s.Error != "" {
			printStyledRow(out, "Error", failedStyle.Render(crossMark), s.Error)
		}
	}
	fmt.Fprintln(out)
}

func printStyledRow(out io.Writer, name, indicator, value string) {
	fmt.Fprintf(out, "  %s %-12s %s\n", indicator, name, value)
}

func jobManagerIndicator(status string) string {
	switch flinkv1alpha1.JobManagerDeploymentStatus(status) {
	case flinkv1alpha1.JobManagerDeploymentReady:
		return readyStyle.Render(checkMark)
	case flinkv1alpha1.JobManagerDeploymentDeploying:
		return warningStyle.Render(spinner)
	default:
		return dimStyle.Render(pending)
	}
}

func jobIndicator(s DeploymentStatus) string {
	switch s.JobState {
	case rest.JobStateRunning:
		return readyStyle.Render(checkMark)
	case flinkv1alpha1.JobStatusSuspended:
		return dimStyle.Render(pending)
	case rest.JobStateFailed:
		return failedStyle.Render(crossMark)
	case "":
		return dimStyle.Render(pending)
	default:
		return warningStyle.Render(spinner)
	}
}

func liveIndicator(live *LiveStatus) string {
	if live.Error != "" {
		return failedStyle.Render(crossMark)
	}
	return readyStyle.Render(checkMark)
}

func liveSummary(live *LiveStatus) string {
	if live.Error != "" {
		return fmt.Sprintf("%s (%s)", live.Endpoint, live.Error)
	}
	return fmt.Sprintf("Flink %s, %d TaskManagers, %d/%d slots free, %d jobs running",
		live.FlinkVersion, live.TaskManagers, live.SlotsAvailable, live.SlotsTotal, live.JobsRunning)
}

// jobColumn shows the observed job state and, when it differs, the desired one.
func jobColumn(s DeploymentStatus) string {
	if s.DesiredState == "" {
		return ""
	}
	state := s.JobState
	if state == "" {
		state = "-"
	}
	return fmt.Sprintf("%s (want %s)", state, s.DesiredState)
}

func reconciledColumn(s DeploymentStatus) string {
	if s.Reconciled {
		return "yes"
	}
	return "pending"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
