package summary

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/instaflow/internal/application"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

type RenderOptions struct {
	// ShowArtifacts lists the ledger files written by each session.
	ShowArtifacts bool
	Elapsed       time.Duration
}

func renderView(report application.BatchReport, opts RenderOptions, s styles) string {
	succeeded, failed := report.Totals()
	header := fmt.Sprintf("sessions: %d  succeeded: %d  failed: %d", len(report.Sessions), succeeded, failed)
	if opts.Elapsed > 0 {
		header += fmt.Sprintf("  elapsed: %s", opts.Elapsed.Round(time.Second))
	}

	lines := []string{
		s.title.Render("Follow/Unfollow Run " + report.RunID),
		s.header.Render(header),
	}

	if len(report.Sessions) == 0 {
		lines = append(lines, s.empty.Render("No sessions ran."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, session := range report.Sessions {
		lines = append(lines, s.section.Render(renderSession(session, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSession(session application.SessionReport, opts RenderOptions, s styles) string {
	parts := []string{s.session.Render(fmt.Sprintf("%s (%s)", session.Account, session.SessionID))}

	if session.Total() == 0 {
		parts = append(parts, s.empty.Render("no actions recorded"))
	} else {
		parts = append(parts, lipgloss.JoinHorizontal(
			lipgloss.Top,
			renderProgressBar(session.Succeeded, session.Total(), barWidth, s),
			" ",
			s.detail.Render(fmt.Sprintf("%d ok / %d failed", session.Succeeded, session.Failed)),
		))
	}

	if session.Err != nil {
		parts = append(parts, s.failure.Render("error: "+session.Err.Error()))
	}

	if opts.ShowArtifacts {
		for _, artifact := range session.Artifacts {
			parts = append(parts, s.artifact.Render("  "+artifact))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderProgressBar fills the bar with the success share of total.
func renderProgressBar(succeeded, total, width int, s styles) string {
	if width <= 0 || total <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * float64(succeeded) / float64(total)))
	filled = min(max(filled, 0), width)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("x", width-filled)),
		s.barBracket.Render("]"),
	)
}
