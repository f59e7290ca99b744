package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/glintlabs/glint/internal/cli"
	"github.com/glintlabs/glint/internal/model"
	"github.com/glintlabs/glint/internal/onboarding"
)

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenLoading:
		return m.renderLoading()
	case screenNoSource:
		return m.renderNoSource()
	case screenOnboarding:
		return m.renderOnboarding()
	case screenDashboard:
		return m.renderDashboard()
	}
	return ""
}

func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		cli.TitleStyle.Render("glint"),
		"",
		m.spinner.View()+" Checking your workspace...",
	)
	return m.center(content)
}

func (m Model) renderNoSource() string {
	var b strings.Builder
	b.WriteString(cli.TitleStyle.Render("Connect your CRM") + "\n\n")
	b.WriteString("glint has no source system to analyze yet.\n")
	b.WriteString("Connect your CRM from the web app, then come back here.\n\n")
	if m.lastError != nil {
		b.WriteString(cli.ErrorStyle.Render(m.lastError.Error()) + "\n\n")
	}
	b.WriteString(cli.SubtleStyle.Render("r retry · s explore sample data · q quit"))
	return m.center(b.String())
}

func (m Model) renderOnboarding() string {
	if m.machine == nil {
		return ""
	}

	switch m.machine.Step() {
	case onboarding.StepAnalyzing:
		return m.renderAnalyzing()
	case onboarding.StepNoSource:
		return m.renderNoSource()
	case onboarding.StepSyncWait:
		return m.renderSyncWait()
	case onboarding.StepSelectFocus:
		return m.renderSelectFocus()
	case onboarding.StepRefine:
		return m.renderRefine()
	case onboarding.StepGenerating:
		return m.renderGenerating()
	case onboarding.StepReveal:
		return m.renderReveal()
	}
	return ""
}

func (m Model) renderAnalyzing() string {
	var b strings.Builder
	b.WriteString(cli.TitleStyle.Render("Analyzing your data") + "\n\n")

	for _, label := range m.machine.RevealedLabels() {
		b.WriteString(cli.SuccessStyle.Render("✓ ") + label + "\n")
	}

	if notice := m.machine.Notice(); notice != "" {
		b.WriteString("\n" + cli.ErrorStyle.Render(notice) + "\n")
		b.WriteString(cli.SubtleStyle.Render("r retry · q quit"))
	} else {
		b.WriteString("\n" + m.spinner.View() + cli.SubtleStyle.Render(" this usually takes a few seconds"))
	}
	return m.center(b.String())
}

func (m Model) renderSyncWait() string {
	var b strings.Builder
	b.WriteString(cli.TitleStyle.Render("Importing your CRM data") + "\n\n")

	snapshot := m.machine.SyncSnapshot()
	if snapshot == nil {
		b.WriteString(m.spinner.View() + " Checking sync progress...\n")
	} else {
		header := cli.TableHeaderStyle.Render(fmt.Sprintf("%-14s %-10s %10s", "ENTITY", "STATE", "RECORDS"))
		b.WriteString(header + "\n")
		for _, e := range snapshot.Entities {
			b.WriteString(fmt.Sprintf("%-14s %-21s %10d\n",
				e.Entity, cli.RenderEntityState(string(e.State)), e.Records))
		}
		b.WriteString(fmt.Sprintf("\n%s records so far\n",
			cli.BoldStyle.Render(fmt.Sprintf("%d", snapshot.TotalRecords()))))
	}

	if m.machine.SyncAcknowledged() {
		b.WriteString("\n" + cli.SuccessStyle.Render("Sync complete!"))
	} else {
		b.WriteString("\n" + m.spinner.View() + cli.SubtleStyle.Render(" first imports can take a few minutes"))
	}
	return m.center(b.String())
}

func (m Model) renderSelectFocus() string {
	var b strings.Builder
	b.WriteString(cli.TitleStyle.Render("What should glint focus on?") + "\n")
	if summary := m.machine.TrustSummary(); summary != "" {
		b.WriteString(cli.SubtitleStyle.Render(summary) + "\n")
	}
	b.WriteString("\n")

	for i, c := range m.machine.Candidates() {
		cursor := "  "
		if i == m.cursor {
			cursor = cli.SelectedStyle.Render("> ")
		}
		check := "[ ]"
		if m.machine.IsSelected(c.ID) {
			check = cli.SuccessStyle.Render("[x]")
		}
		name := c.Name
		if c.Recommended {
			name += cli.InfoStyle.Render(" ★ recommended")
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %s\n", cursor, check, name, cli.RenderTrust(string(c.Trust))))
		for _, w := range c.Warnings {
			b.WriteString("       " + cli.WarningStyle.Render("⚠ "+w) + "\n")
		}
	}

	if m.lastError != nil {
		b.WriteString("\n" + cli.ErrorStyle.Render(m.lastError.Error()) + "\n")
	}
	if notice := m.machine.Notice(); notice != "" {
		b.WriteString("\n" + cli.ErrorStyle.Render(notice) + "\n")
	}

	footer := "space toggle · enter continue · q quit"
	if m.machine.InFlight() {
		footer = m.spinner.View() + " submitting..."
	}
	b.WriteString("\n" + cli.SubtleStyle.Render(footer))
	return m.center(b.String())
}

func (m Model) renderRefine() string {
	questions := m.machine.Questions()
	if m.questionIdx >= len(questions) {
		return ""
	}
	q := questions[m.questionIdx]
	answer, _ := m.machine.Answer(q.ID)

	var b strings.Builder
	b.WriteString(cli.SubtitleStyle.Render(
		fmt.Sprintf("Question %d of %d", m.questionIdx+1, len(questions))) + "\n")
	b.WriteString(cli.TitleStyle.Render(q.Prompt) + "\n\n")

	switch q.Kind {
	case model.QuestionRankedOrder:
		// Ranked questions render in the answer's current order.
		for i, value := range answer.Values {
			cursor := "  "
			if i == m.optionIdx {
				cursor = cli.SelectedStyle.Render("> ")
			}
			b.WriteString(fmt.Sprintf("%s%d. %s\n", cursor, i+1, m.optionLabel(q, value)))
		}
		b.WriteString("\n" + cli.SubtleStyle.Render("K/J move item · enter continue"))

	default:
		for i, opt := range q.Options {
			cursor := "  "
			if i == m.optionIdx {
				cursor = cli.SelectedStyle.Render("> ")
			}
			marker := "( )"
			if q.Kind == model.QuestionMultiChoice {
				marker = "[ ]"
				if answer.Contains(opt.Value) {
					marker = cli.SuccessStyle.Render("[x]")
				}
			} else if answer.Scalar == opt.Value {
				marker = cli.SuccessStyle.Render("(•)")
			}
			b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, marker, opt.Label))
		}
		b.WriteString("\n" + cli.SubtleStyle.Render("space select · enter continue"))
	}

	if m.lastError != nil {
		b.WriteString("\n" + cli.ErrorStyle.Render(m.lastError.Error()))
	}
	return m.center(b.String())
}

func (m Model) renderGenerating() string {
	var b strings.Builder
	b.WriteString(cli.TitleStyle.Render("Building your dashboard") + "\n\n")
	b.WriteString(m.spinner.View() + " " + m.machine.CurrentProgressLabel() + "\n")
	return m.center(b.String())
}

func (m Model) renderReveal() string {
	summary := m.machine.Summary()

	var b strings.Builder
	b.WriteString(cli.TitleStyle.Render("Your dashboard is ready") + "\n\n")
	if summary != nil {
		if summary.Message != "" {
			b.WriteString(summary.Message + "\n\n")
		}
		b.WriteString(fmt.Sprintf("%s widgets · %s insights\n",
			cli.BoldStyle.Render(fmt.Sprintf("%d", summary.WidgetCount)),
			cli.BoldStyle.Render(fmt.Sprintf("%d", summary.InsightCount))))
		for _, area := range summary.FocusAreas {
			b.WriteString(cli.InfoStyle.Render("• "+area) + "\n")
		}
	}
	if m.machine.InSampleMode() {
		b.WriteString("\n" + cli.WarningStyle.Render("Sample data — not your live CRM") + "\n")
	}
	b.WriteString("\n" + cli.SubtleStyle.Render("enter open dashboard · q quit"))
	return m.center(b.String())
}

func (m Model) renderDashboard() string {
	var b strings.Builder

	title := "glint dashboard"
	if m.data.SampleMode {
		title += cli.WarningStyle.Render("  (sample data)")
	}
	b.WriteString(cli.TitleStyle.Render(title) + "\n")

	if !m.data.LastRefreshed.IsZero() {
		b.WriteString(cli.SubtitleStyle.Render(
			"last refreshed "+m.data.LastRefreshed.Format("15:04:05")) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(cli.BoldStyle.Render("Widgets") + "\n")
	if len(m.data.Widgets) == 0 {
		b.WriteString(cli.SubtleStyle.Render("  none yet") + "\n")
	}
	for _, w := range m.data.Widgets {
		b.WriteString(fmt.Sprintf("  %s %s\n", cli.InfoStyle.Render("▪"), w.Title))
	}

	b.WriteString("\n" + cli.BoldStyle.Render("Insights") + "\n")
	if len(m.data.Insights) == 0 {
		b.WriteString(cli.SubtleStyle.Render("  none yet") + "\n")
	}
	for _, ins := range m.data.Insights {
		b.WriteString(fmt.Sprintf("  %s %s\n", cli.InfoStyle.Render("•"), ins.Title))
	}

	if m.data.Usage != nil {
		b.WriteString("\n" + cli.SubtleStyle.Render(fmt.Sprintf(
			"%d records · %.1f MB synced",
			m.data.Usage.RecordsSynced,
			float64(m.data.Usage.StorageBytes)/(1<<20))) + "\n")
	}

	if m.lastError != nil {
		b.WriteString("\n" + cli.ErrorStyle.Render(m.lastError.Error()) + "\n")
	}

	footer := "c chat · ctrl+r refresh · R reconfigure · q quit"
	b.WriteString("\n" + cli.SubtleStyle.Render(footer))

	main := b.String()
	if m.chatOpen {
		chat := cli.BoxStyle.Render(cli.BoldStyle.Render("Ask glint") + "\n\n" +
			cli.SubtleStyle.Render("Chat is coming soon.\nPress c to close."))
		return lipgloss.JoinHorizontal(lipgloss.Top, main, "  ", chat)
	}
	return main
}

func (m Model) optionLabel(q model.RefinementQuestion, value string) string {
	for _, opt := range q.Options {
		if opt.Value == value {
			if opt.Label != "" {
				return opt.Label
			}
			return opt.Value
		}
	}
	return value
}

// center places content in the middle of the window when dimensions are known.
func (m Model) center(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
