package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/dfspanel/internal/keybinds"
)

// renderHelp renders the help screen
func (m *Model) renderHelp() string {
	title := styleTitle.Render("Keyboard Shortcuts")
	footer := "↑/↓ j/k: scroll | ESC/?: close"

	// Footer is outside the viewport so it stays visible
	fullContent := title + "\n\n" + m.helpView.View() + "\n\n" + styleSubtle.Render(footer)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Width(m.width - ModalWidthMargin).
		Height(m.height - ModalHeightMargin).
		Padding(1, 2).
		Render(fullContent)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox,
	)
}

// renderModalWithFooter renders a modal dialog with scrollable content and a fixed footer
func (m *Model) renderModalWithFooter(title, content, footer string, width, height int) string {
	return m.renderModalWithFooterAndScroll(title, content, footer, width, height, -1)
}

// renderModalWithFooterAndScroll renders a modal with footer and auto-scrolls to keep selectedLine visible
// Pass selectedLine=-1 to preserve existing scroll position
func (m *Model) renderModalWithFooterAndScroll(title, content, footer string, width, height, selectedLine int) string {
	maxWidth := m.width - ViewportPaddingHorizontal
	maxHeight := m.height - ModalHeightMarginSmall
	if width > maxWidth {
		width = maxWidth
	}
	if height > maxHeight {
		height = maxHeight
	}
	if width < 30 && m.width >= 30 {
		width = 30
	}
	if height < 8 && m.height >= 8 {
		height = 8
	}

	// Title, padding and border take ModalOverheadLines, the footer two more
	footerLines := 0
	if footer != "" {
		footerLines = 2
	}
	contentHeight := height - ModalOverheadLines - footerLines
	if contentHeight < 1 {
		contentHeight = max(height-ModalOverheadMinimal-footerLines, 1)
	}

	m.modalView.Width = max(width-ViewportPaddingHorizontal, 10)
	m.modalView.Height = contentHeight

	// Save scroll before SetContent resets it
	savedOffset := m.modalView.YOffset
	m.modalView.SetContent(content)

	if selectedLine >= 0 && m.modalView.Height > 0 {
		topVisible := savedOffset
		bottomVisible := savedOffset + m.modalView.Height - 1

		if selectedLine < topVisible {
			m.modalView.SetYOffset(selectedLine)
		} else if selectedLine > bottomVisible {
			m.modalView.SetYOffset(selectedLine - m.modalView.Height + 1)
		} else {
			m.modalView.SetYOffset(savedOffset)
		}
	} else {
		m.modalView.SetYOffset(savedOffset)
	}

	fullContent := styleTitle.Render(title) + "\n\n" + m.modalView.View()
	if footer != "" {
		fullContent += "\n\n" + styleSubtle.Render(footer)
	}

	modalBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Width(width).
		Height(height).
		Padding(1, 2).
		Render(fullContent)

	if width >= m.width-2 || height >= m.height-1 {
		return modalBox
	}

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalBox,
	)
}

func (m *Model) renderErrorDetailModal() string {
	width := max(m.width-ModalWidthMargin, 50)
	height := max(m.height-ModalOverheadMinimal, 10)

	contentWidth := width - ViewportPaddingHorizontal
	content := styleError.Render(wrapText(m.fullErrorMsg, contentWidth))

	return m.renderModalWithFooter("Error Details", content, "j/k: scroll | g/G: top/bottom | ESC: close", width, height)
}

// renderConfigure renders the connection form
func (m *Model) renderConfigure() string {
	var content strings.Builder
	content.WriteString("The generation service connects to this MySQL database.\n\n")
	content.WriteString(m.form.Render())
	content.WriteString("\n\n")

	switch {
	case m.loading:
		content.WriteString(m.spinner.View() + " Connecting...")
	case m.errorMsg != "":
		content.WriteString(styleError.Render(wrapText(m.fullErrorMsg, 60)))
	case m.statusMsg != "":
		content.WriteString(styleSubtle.Render(m.statusMsg))
	}

	ctx := keybinds.ContextConfigure
	footer := fmt.Sprintf("%s: next field | %s: previous | %s: connect",
		m.keys.KeyString(ctx, keybinds.ActionNextField),
		m.keys.KeyString(ctx, keybinds.ActionPrevField),
		m.keys.KeyString(ctx, keybinds.ActionTextSubmit))
	if m.connected {
		footer += " | " + m.keys.KeyString(ctx, keybinds.ActionTextCancel) + ": cancel"
	} else {
		footer += " | ctrl+c: quit"
	}

	return m.renderModalWithFooter("Database Connection", content.String(), footer, 76, 20)
}

// renderHistory renders the generation history modal
func (m *Model) renderHistory() string {
	title, view := "Generation History", "totals"
	selected := m.historyState.GetIndex()
	if m.historyState.GetShowStats() {
		title, view = "Generation Totals", "fetches"
		selected++ // Header row
	}

	footer := fmt.Sprintf("↑/↓ j/k: navigate | s: %s | r: refresh | C: clear all | ESC/H/q: close", view)
	if n := m.historyState.RowCount(); n > 0 {
		current := m.historyState.GetIndex() + 1
		footer += fmt.Sprintf(" [%d/%d]", current, n)
	}

	return m.renderModalWithFooterAndScroll(title, m.historyContent(), footer,
		m.width-ModalWidthMargin, m.height-ModalHeightMargin, selected)
}

// updateHistoryView keeps the modal viewport in step with the history cursor
func (m *Model) updateHistoryView() {
	m.modalView.SetContent(m.historyContent())
}

func (m *Model) historyContent() string {
	if m.historyState.GetShowStats() {
		return m.statsContent()
	}

	entries := m.historyState.GetEntries()
	if len(entries) == 0 {
		return styleSubtle.Render("No generations recorded yet")
	}

	index := m.historyState.GetIndex()
	var lines []string
	for i, e := range entries {
		status := styleSuccess.Render(markerReady)
		detail := fmt.Sprintf("%d artifacts", e.ArtifactCount)
		if e.Error != "" {
			status = styleError.Render(markerFailed)
			detail = e.Error
		}

		line := fmt.Sprintf("%s %s  %-24s %-9s %7s  %s",
			status,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Table,
			e.Mode,
			e.Duration.Round(time.Millisecond),
			detail)
		if i == index {
			line = styleSelected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// statsContent lists one row per table and mode
func (m *Model) statsContent() string {
	stats := m.historyState.GetStats()
	if len(stats) == 0 {
		return styleSubtle.Render("No generations recorded yet")
	}

	index := m.historyState.GetIndex()
	lines := []string{styleSubtle.Render(fmt.Sprintf("  %-24s %-9s %5s %6s %8s %8s  %s",
		"TABLE", "MODE", "CALLS", "FAILED", "AVG", "MAX", "LAST"))}
	for i, s := range stats {
		status := styleSuccess.Render(markerReady)
		if s.ErrorCount > 0 {
			status = styleError.Render(markerFailed)
		}

		line := fmt.Sprintf("%s %-24s %-9s %5d %6d %6.0fms %6dms  %s",
			status,
			s.Table,
			s.Mode,
			s.TotalCalls,
			s.ErrorCount,
			s.AvgDurationMs,
			s.MaxDurationMs,
			s.LastCalled.Format("2006-01-02 15:04:05"))
		if i == index {
			line = styleSelected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderHistoryClearConfirmation renders the confirmation modal for clearing all history
func (m *Model) renderHistoryClearConfirmation() string {
	count := len(m.historyState.GetEntries())
	content := "This will permanently delete ALL generation history entries.\n\n"
	content += fmt.Sprintf("Total entries to delete: %d\n\n", count)
	content += "This action cannot be undone!\n\n"
	content += "Are you sure you want to continue?"

	return m.renderModalWithFooter("Clear All History", styleWarning.Render(content), "[y]es [n]o/ESC", 60, 14)
}
