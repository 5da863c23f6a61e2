package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"cf0/internal/store"
)

// Run starts the interactive grid. The last-used workbook (from
// config.json) opens directly; otherwise the workbook picker shows.
func Run(s store.Store, log *zap.Logger) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(s, log)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
