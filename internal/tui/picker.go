package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"cf0/internal/model"
)

type workbookItem struct {
	wb model.Workbook
}

func (it workbookItem) Title() string { return it.wb.Name }

func (it workbookItem) Description() string {
	return fmt.Sprintf("%d sheets · updated %s", len(it.wb.SheetOrder), it.wb.UpdatedAt.Format("2006-01-02 15:04"))
}

func (it workbookItem) FilterValue() string { return it.wb.Name }

func workbookItems(wbs []model.Workbook) []list.Item {
	items := make([]list.Item, 0, len(wbs))
	for _, wb := range wbs {
		items = append(items, workbookItem{wb: wb})
	}
	return items
}

func newWorkbookList(wbs []model.Workbook) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(colorSelectedFg).
		BorderForeground(colorAccent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(colorMuted).
		BorderForeground(colorAccent)

	l := list.New(workbookItems(wbs), delegate, 0, 0)
	l.Title = "Workbooks"
	l.Styles.Title = lipgloss.NewStyle().Foreground(colorSurfaceFg).Bold(true)
	l.SetShowStatusBar(false)
	l.AdditionalShortHelpKeys = pickerHelpKeys
	return l
}

func pickerHelpKeys() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new workbook")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
	}
}
