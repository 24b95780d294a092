package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/dfspanel/internal/types"
)

var errPromptCancelled = errors.New("selection cancelled")

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

type tableItem struct {
	name    string
	comment string
	checked bool
}

func (i tableItem) FilterValue() string { return i.name + " " + i.comment }

func (i tableItem) Title() string {
	box := "[ ]"
	if i.checked {
		box = "[x]"
	}
	title := box + " " + i.name
	if i.comment != "" {
		title += " - " + i.comment
	}
	return title
}

func (i tableItem) Description() string { return "" }

type pickerModel struct {
	list      list.Model
	confirmed bool
	quitting  bool
}

func newPickerModel(tables []types.TableDescriptor) pickerModel {
	items := make([]list.Item, 0, len(tables))
	for _, t := range tables {
		items = append(items, tableItem{name: t.Name, comment: t.Comment})
	}

	const defaultWidth = 80
	const listHeight = 16

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = "Select tables to generate"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case " ", "x":
			idx := m.list.Index()
			if it, ok := m.list.SelectedItem().(tableItem); ok {
				it.checked = !it.checked
				m.list.SetItem(idx, it)
			}
			return m, nil

		case "enter":
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • space: toggle • /: filter • enter: generate • q: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// checked returns the checked table names in catalog order
func (m pickerModel) checked() []string {
	var names []string
	for _, li := range m.list.Items() {
		if it, ok := li.(tableItem); ok && it.checked {
			names = append(names, it.name)
		}
	}
	return names
}

// promptForTables shows the catalog as a checklist and returns the checked names
func promptForTables(tables []types.TableDescriptor) ([]string, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	p := tea.NewProgram(newPickerModel(tables))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(pickerModel)
	if !result.confirmed {
		return nil, errPromptCancelled
	}

	// Enter without a checkbox generates the highlighted table
	names := result.checked()
	if len(names) == 0 {
		if it, ok := result.list.SelectedItem().(tableItem); ok {
			names = []string{it.name}
		}
	}
	return names, nil
}

// itemDelegate is a custom list item delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(tableItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

type passwordModel struct {
	input     textinput.Model
	user      string
	confirmed bool
}

func newPasswordModel(user string) passwordModel {
	ti := textinput.New()
	ti.Placeholder = "password"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Focus()
	return passwordModel{input: ti, user: user}
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m passwordModel) View() string {
	if m.confirmed {
		return ""
	}
	return fmt.Sprintf("Password for %s: %s\n%s", m.user, m.input.View(), helpStyle.Render("enter: confirm • esc: cancel"))
}

// promptForPassword reads a password without echoing it
func promptForPassword(user string) (string, error) {
	finalModel, err := tea.NewProgram(newPasswordModel(user)).Run()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	result := finalModel.(passwordModel)
	if !result.confirmed {
		return "", errPromptCancelled
	}
	return result.input.Value(), nil
}
