package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/dfspanel/internal/types"
)

// defaultFormHost is shown in an empty connection form
const defaultFormHost = "127.0.0.1"

// formField is one input of the connection form, keyed by its wire name
type formField struct {
	key   string
	label string
	input textinput.Model
}

// ConfigureForm is the database connection form
type ConfigureForm struct {
	fields  []formField
	focus   int
	invalid map[string]bool
}

// NewConfigureForm creates a form with the default host, port and charset
func NewConfigureForm() *ConfigureForm {
	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 255
		ti.Width = 40
		return ti
	}

	f := &ConfigureForm{
		fields: []formField{
			{key: "host", label: "Host", input: newInput(defaultFormHost)},
			{key: "port", label: "Port", input: newInput(strconv.Itoa(types.DefaultPort))},
			{key: "user", label: "User", input: newInput("root")},
			{key: "password", label: "Password", input: newInput("")},
			{key: "db", label: "Database", input: newInput("")},
			{key: "charset", label: "Charset", input: newInput(types.DefaultCharset)},
		},
		invalid: make(map[string]bool),
	}
	f.fields[0].input.SetValue(defaultFormHost)
	f.fields[1].input.SetValue(strconv.Itoa(types.DefaultPort))
	f.fields[1].input.CharLimit = 5
	f.fields[3].input.EchoMode = textinput.EchoPassword
	f.fields[3].input.EchoCharacter = '•'
	f.fields[5].input.SetValue(types.DefaultCharset)
	f.fields[0].input.Focus()
	return f
}

// Prefill copies cfg into the form. The password is left empty.
func (f *ConfigureForm) Prefill(cfg types.ConnectionConfig) {
	cfg = cfg.WithDefaults()
	f.set("host", cfg.Host)
	f.set("port", strconv.Itoa(cfg.Port))
	f.set("user", cfg.User)
	f.set("password", "")
	f.set("db", cfg.Database)
	f.set("charset", cfg.Charset)
	f.invalid = make(map[string]bool)
}

func (f *ConfigureForm) set(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].input.SetValue(value)
			return
		}
	}
}

// Value returns the raw input of field key
func (f *ConfigureForm) Value(key string) string {
	for _, field := range f.fields {
		if field.key == key {
			return field.input.Value()
		}
	}
	return ""
}

// Focused returns the key of the focused field
func (f *ConfigureForm) Focused() string {
	return f.fields[f.focus].key
}

// NextField moves focus down, wrapping around
func (f *ConfigureForm) NextField() {
	f.setFocus((f.focus + 1) % len(f.fields))
}

// PrevField moves focus up, wrapping around
func (f *ConfigureForm) PrevField() {
	f.setFocus((f.focus - 1 + len(f.fields)) % len(f.fields))
}

func (f *ConfigureForm) setFocus(i int) {
	f.fields[f.focus].input.Blur()
	f.focus = i
	f.fields[f.focus].input.Focus()
}

// Update forwards msg to the focused input
func (f *ConfigureForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	delete(f.invalid, f.fields[f.focus].key)
	return cmd
}

// Config reads the form. A port that is not a number is reported as an
// invalid field, the remaining checks are left to the session.
func (f *ConfigureForm) Config() (types.ConnectionConfig, error) {
	cfg := types.ConnectionConfig{
		Host:     strings.TrimSpace(f.Value("host")),
		User:     strings.TrimSpace(f.Value("user")),
		Password: f.Value("password"),
		Database: strings.TrimSpace(f.Value("db")),
		Charset:  strings.TrimSpace(f.Value("charset")),
	}

	if raw := strings.TrimSpace(f.Value("port")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, &types.ValidationError{Fields: []string{"port"}}
		}
		cfg.Port = port
	}
	return cfg.WithDefaults(), nil
}

// SetInvalid marks the fields named by err. Any other error clears the marks.
func (f *ConfigureForm) SetInvalid(err error) {
	f.invalid = make(map[string]bool)
	verr, ok := types.AsValidation(err)
	if !ok {
		return
	}
	for _, field := range verr.Fields {
		f.invalid[field] = true
	}
	// Focus the first offending field
	for i, field := range f.fields {
		if f.invalid[field.key] {
			f.setFocus(i)
			return
		}
	}
}

// Invalid reports whether field key is marked
func (f *ConfigureForm) Invalid(key string) bool {
	return f.invalid[key]
}

// Render draws the form rows
func (f *ConfigureForm) Render() string {
	var lines []string
	for i, field := range f.fields {
		label := field.label + ":"
		labelStyle := styleSubtle
		if i == f.focus {
			labelStyle = styleTitle
		}
		line := labelStyle.Render(padRight(label, 10)) + " " + field.input.View()
		if f.invalid[field.key] {
			reason := "required"
			if field.key == "port" {
				reason = "must be 1-65535"
			}
			line += "  " + styleError.Render(reason)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
