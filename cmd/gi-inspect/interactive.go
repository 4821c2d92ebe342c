package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/gireflect/gi"
)

// row is one line of a frame. open, when set, builds the frame shown after
// enter.
type row struct {
	label string
	value string
	open  func() *frame
}

// frame is one level of the browser stack. It owns every proxy it created
// and releases them when popped.
type frame struct {
	title string
	rows  []row
	owned []any
}

func (f *frame) close() {
	for _, v := range f.owned {
		release(v)
	}
	f.owned = nil
}

type interactiveModel struct {
	err      error
	st       *gi.State
	opts     options
	stack    []*frame
	visible  []int
	filter   textinput.Model
	selected int
}

type loadedMsg struct {
	err   error
	frame *frame
}

func newInteractiveModel(st *gi.State, opts options) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{st: st, opts: opts, filter: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.load, textinput.Blink)
}

func (m *interactiveModel) load() tea.Msg {
	ns, err := m.st.Require(m.opts.namespace, m.opts.version, m.opts.dir)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{frame: namespaceFrame(ns)}
}

func namespaceFrame(ns *gi.Namespace) *frame {
	f := &frame{title: fmt.Sprintf("%s %s", ns.Name(), ns.Get("version"))}
	for i := 1; i < ns.Len(); i++ {
		info, ok := ns.At(i).(*gi.Info)
		if !ok {
			continue
		}
		name, kind := info.Name(), info.Kind().String()
		info.Release()
		f.rows = append(f.rows, row{
			label: name,
			value: kind,
			open: func() *frame {
				info, ok := ns.Get(name).(*gi.Info)
				if !ok {
					return nil
				}
				return infoFrame(info)
			},
		})
	}
	return f
}

// infoFrame takes ownership of info.
func infoFrame(info *gi.Info) *frame {
	f := &frame{
		title: info.FullName() + " " + info.Kind().String(),
		owned: []any{info},
	}
	for _, prop := range info.Properties() {
		v := info.Index(prop)
		if v == nil {
			continue
		}
		f.owned = append(f.owned, v)
		r := row{label: prop, value: formatValue(v)}
		switch v := v.(type) {
		case *gi.Info:
			r.open = func() *frame {
				child, ok := info.Index(prop).(*gi.Info)
				if !ok {
					return nil
				}
				return infoFrame(child)
			}
		case *gi.Infos:
			r.open = func() *frame { return infosFrame(v) }
		}
		f.rows = append(f.rows, r)
	}
	return f
}

func infosFrame(v *gi.Infos) *frame {
	f := &frame{title: v.String()}
	for i := 1; i <= v.Len(); i++ {
		idx := i
		item, err := v.At(idx)
		if err != nil || item == nil {
			continue
		}
		name, kind := item.Name(), item.Kind().String()
		item.Release()
		f.rows = append(f.rows, row{
			label: name,
			value: kind,
			open: func() *frame {
				item, err := v.At(idx)
				if err != nil || item == nil {
					return nil
				}
				return infoFrame(item)
			},
		})
	}
	return f
}

func (m *interactiveModel) top() *frame {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *interactiveModel) push(f *frame) {
	m.stack = append(m.stack, f)
	m.filter.SetValue("")
	m.refilter()
}

func (m *interactiveModel) pop() {
	f := m.top()
	f.close()
	m.stack = m.stack[:len(m.stack)-1]
	m.filter.SetValue("")
	m.refilter()
}

func (m *interactiveModel) refilter() {
	m.visible = m.visible[:0]
	m.selected = 0
	f := m.top()
	if f == nil {
		return
	}
	q := strings.ToLower(m.filter.Value())
	for i, r := range f.rows {
		if q == "" || strings.Contains(strings.ToLower(r.label), q) {
			m.visible = append(m.visible, i)
		}
	}
}

func (m *interactiveModel) quit() (tea.Model, tea.Cmd) {
	for len(m.stack) > 0 {
		m.pop()
	}
	return m, tea.Quit
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.quit()

		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			f := m.top()
			if f == nil || len(m.visible) == 0 {
				return m, nil
			}
			r := f.rows[m.visible[m.selected]]
			if r.open == nil {
				return m, nil
			}
			if next := r.open(); next != nil {
				m.push(next)
			}
			return m, nil

		case "esc":
			if m.filter.Value() != "" {
				m.filter.SetValue("")
				m.refilter()
				return m, nil
			}
			if len(m.stack) <= 1 {
				return m.quit()
			}
			m.pop()
			return m, nil
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.push(msg.frame)
		return m, nil
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}

	f := m.top()
	if f == nil {
		return "Loading namespace..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("gi-inspect"))
	b.WriteString(" ")
	b.WriteString(f.title)
	b.WriteString("\n\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	for i, idx := range m.visible {
		r := f.rows[idx]
		line := fmt.Sprintf("%-24s %s", nameStyle.Render(r.label), kindStyle.Render(r.value))
		if r.open != nil {
			line += " ›"
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + r.label))
			b.WriteString(" ")
			b.WriteString(valueStyle.Render(r.value))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter open • esc back • ctrl+c quit"))

	return b.String()
}

func runInteractive(st *gi.State, opts options) error {
	p := tea.NewProgram(newInteractiveModel(st, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
