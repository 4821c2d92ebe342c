package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/gireflect/gi"
	"github.com/wippyai/gireflect/typelib"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer, styled bool) *printer {
	return &printer{w: w, styled: styled}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) namespace(ns *gi.Namespace) {
	fmt.Fprintf(p.w, "%s %s\n", p.render(titleStyle, ns.Name()), ns.Get("version"))
	if deps, ok := ns.Get("dependencies").(map[string]string); ok {
		fmt.Fprintf(p.w, "Dependencies: %s\n", formatValue(deps))
	}
	fmt.Fprintf(p.w, "Entries: %d\n\n", ns.Len()-1)

	for i := 1; i < ns.Len(); i++ {
		info, ok := ns.At(i).(*gi.Info)
		if !ok {
			continue
		}
		fmt.Fprintf(p.w, "  %-12s %s\n", p.render(kindStyle, info.Kind().String()), p.render(nameStyle, info.Name()))
		info.Release()
	}
}

func (p *printer) info(info *gi.Info) {
	fmt.Fprintf(p.w, "%s %s\n\n", p.render(titleStyle, info.FullName()), p.render(kindStyle, info.Kind().String()))
	for _, prop := range info.Properties() {
		v := info.Index(prop)
		if v == nil || v == false {
			release(v)
			continue
		}
		fmt.Fprintf(p.w, "  %-20s %s\n", prop, p.render(valueStyle, formatValue(v)))
		release(v)
	}
}

// formatValue renders one property value on a single line.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case *gi.Info:
		if name := v.FullName(); name != "" {
			return name
		}
		return v.Kind().String()
	case *gi.Infos:
		names := make([]string, 0, v.Len())
		for _, item := range v.All() {
			if item == nil {
				continue
			}
			names = append(names, item.Name())
			item.Release()
		}
		return fmt.Sprintf("[%d] %s", v.Len(), strings.Join(names, ", "))
	case []*gi.Info:
		names := make([]string, len(v))
		for i, item := range v {
			names[i] = "nil"
			if item != nil {
				names[i] = formatValue(item)
			}
		}
		return "<" + strings.Join(names, ", ") + ">"
	case map[string]bool:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return strings.Join(keys, "|")
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "-" + v[k]
		}
		return strings.Join(pairs, ", ")
	case string:
		return fmt.Sprintf("%q", v)
	case typelib.GType:
		return fmt.Sprintf("%d", uint64(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// release drops whatever proxies a property value holds.
func release(v any) {
	switch v := v.(type) {
	case *gi.Info:
		v.Release()
	case *gi.Infos:
		v.Release()
	case []*gi.Info:
		for _, item := range v {
			if item != nil {
				item.Release()
			}
		}
	}
}
