// Package presenter maps generation cache state into the two-level tab layout
// of the generation drawer: one outer tab per table, one inner tab per artifact.
// It holds no state of its own.
package presenter

import (
	"github.com/studiowebux/dfspanel/internal/gencache"
	"github.com/studiowebux/dfspanel/internal/types"
)

// Lookup reads one cache entry
type Lookup interface {
	Entry(table string, mode types.GenerationMode) (gencache.Status, []types.GeneratedArtifact, error)
}

// InnerTab is one generated artifact
type InnerTab struct {
	Key    string
	Title  string
	Source string
}

// OuterTab is one table with its artifacts
type OuterTab struct {
	Table string
	Inner []InnerTab
}

// Marker is a selected table without artifacts to show yet
type Marker struct {
	Table  string
	Status gencache.Status
	Err    error
}

// Row is one selected table in selection order, whatever its status
type Row struct {
	Table  string
	Status gencache.Status
	Err    error
	Inner  []InnerTab // Set when Status is ready
}

// View is the drawer content for one mode
type View struct {
	Mode    types.GenerationMode
	Rows    []Row
	Tabs    []OuterTab
	Pending []Marker
	Failed  []Marker
}

// Build derives the view of selection in mode from lookup
func Build(selection []string, lookup Lookup, mode types.GenerationMode) View {
	v := View{Mode: mode}

	for _, table := range selection {
		status, artifacts, err := lookup.Entry(table, mode)
		row := Row{Table: table, Status: status, Err: err}

		switch status {
		case gencache.StatusReady:
			tab := OuterTab{Table: table, Inner: make([]InnerTab, 0, len(artifacts))}
			for _, a := range artifacts {
				tab.Inner = append(tab.Inner, InnerTab{
					Key:    a.Key,
					Title:  a.DisplayName,
					Source: a.Source,
				})
			}
			v.Tabs = append(v.Tabs, tab)
			row.Inner = tab.Inner
		case gencache.StatusFailed:
			v.Failed = append(v.Failed, Marker{Table: table, Status: status, Err: err})
		default:
			// Absent means no fetch has been planned yet, shown as loading
			v.Pending = append(v.Pending, Marker{Table: table, Status: status})
		}

		v.Rows = append(v.Rows, row)
	}

	return v
}

// Empty reports whether nothing is selected
func (v View) Empty() bool {
	return len(v.Rows) == 0
}

// Settled reports whether no selected table is still loading
func (v View) Settled() bool {
	return len(v.Pending) == 0
}

// Tab returns the outer tab for table
func (v View) Tab(table string) (OuterTab, bool) {
	for _, t := range v.Tabs {
		if t.Table == table {
			return t, true
		}
	}
	return OuterTab{}, false
}

// TabNames returns the outer tab titles in order
func (v View) TabNames() []string {
	names := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		names[i] = r.Table
	}
	return names
}
