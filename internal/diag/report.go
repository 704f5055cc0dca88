// Package diag collects the warnings and errors an export produces so they
// can be summarized after the run. Every entry is also logged when it is
// recorded.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/seedexport/internal/logger"
)

// Entry is one recorded problem.
type Entry struct {
	Level     zapcore.Level
	Frame     int
	Component string
	Node      string
	Message   string
}

func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d: %s", e.Frame, e.Component)
	if e.Node != "" {
		fmt.Fprintf(&b, " [%s]", e.Node)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Report accumulates entries for one export run. A nil *Report only logs.
type Report struct {
	frame   int
	entries []Entry
}

// New returns an empty report.
func New() *Report {
	return &Report{}
}

// SetFrame tags subsequent entries with frame.
func (r *Report) SetFrame(frame int) {
	if r != nil {
		r.frame = frame
	}
}

// Warn records a recoverable problem.
func (r *Report) Warn(component, node, msg string) {
	logger.Named(component).Warn(msg, nodeField(node))
	r.add(zapcore.WarnLevel, component, node, msg)
}

// Warnf is Warn with formatting.
func (r *Report) Warnf(component, node, format string, args ...any) {
	r.Warn(component, node, fmt.Sprintf(format, args...))
}

// Error records a failure that cost the frame.
func (r *Report) Error(component, node string, err error) {
	logger.Named(component).Error("failed", nodeField(node), zap.Error(err))
	r.add(zapcore.ErrorLevel, component, node, err.Error())
}

func (r *Report) add(level zapcore.Level, component, node, msg string) {
	if r == nil {
		return
	}
	r.entries = append(r.entries, Entry{
		Level:     level,
		Frame:     r.frame,
		Component: component,
		Node:      node,
		Message:   msg,
	})
}

// Entries returns all entries in the order they were recorded.
func (r *Report) Entries() []Entry {
	if r == nil {
		return nil
	}
	return r.entries
}

// Warnings returns the warning entries.
func (r *Report) Warnings() []Entry {
	return r.filter(zapcore.WarnLevel)
}

// Errors returns the error entries.
func (r *Report) Errors() []Entry {
	return r.filter(zapcore.ErrorLevel)
}

func (r *Report) filter(level zapcore.Level) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns the number of entries per component.
func (r *Report) Counts() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Entries() {
		counts[e.Component]++
	}
	return counts
}

// Summary formats a one-line count per component, sorted by name.
func (r *Report) Summary() string {
	counts := r.Counts()
	if len(counts) == 0 {
		return "no warnings"
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, counts[name]))
	}
	return strings.Join(parts, ", ")
}

func nodeField(node string) zap.Field {
	if node == "" {
		return zap.Skip()
	}
	return zap.String("node", node)
}
