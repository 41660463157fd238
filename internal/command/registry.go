// Package command maps slash-command names to handlers.
package command

import "strings"

// Registry associates command names with handlers of an arbitrary shape.
// Re-registering a name replaces the prior handler silently, so a later
// definition can deliberately alias or override an earlier one.
type Registry[H any] struct {
	handlers map[string]H
	order    []string
}

func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{handlers: map[string]H{}}
}

func (r *Registry[H]) Register(name string, handler H) {
	if _, seen := r.handlers[name]; !seen {
		r.order = append(r.order, name)
	}
	r.handlers[name] = handler
}

func (r *Registry[H]) Lookup(name string) (H, bool) {
	handler, ok := r.handlers[name]
	return handler, ok
}

// Names returns the registered command names in first-registration order,
// for help listings.
func (r *Registry[H]) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Split parses one input line into a command name (the first
// whitespace-delimited token, including its "/" prefix) and the remaining
// tokens. An all-whitespace line yields an empty name.
func Split(line string) (name string, args []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
