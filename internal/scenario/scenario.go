// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scenario loads YAML descriptions of services, entries and
// session slices, wires them into a csp router hosted by a Store, and
// runs an event flow against them, recording an ordered trace.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrInvalid reports a scenario that failed validation.
var ErrInvalid = errors.New("invalid scenario")

// Scenario is a complete run description.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// FlowToken pins the run token. Empty means the runner picks one.
	FlowToken string `yaml:"flow_token,omitempty"`

	Sessions []SessionSpec `yaml:"sessions,omitempty"`
	Services []ServiceSpec `yaml:"services,omitempty"`
	Entries  []EntrySpec   `yaml:"entries,omitempty"`
	Flow     []FlowStep    `yaml:"flow"`
}

// SessionSpec declares a state slice reduced by a session reducer.
type SessionSpec struct {
	Name    string         `yaml:"name"`
	Event   string         `yaml:"event"`
	Initial map[string]any `yaml:"initial,omitempty"`
}

// ServiceSpec declares a service routine as a list of steps.
type ServiceSpec struct {
	Name string `yaml:"name"`
	// Autostart defaults to true.
	Autostart *bool `yaml:"autostart,omitempty"`
	// Loop repeats Steps until the service is stopped.
	Loop  bool   `yaml:"loop,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Autostarts reports whether the service starts before the flow runs.
func (s ServiceSpec) Autostarts() bool {
	return s.Autostart == nil || *s.Autostart
}

// Step is one routine instruction. Exactly one field is set.
type Step struct {
	Await []string   `yaml:"await,omitempty"`
	Emit  *EventSpec `yaml:"emit,omitempty"`
	Start string     `yaml:"start,omitempty"`
	Stop  string     `yaml:"stop,omitempty"`
	End   bool       `yaml:"end,omitempty"`
}

func (s Step) kinds() int {
	n := 0
	for _, set := range []bool{len(s.Await) > 0, s.Emit != nil, s.Start != "", s.Stop != "", s.End} {
		if set {
			n++
		}
	}
	return n
}

// EventSpec describes an event to emit.
type EventSpec struct {
	Type    string         `yaml:"type"`
	Payload map[string]any `yaml:"payload,omitempty"`
	// Forward merges the payload of the last awaited event under Payload.
	Forward bool `yaml:"forward,omitempty"`
}

// EntrySpec declares an entry for one event type.
type EntrySpec struct {
	Type string `yaml:"type"`
	// When restricts the entry to matching host state.
	When *Condition `yaml:"when,omitempty"`
	// Block consumes the event once the entry has acted.
	Block bool       `yaml:"block,omitempty"`
	Emit  *EventSpec `yaml:"emit,omitempty"`
	Start string     `yaml:"start,omitempty"`
	Stop  string     `yaml:"stop,omitempty"`
}

// Condition matches a session field against a value.
type Condition struct {
	Slice  string `yaml:"slice"`
	Field  string `yaml:"field"`
	Equals any    `yaml:"equals"`
}

// FlowStep dispatches one event to the host.
type FlowStep struct {
	Event  EventSpec `yaml:"event"`
	Expect *Expect   `yaml:"expect,omitempty"`
}

// Expect is checked after a flow step completes.
type Expect struct {
	Consumed *bool `yaml:"consumed,omitempty"`
	// Live lists the services expected live, in start order.
	Live []string `yaml:"live,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario, rejecting unknown fields, and validates it.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := Validate(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks required fields and cross references.
// Failures wrap ErrInvalid.
func Validate(sc *Scenario) error {
	if err := validate(sc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func validate(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(sc.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	var sessions []string
	for i, s := range sc.Sessions {
		if s.Name == "" || s.Event == "" {
			return fmt.Errorf("sessions[%d]: name and event are required", i)
		}
		if slices.Contains(sessions, s.Name) {
			return fmt.Errorf("sessions[%d]: duplicate name %q", i, s.Name)
		}
		sessions = append(sessions, s.Name)
	}

	var services []string
	for i, s := range sc.Services {
		if s.Name == "" {
			return fmt.Errorf("services[%d]: name is required", i)
		}
		if slices.Contains(services, s.Name) {
			return fmt.Errorf("services[%d]: duplicate name %q", i, s.Name)
		}
		services = append(services, s.Name)
	}
	known := func(name string) bool { return name == "" || slices.Contains(services, name) }

	for i, s := range sc.Services {
		if len(s.Steps) == 0 {
			return fmt.Errorf("services[%d]: steps list is required and must be non-empty", i)
		}
		awaits := false
		for j, st := range s.Steps {
			if st.kinds() != 1 {
				return fmt.Errorf("services[%d].steps[%d]: exactly one of await, emit, start, stop, end is required", i, j)
			}
			if st.Emit != nil && st.Emit.Type == "" {
				return fmt.Errorf("services[%d].steps[%d]: emit type is required", i, j)
			}
			if !known(st.Start) || !known(st.Stop) {
				return fmt.Errorf("services[%d].steps[%d]: unknown service", i, j)
			}
			if st.End && s.Loop {
				return fmt.Errorf("services[%d].steps[%d]: end is not allowed in a loop", i, j)
			}
			awaits = awaits || len(st.Await) > 0
		}
		if s.Loop && !awaits {
			return fmt.Errorf("services[%d]: a loop needs at least one await step", i)
		}
	}

	var entries []string
	for i, e := range sc.Entries {
		if e.Type == "" {
			return fmt.Errorf("entries[%d]: type is required", i)
		}
		if slices.Contains(entries, e.Type) {
			return fmt.Errorf("entries[%d]: duplicate type %q", i, e.Type)
		}
		entries = append(entries, e.Type)
		if e.Emit != nil && e.Emit.Type == "" {
			return fmt.Errorf("entries[%d]: emit type is required", i)
		}
		if !known(e.Start) || !known(e.Stop) {
			return fmt.Errorf("entries[%d]: unknown service", i)
		}
		if e.When != nil && !slices.Contains(sessions, e.When.Slice) {
			return fmt.Errorf("entries[%d]: unknown session slice %q", i, e.When.Slice)
		}
	}

	for i, f := range sc.Flow {
		if f.Event.Type == "" {
			return fmt.Errorf("flow[%d]: event type is required", i)
		}
		if f.Expect == nil {
			continue
		}
		for _, name := range f.Expect.Live {
			if !slices.Contains(services, name) {
				return fmt.Errorf("flow[%d].expect: unknown service %q", i, name)
			}
		}
	}
	return nil
}
