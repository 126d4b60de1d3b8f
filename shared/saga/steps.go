package saga

import (
	"strings"

	"github.com/pkg/errors"
)

// StepDefinition describes one forward step and its undo mapping. The name
// is the key into the collaborator endpoint registry.
type StepDefinition struct {
	Name             string `json:"name" mapstructure:"name"`
	ActionPath       string `json:"action_path" mapstructure:"action_path"`
	CompensationPath string `json:"compensation_path" mapstructure:"compensation_path"`
}

// TerminalStep is a collaborator notified of the saga's final outcome,
// independent of which steps ran.
type TerminalStep struct {
	Name string `json:"name" mapstructure:"name"`
	Path string `json:"path" mapstructure:"path"`
}

// StepTable is the ordered, immutable list of step definitions driving
// forward execution.
type StepTable struct {
	steps  []StepDefinition
	byName map[string]StepDefinition
}

// NewStepTable validates and builds a step table
func NewStepTable(steps []StepDefinition) (*StepTable, error) {
	if len(steps) == 0 {
		return nil, errors.New("step table must define at least one step")
	}

	byName := make(map[string]StepDefinition, len(steps))
	for _, step := range steps {
		if step.Name == "" {
			return nil, errors.New("step name must not be empty")
		}
		if _, exists := byName[step.Name]; exists {
			return nil, errors.Errorf("duplicate step name %q", step.Name)
		}
		if !strings.HasPrefix(step.ActionPath, "/") {
			return nil, errors.Errorf("step %q: action path must start with /", step.Name)
		}
		if !strings.HasPrefix(step.CompensationPath, "/") {
			return nil, errors.Errorf("step %q: compensation path must start with /", step.Name)
		}
		byName[step.Name] = step
	}

	return &StepTable{
		steps:  append([]StepDefinition{}, steps...),
		byName: byName,
	}, nil
}

// Steps returns the ordered step definitions
func (t *StepTable) Steps() []StepDefinition {
	return append([]StepDefinition{}, t.steps...)
}

// Lookup finds a step definition by name
func (t *StepTable) Lookup(name string) (StepDefinition, bool) {
	step, ok := t.byName[name]
	return step, ok
}

// Names returns the step names in table order
func (t *StepTable) Names() []string {
	names := make([]string, len(t.steps))
	for i, step := range t.steps {
		names[i] = step.Name
	}
	return names
}

// Endpoints maps a collaborator name to its base URL, resolved once at
// process start.
type Endpoints map[string]string

// BaseURL resolves a collaborator's base URL
func (e Endpoints) BaseURL(name string) (string, error) {
	baseURL, ok := e[name]
	if !ok {
		return "", errors.Errorf("no endpoint configured for collaborator %q", name)
	}
	return strings.TrimSuffix(baseURL, "/"), nil
}

// mergeFunc writes one collaborator's result into the saga record
type mergeFunc func(state *SagaState, value any)

// ResultMerger is the dispatch table mapping collaborator names to their
// result setters. The set of valid names is fixed at configuration time, so
// an unrecognized name fails loudly instead of silently creating a slot.
type ResultMerger struct {
	setters map[string]mergeFunc
}

// NewResultMerger enumerates the collaborators allowed to contribute results
func NewResultMerger(names ...string) *ResultMerger {
	setters := make(map[string]mergeFunc, len(names))
	for _, name := range names {
		name := name
		setters[name] = func(state *SagaState, value any) {
			state.GeneratedData[name] = value
		}
	}
	return &ResultMerger{setters: setters}
}

// Merge stores a collaborator's result, or its failure record, under the
// collaborator's name.
func (m *ResultMerger) Merge(state *SagaState, name string, value any) error {
	set, ok := m.setters[name]
	if !ok {
		return errors.Errorf("no result slot registered for collaborator %q", name)
	}
	set(state, value)
	return nil
}
