package saga

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStepTable(t *testing.T) {
	tests := []struct {
		name          string
		steps         []StepDefinition
		expectedError string
	}{
		{
			name: "valid table",
			steps: []StepDefinition{
				{Name: "warehouse", ActionPath: "/reserve_space", CompensationPath: "/cancel_reservation"},
				{Name: "inventory", ActionPath: "/update_stock", CompensationPath: "/revert_stock"},
			},
		},
		{
			name:          "empty table",
			steps:         []StepDefinition{},
			expectedError: "at least one step",
		},
		{
			name: "empty step name",
			steps: []StepDefinition{
				{Name: "", ActionPath: "/a", CompensationPath: "/b"},
			},
			expectedError: "step name must not be empty",
		},
		{
			name: "duplicate step name",
			steps: []StepDefinition{
				{Name: "warehouse", ActionPath: "/a", CompensationPath: "/b"},
				{Name: "warehouse", ActionPath: "/c", CompensationPath: "/d"},
			},
			expectedError: `duplicate step name "warehouse"`,
		},
		{
			name: "action path without leading slash",
			steps: []StepDefinition{
				{Name: "warehouse", ActionPath: "reserve_space", CompensationPath: "/cancel_reservation"},
			},
			expectedError: "action path must start with /",
		},
		{
			name: "compensation path without leading slash",
			steps: []StepDefinition{
				{Name: "warehouse", ActionPath: "/reserve_space", CompensationPath: "cancel_reservation"},
			},
			expectedError: "compensation path must start with /",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewStepTable(tt.steps)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, table)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, table)
				assert.Equal(t, len(tt.steps), len(table.Steps()))
			}
		})
	}
}

func TestStepTable_OrderAndLookup(t *testing.T) {
	table, err := NewStepTable([]StepDefinition{
		{Name: "warehouse", ActionPath: "/reserve_space", CompensationPath: "/cancel_reservation"},
		{Name: "inventory", ActionPath: "/update_stock", CompensationPath: "/revert_stock"},
		{Name: "package", ActionPath: "/create_package", CompensationPath: "/discard_package"},
	})
	assert.NoError(t, err)

	assert.Equal(t, []string{"warehouse", "inventory", "package"}, table.Names())

	step, ok := table.Lookup("inventory")
	assert.True(t, ok)
	assert.Equal(t, "/revert_stock", step.CompensationPath)

	_, ok = table.Lookup("carrier")
	assert.False(t, ok)
}

func TestEndpoints_BaseURL(t *testing.T) {
	endpoints := Endpoints{
		"warehouse": "http://localhost:5001",
		"inventory": "http://localhost:5002/",
	}

	baseURL, err := endpoints.BaseURL("warehouse")
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:5001", baseURL)

	// Trailing slash is trimmed so path joins stay clean
	baseURL, err = endpoints.BaseURL("inventory")
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:5002", baseURL)

	_, err = endpoints.BaseURL("carrier")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `no endpoint configured for collaborator "carrier"`)
}

func TestResultMerger(t *testing.T) {
	merger := NewResultMerger("warehouse", "inventory")
	state := NewSagaState(testRequest())

	err := merger.Merge(state, "warehouse", map[string]any{"status": "RESERVED"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "RESERVED"}, state.GeneratedData["warehouse"])

	// Failure records land in the same slot
	err = merger.Merge(state, "inventory", NewStepError("boom", 500))
	assert.NoError(t, err)
	assert.Equal(t, NewStepError("boom", 500), state.GeneratedData["inventory"])

	// Names outside the configured set are rejected, not silently added
	err = merger.Merge(state, "carrier", "anything")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `no result slot registered for collaborator "carrier"`)
	assert.NotContains(t, state.GeneratedData, "carrier")
}
