package aitools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"FULL", ModeFull},
		{"full", ModeFull},
		{" readonly ", ModeReadOnly},
		{"READ_ONLY", ModeReadOnly},
		{"read-only", ModeReadOnly},
		{"NONE", ModeNone},
		{"", ModeNone},
		{"everything", ModeNone},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMode(tt.input))
		})
	}
}

func TestMode_Allows(t *testing.T) {
	assert.False(t, ModeNone.Allows(ReadOnly))
	assert.False(t, ModeNone.Allows(Mutable))
	assert.True(t, ModeReadOnly.Allows(ReadOnly))
	assert.False(t, ModeReadOnly.Allows(Mutable))
	assert.False(t, ModeReadOnly.Allows(Mutability("")), "unknown mutability is treated as mutable")
	assert.True(t, ModeFull.Allows(Mutable))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "NONE", ModeNone.String())
	assert.Equal(t, "READONLY", ModeReadOnly.String())
	assert.Equal(t, "FULL", ModeFull.String())
	assert.Equal(t, "NONE", Mode(42).String())
}

// TestEnvModeProvider tests that the environment is re-read on every call
func TestMode_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Mode Mode `json:"mode"`
	}

	for _, mode := range []Mode{ModeNone, ModeReadOnly, ModeFull} {
		data, err := json.Marshal(payload{Mode: mode})
		require.NoError(t, err)
		assert.JSONEq(t, `{"mode":"`+mode.String()+`"}`, string(data))

		var decoded payload
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, mode, decoded.Mode)
	}

	decoded := payload{Mode: ModeFull}
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"sometimes"}`), &decoded))
	assert.Equal(t, ModeNone, decoded.Mode, "unknown modes decode closed")
}

func TestEnvModeProvider(t *testing.T) {
	provider := EnvModeProvider{}

	t.Setenv(DefaultModeEnv, "")
	assert.Equal(t, ModeNone, provider.CurrentMode())

	t.Setenv(DefaultModeEnv, "READONLY")
	assert.Equal(t, ModeReadOnly, provider.CurrentMode())

	t.Setenv(DefaultModeEnv, "FULL")
	assert.Equal(t, ModeFull, provider.CurrentMode())

	t.Setenv("RENTDESK_TEST_MODE", "full")
	assert.Equal(t, ModeFull, EnvModeProvider{Key: "RENTDESK_TEST_MODE"}.CurrentMode())
}
