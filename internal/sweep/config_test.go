package sweep

import (
	"testing"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/fyrsmithlabs/depthbudget/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, []string{"legacy", "severity"}, cfg.Policies)
	assert.Equal(t, uint64(3), cfg.Branching)
	assert.Equal(t, uint64(0), cfg.From)
	assert.Equal(t, uint64(512), cfg.To)
	assert.Equal(t, uint64(512), cfg.Width())
	require.NoError(t, cfg.Validate())
}

func TestFromSettings(t *testing.T) {
	settings := config.SweepConfig{
		Policies:    []string{"v2"},
		Branching:   2,
		From:        4,
		To:          8,
		Parallelism: 1,
		NodeLimit:   1000,
	}

	cfg := FromSettings(settings)
	assert.Equal(t, Config{
		Policies:    []string{"v2"},
		Branching:   2,
		From:        4,
		To:          8,
		Parallelism: 1,
		NodeLimit:   1000,
	}, cfg)

	cfg.Policies[0] = "legacy"
	assert.Equal(t, "v2", settings.Policies[0], "policies slice must be copied")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid",
			cfg:  Config{Policies: []string{"legacy"}, Branching: 3, To: 10},
		},
		{
			name: "aliases accepted",
			cfg:  Config{Policies: []string{"Current", "severity-scaled"}, To: 1},
		},
		{
			name:    "no policies",
			cfg:     Config{To: 10},
			wantErr: true,
			errMsg:  "at least one policy",
		},
		{
			name:    "unknown policy",
			cfg:     Config{Policies: []string{"halving"}, To: 10},
			wantErr: true,
			errMsg:  "unknown decay policy",
		},
		{
			name:    "empty range",
			cfg:     Config{Policies: []string{"legacy"}, From: 5, To: 5},
			wantErr: true,
			errMsg:  "is empty",
		},
		{
			name:    "negative parallelism",
			cfg:     Config{Policies: []string{"legacy"}, To: 5, Parallelism: -1},
			wantErr: true,
			errMsg:  "parallelism",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_ValidateJoinsErrors(t *testing.T) {
	err := Config{Policies: []string{"nope"}, From: 3, To: 1}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, budget.ErrUnknownPolicy)
	assert.Contains(t, err.Error(), "[3, 1) is empty")
}

func TestConfig_PoliciesDeduplicated(t *testing.T) {
	cfg := Config{Policies: []string{"legacy", "current", "v2", "severity"}, To: 1}

	policies, err := cfg.policies()
	require.NoError(t, err)
	assert.Equal(t, []budget.Policy{budget.PolicyLegacy, budget.PolicySeverity}, policies)
}

func TestConfig_Width(t *testing.T) {
	assert.Equal(t, uint64(4), Config{From: 4, To: 8}.Width())
	assert.Equal(t, uint64(0), Config{From: 8, To: 4}.Width())
}
