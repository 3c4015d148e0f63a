package logging

import (
	"context"
	"testing"
	"time"

	"github.com/fyrsmithlabs/depthbudget/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewSampledCore_Disabled(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	sampled := newSampledCore(core, SamplingConfig{Enabled: false})
	assert.Equal(t, core, sampled)
}

func TestNewSampledCore_ErrorsNeverSampled(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	sampled := newSampledCore(core, SamplingConfig{
		Enabled:    true,
		Tick:       config.Duration(time.Second),
		Initial:    1,
		Thereafter: 0,
	})
	logger := &Logger{zap: zap.New(sampled), config: NewDefaultConfig()}

	for i := 0; i < 50; i++ {
		logger.Error(context.Background(), "run failed")
	}

	assert.Equal(t, 50, observed.FilterMessage("run failed").Len())
}

func TestNewSampledCore_InfoSampled(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	sampled := newSampledCore(core, SamplingConfig{
		Enabled:    true,
		Tick:       config.Duration(time.Minute),
		Initial:    5,
		Thereafter: 0,
	})
	logger := &Logger{zap: zap.New(sampled), config: NewDefaultConfig()}

	for i := 0; i < 20; i++ {
		logger.Info(context.Background(), "row computed")
	}

	assert.Equal(t, 5, observed.FilterMessage("row computed").Len())
}

func TestLevelFilterCore(t *testing.T) {
	core, observed := observer.New(TraceLevel)
	filtered := &levelFilterCore{Core: core, maxLevel: zapcore.InfoLevel, hasMax: true}

	assert.True(t, filtered.Enabled(TraceLevel))
	assert.True(t, filtered.Enabled(zapcore.InfoLevel))
	assert.False(t, filtered.Enabled(zapcore.WarnLevel))

	child := filtered.With([]zapcore.Field{zap.String("policy", "legacy")})
	logger := zap.New(child)
	logger.Info("kept")
	logger.Warn("dropped")

	logs := observed.All()
	assert.Len(t, logs, 1)
	assert.Equal(t, "kept", logs[0].Message)
	assert.Equal(t, "legacy", logs[0].ContextMap()["policy"])
}

func TestLevelFilterCore_MinLevel(t *testing.T) {
	core, _ := observer.New(TraceLevel)
	filtered := &levelFilterCore{Core: core, minLevel: zapcore.ErrorLevel, hasMin: true}

	assert.False(t, filtered.Enabled(zapcore.WarnLevel))
	assert.True(t, filtered.Enabled(zapcore.ErrorLevel))
}
