package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	cfg := DefaultSchedulerConfig()

	assert.True(t, cfg.Enabled)
	require.Len(t, cfg.TaskConfigs, 2)

	social := cfg.TaskConfigs[TaskIDSocialCollect]
	assert.True(t, social.Enabled)
	assert.Equal(t, "0 6 * * *", social.Schedule)

	refresh := cfg.TaskConfigs[TaskIDThemeRefresh]
	assert.True(t, refresh.Enabled)
	assert.Equal(t, "0 3 * * 0", refresh.Schedule)
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	cfg := SchedulerConfig{
		TaskConfigs: map[string]TaskConfig{
			"custom": {Enabled: true, Schedule: "*/5 * * * *"},
		},
	}

	tc := cfg.GetTaskConfig("custom")
	assert.True(t, tc.Enabled)
	assert.Equal(t, "*/5 * * * *", tc.Schedule)

	missing := cfg.GetTaskConfig("nope")
	assert.False(t, missing.Enabled)
	assert.Empty(t, missing.Schedule)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	cfg := SchedulerConfig{}
	tc := cfg.GetTaskConfig(TaskIDSocialCollect)
	assert.Equal(t, TaskConfig{}, tc)
}

func TestTaskNames(t *testing.T) {
	names := TaskNames()
	assert.Equal(t, "Social Collection", names[TaskIDSocialCollect])
	assert.Equal(t, "Theme Refresh", names[TaskIDThemeRefresh])
}

func TestTaskResult_Failed(t *testing.T) {
	start := time.Now()
	result := TaskResult{
		TaskID:    TaskIDThemeRefresh,
		StartedAt: start,
		EndedAt:   start.Add(time.Second),
		Success:   false,
		Error:     "store closed",
	}

	assert.False(t, result.Success)
	assert.Equal(t, "store closed", result.Error)
	assert.Zero(t, result.ItemsProcessed)
}
