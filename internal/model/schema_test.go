package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainReportSchema(t *testing.T) {
	s := SchemaOf(&TrainReport{})
	require.NotNil(t, s.Properties)

	for _, name := range []string{"train_id", "run_id", "coaches", "totals", "stream"} {
		_, ok := s.Properties.Get(name)
		assert.True(t, ok, name)
	}

	coaches, _ := s.Properties.Get("coaches")
	require.NotNil(t, coaches.Items)
	status, ok := coaches.Items.Properties.Get("status")
	require.True(t, ok)
	assert.Equal(t, []any{"complete", "incomplete", "failed"}, status.Enum)
}
