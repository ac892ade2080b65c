package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageMetrics(t *testing.T) {
	m := NewStageMetrics()
	m.Record(StageParse, time.Second)
	m.Record(StageFetch, 2*time.Second)
	m.Record(StageParse, time.Second)

	d, ok := m.Duration(StageParse)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, d)

	_, ok = m.Duration(StageLoad)
	assert.False(t, ok)

	assert.Equal(t, []Stage{StageParse, StageFetch}, m.Stages())
	assert.Equal(t, 4*time.Second, m.Total())
	assert.Len(t, m.Fields(), 2)

	stop := m.Start(StageLoad)
	stop()
	_, ok = m.Duration(StageLoad)
	assert.True(t, ok)
}
