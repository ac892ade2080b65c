package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoadJob(t *testing.T) {
	a := newJob("customers.csv")
	b := newJob("customers.csv")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "customers", a.Target.Table)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestTransferResult_Complete(t *testing.T) {
	result := NewTransferResult(newJob("customers.csv"))
	assert.Equal(t, "customers.csv", result.FileName)
	assert.Empty(t, result.Warnings)

	result.AddWarning("column Prefix not found, rules skipped")
	result.Complete(true)

	assert.True(t, result.Success)
	assert.Len(t, result.Warnings, 1)
	assert.False(t, result.EndTime.Before(result.StartTime))
}
