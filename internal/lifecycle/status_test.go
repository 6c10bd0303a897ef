package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
)

func TestGetPipeline(t *testing.T) {
	standard, err := lifecycle.GetPipeline(lifecycle.PipelineStandard)
	require.NoError(t, err)
	assert.Len(t, standard.Steps, 7)
	assert.Equal(t, lifecycle.StatusProcessing, standard.First())
	assert.Equal(t, lifecycle.StatusDelivered, standard.Last())

	direct, err := lifecycle.GetPipeline(lifecycle.PipelineDirect)
	require.NoError(t, err)
	assert.Len(t, direct.Steps, 2)
	assert.Equal(t, lifecycle.StatusEscrowLocked, direct.First())
	assert.Equal(t, lifecycle.StatusDelivered, direct.Last())

	_, err = lifecycle.GetPipeline("express")
	assert.ErrorIs(t, err, lifecycle.ErrUnknownPipeline)
}

func TestPipelineIndex(t *testing.T) {
	standard, err := lifecycle.GetPipeline(lifecycle.PipelineStandard)
	require.NoError(t, err)

	for i, step := range standard.Steps {
		idx, ok := standard.Index(step.Status)
		assert.True(t, ok)
		assert.Equal(t, i, idx)
	}

	_, ok := standard.Index(lifecycle.StatusEscrowLocked)
	assert.False(t, ok)
}

func TestSelector(t *testing.T) {
	plain := []lifecycle.Item{{Product: lpProduct("p1"), Price: 100}}
	swap := []lifecycle.Item{
		{Product: lpProduct("p1"), Price: 100},
		{Product: lpProduct("p2"), Price: 50, IsSwap: true},
	}

	tests := []struct {
		name          string
		directEnabled bool
		items         []lifecycle.Item
		want          string
	}{
		{"plain escrow with fast path", true, plain, lifecycle.PipelineDirect},
		{"plain escrow without fast path", false, plain, lifecycle.PipelineStandard},
		{"swap always goes through the hub", true, swap, lifecycle.PipelineStandard},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sel := lifecycle.NewSelector(tc.directEnabled)
			assert.Equal(t, tc.want, sel.Select(tc.items).ID)
		})
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, lifecycle.ValidStatus(lifecycle.StatusDelivered))
	assert.True(t, lifecycle.ValidStatus(lifecycle.StatusEscrowLocked))
	assert.False(t, lifecycle.ValidStatus(lifecycle.OrderStatus("refunded")))
}

func lpProduct(id string) lifecycle.Product {
	return lifecycle.Product{ID: id, Name: "Gadget " + id, Price: 100}
}
