package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricsiface "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/metrics"
)

func TestMemoryCollector_ExportsModuleStats(t *testing.T) {
	c := NewMemoryCollector()
	c.collect = func() []metricsiface.ModuleMemoryStats {
		return []metricsiface.ModuleMemoryStats{
			{Module: "filemanager", Layer: "core", Objects: 3, ApproxBytes: 4096, CacheItems: 7},
		}
	}
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(c))

	families, err := registry.Gather()
	require.NoError(t, err)

	assert.Len(t, families, 4)
	assert.Equal(t, 4, testutil.CollectAndCount(c))
	for _, f := range families {
		if f.GetName() == "storagehub_module_objects" {
			assert.Equal(t, float64(3), f.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestProvideRegistry(t *testing.T) {
	out, err := ProvideRegistry(ModuleInput{})

	require.NoError(t, err)
	assert.NotNil(t, out.Registry)
	_, err = out.Gatherer.Gather()
	assert.NoError(t, err)
}
