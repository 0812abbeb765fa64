package filemanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	configmodule "github.com/w3f-grants-archive/storage-hub/internal/config"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/testutil"
	eventbus "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/event"
	logimpl "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/log"
	storagemodule "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/storage"
	configiface "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/config"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
	metricsutil "github.com/w3f-grants-archive/storage-hub/pkg/utils/metrics"
	"go.uber.org/fx"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// newApp 以给定配置装配存储、事件与文件存储引擎模块
func newApp(t *testing.T, appConfig *types.AppConfig, targets ...interface{}) *fx.App {
	t.Helper()
	return fx.New(
		fx.NopLogger,
		fx.Provide(
			func() configiface.AppOptions { return configmodule.StaticOptions{AppConfig: appConfig} },
			func() log.Logger { return logimpl.NewNop() },
		),
		configmodule.Module(),
		eventbus.Module(),
		storagemodule.Module(),
		Module(),
		fx.Populate(targets...),
	)
}

func TestModule_Backends(t *testing.T) {
	cases := []struct {
		name   string
		config *types.AppConfig
	}{
		{"memory", &types.AppConfig{
			FileManager: &types.UserFileManagerConfig{Backend: strPtr("memory")},
		}},
		{"badger", &types.AppConfig{
			FileManager: &types.UserFileManagerConfig{Backend: strPtr("badger")},
			Storage:     &types.UserStorageConfig{InMemory: boolPtr(true)},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			metricsutil.ClearAllMemoryReporters()
			t.Cleanup(metricsutil.ClearAllMemoryReporters)

			// Arrange
			var storage fm.FileStorage
			app := newApp(t, tc.config, &storage)
			ctx := context.Background()
			require.NoError(t, app.Start(ctx))

			// Act
			chunks := testutil.Chunks(2)
			md, key := testutil.File(t, testutil.Bucket(1), chunks)
			require.NoError(t, storage.InsertFile(key, md))
			var outcome fm.WriteOutcome
			for i, c := range chunks {
				var err error
				outcome, err = storage.WriteChunk(key, types.ChunkID(i), c)
				require.NoError(t, err)
			}

			// Assert
			assert.Equal(t, fm.FileComplete, outcome)
			assert.Equal(t, 1, metricsutil.GetRegisteredReportersCount(), "门面已登记内存上报")
			require.NoError(t, app.Stop(ctx))
			assert.Zero(t, metricsutil.GetRegisteredReportersCount(), "停止后注销")
		})
	}
}

func TestModule_UnknownBackend(t *testing.T) {
	var storage fm.FileStorage
	app := newApp(t, &types.AppConfig{
		FileManager: &types.UserFileManagerConfig{Backend: strPtr("rocksdb")},
	}, &storage)

	err := app.Err()

	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrUnknownBackend.Error())
}
