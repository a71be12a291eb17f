package daemon

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/stratum/internal/config"
	"github.com/jmylchreest/stratum/internal/layout"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Screen.Width = 800
	cfg.Screen.Height = 480
	d, err := New(cfg, "")
	require.NoError(t, err)
	return d
}

func TestNew_BuildsCommittedScene(t *testing.T) {
	d := newTestDaemon(t)

	d.Lock()
	layers, err := d.Engine().LayersOnScreen(0)
	d.Unlock()
	require.NoError(t, err)
	assert.Len(t, layers, 4)
}

func TestDaemon_SwitchMode(t *testing.T) {
	d := newTestDaemon(t)

	require.NoError(t, d.SwitchMode("fullscreen"))
	assert.Equal(t, "fullscreen", d.Shell().CurrentMode().String())

	assert.Error(t, d.SwitchMode("cascade"))
	assert.Equal(t, "fullscreen", d.Shell().CurrentMode().String())
}

func TestDaemon_Surfaces(t *testing.T) {
	d := newTestDaemon(t)

	d.Lock()
	require.NoError(t, d.Engine().CreateSurface(7, "buffer"))
	require.NoError(t, d.Engine().CreateSurface(3, "buffer"))
	d.Unlock()

	assert.Equal(t, []uint32{7, 3}, d.Surfaces())
}

func TestDaemon_SceneDump(t *testing.T) {
	d := newTestDaemon(t)

	d.Lock()
	require.NoError(t, d.Engine().CreateSurface(7, "buffer"))
	require.NoError(t, d.Engine().ConfigureSurface(7, 400, 300))
	d.Unlock()

	data, err := d.SceneDump()
	require.NoError(t, err)

	var dump sceneDump
	require.NoError(t, json.Unmarshal(data, &dump))

	assert.Equal(t, "tiling", dump.Mode)
	assert.NotEmpty(t, dump.LastCommit)
	assert.Len(t, dump.Layers, 4)
	require.Len(t, dump.Surfaces, 1)
	assert.Equal(t, uint32(7), dump.Surfaces[0].ID)
	assert.Equal(t, []uint32{1000, 4000, 2000, 3000}, dump.Screens[0])
	require.NotEmpty(t, dump.RenderList)
	assert.Equal(t, uint32(7), dump.RenderList[0].Surface)
}

func TestDaemon_ToggleHome(t *testing.T) {
	d := newTestDaemon(t)

	require.NoError(t, d.ToggleHome(true))
	assert.True(t, d.Shell().HomeVisible())

	d.Lock()
	props, err := d.Engine().LayerProperties(layout.LayerID(3000))
	d.Unlock()
	require.NoError(t, err)
	assert.True(t, props.Visible)
}

func TestConfigWatcher_DeliversValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stratumd.toml")

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Save(path))

	got := make(chan *config.Config, 1)
	w, err := NewConfigWatcher(path, func(c *config.Config) {
		select {
		case got <- c:
		default:
		}
	}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	cfg.Shell.DefaultMode = "random"
	require.NoError(t, cfg.Save(path))

	select {
	case c := <-got:
		assert.Equal(t, "random", c.Shell.DefaultMode)
	case <-time.After(5 * time.Second):
		t.Fatal("config change never delivered")
	}
}

func TestConfigWatcher_IgnoresInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stratumd.toml")

	require.NoError(t, config.DefaultConfig().Save(path))

	got := make(chan *config.Config, 1)
	w, err := NewConfigWatcher(path, func(c *config.Config) { got <- c }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	bad := config.DefaultConfig()
	bad.Shell.DefaultMode = "cascade"
	require.NoError(t, bad.Save(path))

	select {
	case <-got:
		t.Fatal("invalid config should not be delivered")
	case <-time.After(500 * time.Millisecond):
	}
}
