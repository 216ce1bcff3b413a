package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/menagerie/internal/config"
	"github.com/cory-johannsen/menagerie/internal/content"
	"github.com/cory-johannsen/menagerie/internal/game/element"
)

const contentRoot = "../../content"

func shippedContent() config.ContentConfig {
	return config.ContentConfig{
		CreaturesDir: filepath.Join(contentRoot, "creatures"),
		ItemsDir:     filepath.Join(contentRoot, "items"),
		AffinityFile: filepath.Join(contentRoot, "affinity.yaml"),
		GrowthFile:   filepath.Join(contentRoot, "growth.yaml"),
	}
}

func TestLoad_ShippedContent(t *testing.T) {
	b, err := content.Load(shippedContent(), config.RosterConfig{PartyModifier: 1.2}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, 7, b.Templates.Len())
	assert.Len(t, b.Items.All(), 4)
	assert.Equal(t, 1.2, b.Rules.PartyModifier)
	assert.InDelta(t, 1.4, b.Rules.Growth.Multiplier(5), 1e-9)
	assert.Equal(t, 2.0, b.Rules.Affinity.Effectiveness(element.Fire, element.Grass))

	cub, ok := b.Templates.Template("embercub")
	require.True(t, ok)
	require.NotNil(t, cub.Evolution)
	assert.Equal(t, "blazefox", cub.Evolution.Into)
}

func TestLoad_GrowthScript(t *testing.T) {
	cc := shippedContent()
	cc.GrowthFile = ""
	cc.GrowthScript = filepath.Join(contentRoot, "scripts", "growth.lua")

	b, err := content.Load(cc, config.RosterConfig{PartyModifier: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Rules.Growth.Multiplier(1))
	assert.Equal(t, 42, b.Rules.Growth.XPToNext(1))
}

func TestLoadRules_Defaults(t *testing.T) {
	rules, err := content.LoadRules(config.ContentConfig{}, config.RosterConfig{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, rules.PartyModifier)
	assert.Equal(t, 50, rules.Growth.XPToNext(1))
}

func TestLoadRules_Exclusive(t *testing.T) {
	_, err := content.LoadRules(config.ContentConfig{GrowthFile: "a", GrowthScript: "b"}, config.RosterConfig{})
	assert.Error(t, err)
}

func TestLoad_UnknownEvolutionTarget(t *testing.T) {
	dir := t.TempDir()
	creatures := filepath.Join(dir, "creatures")
	items := filepath.Join(dir, "items")
	require.NoError(t, os.MkdirAll(creatures, 0o755))
	require.NoError(t, os.MkdirAll(items, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(creatures, "cub.yaml"), []byte(`
id: cub
name: Cub
element: fire
base: {max_health: 50, speed: 5, attack_speed: 1, attack_damage: 5}
evolution: {into: ghost, level: 5}
`), 0o644))

	_, err := content.Load(config.ContentConfig{CreaturesDir: creatures, ItemsDir: items}, config.RosterConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestWildPool(t *testing.T) {
	b, err := content.Load(shippedContent(), config.RosterConfig{PartyModifier: 1}, nil)
	require.NoError(t, err)

	all, err := b.WildPool(nil)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	pool, err := b.WildPool([]string{"puddlet"})
	require.NoError(t, err)
	assert.Equal(t, []string{"puddlet"}, pool)

	_, err = b.WildPool([]string{"missingno"})
	assert.Error(t, err)
}
