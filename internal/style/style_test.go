package style_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiosync/internal/style"
)

func TestLabelUnchecked(t *testing.T) {
	sheet := style.Default()

	yes := sheet.Label("yes", false)
	no := sheet.Label("no", false)

	assert.Empty(t, cmp.Diff(yes, no), "unchecked labels share one base style")
	assert.Equal(t, "#1A2332", yes["background-color"])
	assert.Equal(t, "1px solid #2D3748", yes["border"])
	assert.Equal(t, "#E2E8F0", yes["color"])
	assert.Equal(t, "500", yes["font-weight"])
	assert.Equal(t, "none", yes["transform"])
}

func TestLabelChecked(t *testing.T) {
	sheet := style.Default()

	yes := sheet.Label("yes", true)
	assert.Equal(t, "#2DBE6C", yes["background-color"])
	assert.Equal(t, "#FFFFFF", yes["color"])
	assert.Equal(t, "700", yes["font-weight"])
	assert.Equal(t, "translateY(-1px)", yes["transform"])
	assert.NotEqual(t, "none", yes["box-shadow"])

	no := sheet.Label("no", true)
	assert.Equal(t, "#FFB020", no["background-color"])
	assert.Equal(t, "#1A2332", no["color"])
}

func TestLabelFallbackPalette(t *testing.T) {
	sheet := style.Default()

	got := sheet.Label("maybe", true)
	assert.Equal(t, "#2196F3", got["background-color"], "unknown values still get a visible selected state")
	assert.Equal(t, "700", got["font-weight"])
}

func TestLabelPureFunction(t *testing.T) {
	sheet := style.Default()

	first := sheet.Label("yes", true)
	first["background-color"] = "mutated"

	second := sheet.Label("yes", true)
	assert.Equal(t, "#2DBE6C", second["background-color"], "callers get independent copies")
}

func TestHiddenControl(t *testing.T) {
	props := style.HiddenControl()

	require.Equal(t, "0", props["opacity"])
	require.Equal(t, "none", props["pointer-events"])
	assert.Equal(t, "absolute", props["position"])
	assert.Equal(t, "0", props["width"])
	assert.Equal(t, "0", props["height"])
}
