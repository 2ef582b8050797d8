package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/tactic/internal/presentation/tui"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	medic := domain.NewSnapshot("medic")
	medic.Position = domain.Vec2{X: 4}
	medic.Health = 100
	medic.LastEvaluator = "health"
	medic.LastScore = 0.15
	medic.Goals = []domain.GoalFrame{{Kind: "think"}, {Kind: "get_item:health"}}

	scout := domain.NewSnapshot("scout")
	scout.Possessed = true

	md := tui.Report("infirmary", 42, []*domain.Snapshot{medic, scout}, map[int]bool{4: false, 1: true})

	assert.Contains(t, md, "# Run report: infirmary")
	assert.Contains(t, md, "Completed **42** ticks.")
	assert.Contains(t, md, "| medic | (4.00, 0.00) | 100 | health (0.150) | think > get_item:health |")
	assert.Contains(t, md, "| scout (possessed) | (0.00, 0.00) | 0 | - | - |")
	assert.Less(t, bytes.Index([]byte(md), []byte("node 1: available")), bytes.Index([]byte(md), []byte("node 4: respawning")))
}

func TestPrint_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tui.Print(&buf, "# title\n", false))
	assert.Equal(t, "# title\n", buf.String())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}
