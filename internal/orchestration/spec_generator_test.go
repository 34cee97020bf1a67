package orchestration

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

func TestTemplateSpecGenerator_Generate(t *testing.T) {
	spec, err := TemplateSpecGenerator{}.Generate(context.Background(), ledUnderstanding())
	require.NoError(t, err)

	comps := spec.Schematic.Components
	require.Len(t, comps, 3)

	want := []models.ComponentSpec{
		{ID: "D1", Type: "led", LCSCID: "C2286", Position: models.Point{X: 100, Y: 100}, Explanation: "indicator"},
		{ID: "R1", Type: "resistor", Value: "330", Unit: "ohm", LCSCID: "C21190", Position: models.Point{X: 200, Y: 100}, Explanation: "current limit"},
		{ID: "C1", Type: "capacitor", Value: "10", Unit: "uf", LCSCID: "C15850", Position: models.Point{X: 300, Y: 100}, Explanation: "decoupling"},
	}
	if diff := cmp.Diff(want, comps); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}

	conns := spec.Schematic.Connections
	require.Len(t, conns, 2)
	assert.Equal(t, "NET1", conns[0].Net)
	assert.Equal(t, models.PinRef{Component: "D1", Pin: "2"}, conns[0].From)
	assert.Equal(t, models.PinRef{Component: "R1", Pin: "1"}, conns[0].To)
	assert.Equal(t, [][]float64{{120, 100}, {180, 100}}, conns[0].Path)
	assert.Equal(t, "NET2", conns[1].Net)

	require.Len(t, spec.BOM, 3)
	assert.Equal(t, "R1", spec.BOM[1].Designator)
	assert.Equal(t, []string{"check LED polarity"}, spec.SafetyNotes)
	assert.Equal(t, []string{"Ohm's law"}, spec.EducationalContent.Concepts)
}

func TestTemplateSpecGenerator_Grid(t *testing.T) {
	u := &models.RequestUnderstanding{}
	for i := 0; i < 5; i++ {
		u.RequiredComponents = append(u.RequiredComponents, models.ComponentRequirement{Name: "timer IC", LCSCID: "C7593"})
	}

	spec, err := TemplateSpecGenerator{}.Generate(context.Background(), u)
	require.NoError(t, err)

	assert.Equal(t, "U5", spec.Schematic.Components[4].ID)
	assert.Equal(t, models.Point{X: 100, Y: 200}, spec.Schematic.Components[4].Position)
}

func TestTemplateSpecGenerator_Placeholder(t *testing.T) {
	spec, err := TemplateSpecGenerator{}.Generate(context.Background(), &models.RequestUnderstanding{UserGoal: "?"})
	require.NoError(t, err)

	require.Len(t, spec.Schematic.Components, 1)
	r1 := spec.Schematic.Components[0]
	assert.Equal(t, "R1", r1.ID)
	assert.Equal(t, "330", r1.Value)
	assert.Equal(t, "C21190", r1.LCSCID)
	assert.Equal(t, models.Point{X: 100, Y: 100}, r1.Position)
	assert.Empty(t, spec.Schematic.Connections)
}

func TestTemplateSpecGenerator_MissingCatalogID(t *testing.T) {
	u := &models.RequestUnderstanding{RequiredComponents: []models.ComponentRequirement{{Name: "LED"}}}

	_, err := TemplateSpecGenerator{}.Generate(context.Background(), u)
	assert.Error(t, err)
}
