package orchestration

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

// SpecGenerator turns an understanding into a placeable design spec.
type SpecGenerator interface {
	Generate(ctx context.Context, understanding *models.RequestUnderstanding) (*models.DesignSpec, error)
}

// Grid layout used by TemplateSpecGenerator.
const (
	gridOrigin  = 100.0
	gridSpacing = 100.0
	gridColumns = 4
	pinOffset   = 20.0
)

var valuePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(k?ohm|[kmu]?f|[np]f|v)\b`)

// TemplateSpecGenerator lays required components out on a fixed grid and
// chains consecutive components with one wire each.
type TemplateSpecGenerator struct{}

// Generate builds the spec. An empty component list yields PlaceholderSpec.
func (TemplateSpecGenerator) Generate(_ context.Context, understanding *models.RequestUnderstanding) (*models.DesignSpec, error) {
	if understanding == nil || len(understanding.RequiredComponents) == 0 {
		return PlaceholderSpec(), nil
	}

	spec := &models.DesignSpec{
		Schematic: models.Schematic{
			PowerSupply: defaultPowerSupply(),
		},
		SafetyNotes: append([]string(nil), understanding.SafetyConsiderations...),
		EducationalContent: models.EducationalContent{
			Concepts:     append([]string(nil), understanding.EducationalPoints...),
			Calculations: []models.CalculationExample{},
		},
	}

	counters := make(map[string]int)
	for i, req := range understanding.RequiredComponents {
		if strings.TrimSpace(req.LCSCID) == "" {
			return nil, fmt.Errorf("component %q has no catalog id", req.Name)
		}

		prefix, kind := classifyPart(req.Name)
		counters[prefix]++
		designator := fmt.Sprintf("%s%d", prefix, counters[prefix])
		value, unit := parseValue(req.Name)

		comp := models.ComponentSpec{
			ID:          designator,
			Type:        kind,
			Value:       value,
			Unit:        unit,
			LCSCID:      req.LCSCID,
			Position:    gridPosition(i),
			Explanation: req.Purpose,
		}
		spec.Schematic.Components = append(spec.Schematic.Components, comp)

		spec.BOM = append(spec.BOM, models.BOMItem{
			Designator: designator,
			LCSCID:     req.LCSCID,
			Name:       req.Name,
			Quantity:   1,
			InStock:    true,
		})
		spec.AssemblyInstructions = append(spec.AssemblyInstructions, fmt.Sprintf("Place %s (%s)", designator, req.Name))
	}

	comps := spec.Schematic.Components
	for i := 1; i < len(comps); i++ {
		from, to := comps[i-1], comps[i]
		spec.Schematic.Connections = append(spec.Schematic.Connections, models.ConnectionSpec{
			From: models.PinRef{Component: from.ID, Pin: "2"},
			To:   models.PinRef{Component: to.ID, Pin: "1"},
			Net:  fmt.Sprintf("NET%d", i),
			Path: [][]float64{
				{from.Position.X + pinOffset, from.Position.Y},
				{to.Position.X - pinOffset, to.Position.Y},
			},
		})
	}

	return spec, nil
}

// PlaceholderSpec is the single current-limiting resistor design.
func PlaceholderSpec() *models.DesignSpec {
	return &models.DesignSpec{
		Schematic: models.Schematic{
			Components: []models.ComponentSpec{
				{
					ID:          "R1",
					Type:        "resistor",
					Value:       "330",
					Unit:        "ohm",
					LCSCID:      "C21190",
					Position:    models.Point{X: gridOrigin, Y: gridOrigin},
					Explanation: "limits the LED current",
				},
			},
			Connections: []models.ConnectionSpec{},
			PowerSupply: defaultPowerSupply(),
		},
		BOM: []models.BOMItem{
			{Designator: "R1", LCSCID: "C21190", Name: "resistor 330 ohm", Quantity: 1, Price: 0.001, InStock: true},
		},
		AssemblyInstructions: []string{"Place the resistor"},
		SafetyNotes:          []string{"Mind the polarity"},
		EducationalContent: models.EducationalContent{
			Concepts:     []string{"Ohm's law"},
			Calculations: []models.CalculationExample{},
		},
	}
}

func defaultPowerSupply() models.PowerSupplySpec {
	return models.PowerSupplySpec{Voltage: 5, Current: 0.02, Connector: "USB_MICRO"}
}

func gridPosition(i int) models.Point {
	return models.Point{
		X: gridOrigin + float64(i%gridColumns)*gridSpacing,
		Y: gridOrigin + float64(i/gridColumns)*gridSpacing,
	}
}

// classifyPart returns the designator prefix and component type for a part name.
func classifyPart(name string) (string, string) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "led"):
		return "D", "led"
	case strings.Contains(lower, "resistor"), strings.Contains(lower, "ohm"):
		return "R", "resistor"
	case strings.Contains(lower, "capacitor"):
		return "C", "capacitor"
	default:
		return "U", "ic"
	}
}

func parseValue(name string) (string, string) {
	m := valuePattern.FindStringSubmatch(name)
	if m == nil {
		return "", ""
	}
	return m[1], strings.ToLower(m[2])
}
