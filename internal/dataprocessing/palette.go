package dataprocessing

import (
	"github.com/cespare/xxhash/v2"

	"qoedash/pkg/contracts/domain"
)

// Swatch is a named color with its hex value
type Swatch struct {
	Name string
	Hex  string
}

// Palette is an immutable operator → color table. The zero value maps every
// operator to its fallback.
type Palette struct {
	swatches map[domain.Operator]Swatch
	order    []domain.Operator
	fallback Swatch
}

// NewPalette builds a palette. order fixes the legend order.
func NewPalette(swatches map[domain.Operator]Swatch, order []domain.Operator, fallback Swatch) Palette {
	p := Palette{
		swatches: make(map[domain.Operator]Swatch, len(swatches)),
		order:    append([]domain.Operator(nil), order...),
		fallback: fallback,
	}
	for op, s := range swatches {
		p.swatches[op] = s
	}
	return p
}

// DefaultPalette returns the standard operator colors
func DefaultPalette() Palette {
	return NewPalette(map[domain.Operator]Swatch{
		domain.OperatorTelkomsel: {Name: "red", Hex: "#E53935"},
		domain.OperatorXLAxiata:  {Name: "blue", Hex: "#1E88E5"},
		domain.OperatorIOH:       {Name: "yellow", Hex: "#FDD835"},
	}, []domain.Operator{
		domain.OperatorTelkomsel,
		domain.OperatorXLAxiata,
		domain.OperatorIOH,
	}, Swatch{Name: "gray", Hex: "#9E9E9E"})
}

// Swatch returns the operator's swatch or the fallback
func (p Palette) Swatch(op domain.Operator) Swatch {
	if s, ok := p.swatches[op]; ok {
		return s
	}
	return p.fallback
}

// Color returns the operator's color name
func (p Palette) Color(op domain.Operator) string {
	return p.Swatch(op).Name
}

// Legend lists the palette's operators in order
func (p Palette) Legend() []domain.LegendOperator {
	out := make([]domain.LegendOperator, 0, len(p.order))
	for _, op := range p.order {
		s := p.Swatch(op)
		out = append(out, domain.LegendOperator{Operator: op, Color: s.Name, Hex: s.Hex})
	}
	return out
}

// DelayBucket assigns op a stable bucket in [0, period)
func DelayBucket(op domain.Operator, period int) int {
	if period <= 0 {
		return 0
	}
	return int(xxhash.Sum64String(string(op)) % uint64(period))
}
