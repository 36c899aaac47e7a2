package mutation

import (
	"routesolver/internal/core"
)

// WeightedRuin pairs a ruin method with its in-group probability.
type WeightedRuin struct {
	Ruin        Ruin
	Probability float64
}

// RuinGroup is an ordered list of ruin methods applied together, selected
// among groups by weight.
type RuinGroup struct {
	Methods []WeightedRuin
	Weight  float64
}

// CompositeRuin selects one group by weight and applies its methods in
// order, each with its own probability; the first method always runs so a
// selected group ruins at least something.
type CompositeRuin struct {
	Groups []RuinGroup
}

func (c CompositeRuin) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	if len(c.Groups) == 0 {
		return s
	}
	weights := make([]float64, len(c.Groups))
	for i, g := range c.Groups {
		weights[i] = g.Weight
	}
	group := c.Groups[core.WeightedIndex(weights, ctx.Random)]
	for i, m := range group.Methods {
		if i == 0 || ctx.Random.Bool(m.Probability) {
			s = m.Ruin.Run(ctx, s)
		}
	}
	return s
}

// WeightedRecreate pairs a recreate method with its selection weight.
type WeightedRecreate struct {
	Recreate Recreate
	Weight   float64
}

// CompositeRecreate picks one recreate method by weight per call.
type CompositeRecreate struct {
	Methods []WeightedRecreate
}

func (c CompositeRecreate) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	if len(c.Methods) == 0 {
		return s
	}
	weights := make([]float64, len(c.Methods))
	for i, m := range c.Methods {
		weights[i] = m.Weight
	}
	return c.Methods[core.WeightedIndex(weights, ctx.Random)].Recreate.Run(ctx, s)
}

// RuinRecreate is the standard mutation: ruin a copy of the parent, recreate
// it, verify no job was lost or duplicated.
type RuinRecreate struct {
	Ruin     Ruin
	Recreate Recreate
}

func (m RuinRecreate) Run(ctx *core.RefinementContext, s *core.Solution) (*core.Solution, error) {
	parent := s
	child := m.Recreate.Run(ctx, m.Ruin.Run(ctx, s.Copy()))
	if err := checkConservation(parent, child); err != nil {
		return nil, err
	}
	return child, nil
}

// WeightedMutation pairs a mutation variant with its selection weight.
type WeightedMutation struct {
	Mutation Mutation
	Weight   float64
}

// SelectMutation picks one variant by weight.
func SelectMutation(variants []WeightedMutation, random core.Random) Mutation {
	weights := make([]float64, len(variants))
	for i, v := range variants {
		weights[i] = v.Weight
	}
	return variants[core.WeightedIndex(weights, random)].Mutation
}
