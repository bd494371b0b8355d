package exprs

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
)

func TestEvaluatorReduce(t *testing.T) {
	evaluator := NewEvaluator()
	pk1 := testSigmaProp(t, 10)
	pk2 := testSigmaProp(t, 11)

	tests := []struct {
		name     string
		expr     Expr
		expected sigma.SigmaBoolean
	}{
		{name: "true constant", expr: &BoolConstant{Value: true}, expected: sigma.TrivialTrueProp},
		{name: "false constant", expr: &BoolConstant{Value: false}, expected: sigma.TrivialFalseProp},
		{name: "sigma constant", expr: pk1, expected: pk1.Value},
		{
			name:     "and over sigma props",
			expr:     &BinAnd{Left: pk1, Right: pk2},
			expected: &sigma.And{Children: []sigma.SigmaBoolean{pk1.Value, pk2.Value}},
		},
		{
			name:     "and short-circuits on false",
			expr:     &BinAnd{Left: pk1, Right: &BoolConstant{Value: false}},
			expected: sigma.TrivialFalseProp,
		},
		{
			name:     "or short-circuits on true",
			expr:     &BinOr{Left: &BoolConstant{Value: true}, Right: pk1},
			expected: sigma.TrivialTrueProp,
		},
		{
			name:     "or drops false children",
			expr:     &BinOr{Left: &BoolConstant{Value: false}, Right: pk2},
			expected: pk2.Value,
		},
		{
			name: "nested connectives",
			expr: &BinOr{
				Left:  &BinAnd{Left: pk1, Right: pk2},
				Right: &BoolConstant{Value: false},
			},
			expected: &sigma.And{Children: []sigma.SigmaBoolean{pk1.Value, pk2.Value}},
		},
	}

	for _, test := range tests {
		value, err := evaluator.Reduce(test.expr, nil)
		if err != nil {
			t.Errorf("%s: unexpected error: %+v", test.name, err)
			continue
		}
		if !sigma.Equal(value, test.expected) {
			t.Errorf("%s: expected %v, got %v", test.name, test.expected, value)
		}
	}
}

func TestEvaluatorRejectsUnresolvedPlaceholders(t *testing.T) {
	evaluator := NewEvaluator()

	_, err := evaluator.Reduce(&DeserializeContext{VarID: 3}, nil)
	if !errors.Is(err, ruleerrors.ErrInterpreter) {
		t.Fatalf("expected ErrInterpreter for an unresolved placeholder, got %+v", err)
	}

	_, err = evaluator.Reduce(&ConstantPlaceholder{Index: 0}, nil)
	if !errors.Is(err, ruleerrors.ErrInterpreter) {
		t.Fatalf("expected ErrInterpreter for a constant placeholder, got %+v", err)
	}
}

func TestEvaluatorEstimateCost(t *testing.T) {
	evaluator := NewEvaluator()
	pk := testSigmaProp(t, 12)

	simple, err := evaluator.EstimateCost(&BoolConstant{Value: true}, nil)
	if err != nil {
		t.Fatalf("failed to price a constant: %+v", err)
	}
	if simple.Total() == 0 {
		t.Error("a constant should cost something")
	}

	compound, err := evaluator.EstimateCost(&BinAnd{Left: pk, Right: &BoolConstant{Value: true}}, nil)
	if err != nil {
		t.Fatalf("failed to price a connective: %+v", err)
	}
	if compound.Total() <= simple.Total() {
		t.Errorf("a compound expression should cost more than one of its operands: %d <= %d",
			compound.Total(), simple.Total())
	}
	if len(compound.Trace()) != 3 {
		t.Errorf("expected a 3-item trace, got %d items", len(compound.Trace()))
	}

	_, err = evaluator.EstimateCost(&DeserializeContext{VarID: 1}, nil)
	if !errors.Is(err, ruleerrors.ErrInterpreter) {
		t.Fatalf("expected ErrInterpreter pricing a placeholder, got %+v", err)
	}
}

func TestStructuralComplexityWeighting(t *testing.T) {
	pk := testSigmaProp(t, 13)
	compound := &SigmaPropConstant{Value: &sigma.And{Children: []sigma.SigmaBoolean{
		pk.Value, pk.Value,
	}}}

	if got := StructuralComplexity(pk); got != 1 {
		t.Errorf("a single-leaf sigma constant should weigh 1, got %d", got)
	}
	if got := StructuralComplexity(compound); got != 3 {
		t.Errorf("a 3-node sigma constant should weigh 3, got %d", got)
	}
	expr := &BinAnd{Left: compound, Right: &BoolConstant{Value: true}}
	if got := StructuralComplexity(expr); got != 5 {
		t.Errorf("expected complexity 5, got %d", got)
	}
}
