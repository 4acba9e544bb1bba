package placement

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tsawler/textpos/contentstream"
	"github.com/tsawler/textpos/core"
)

func op(name string, operands ...core.Object) contentstream.Operation {
	return contentstream.Operation{Operator: contentstream.Operator(name), Operands: operands}
}

func num(v float64) core.Object { return core.Real(v) }

func str(s string) core.Object { return core.ByteString(s) }

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		ops  []contentstream.Operation
		want []TextItem
	}{
		{
			name: "empty input",
			ops:  nil,
			want: nil,
		},
		{
			name: "show text at origin",
			ops:  []contentstream.Operation{op("Tj", str("a"))},
			want: []TextItem{{Text: "a"}},
		},
		{
			name: "begin text resets position",
			ops: []contentstream.Operation{
				op("BT"), op("Td", num(5), num(5)), op("BT"), op("Tj", str("a")),
			},
			want: []TextItem{{Text: "a", X: 0, Y: 0, FontSize: 0}},
		},
		{
			name: "begin text keeps font size",
			ops: []contentstream.Operation{
				op("Tf", core.Name("F1"), core.Int(12)), op("Td", num(5), num(5)), op("BT"), op("Tj", str("a")),
			},
			want: []TextItem{{Text: "a", FontSize: 12}},
		},
		{
			name: "translation only text matrix",
			ops: []contentstream.Operation{
				op("Tm", core.Int(2), core.Int(0), core.Int(0), core.Int(2), core.Int(10), core.Int(20)),
				op("Tj", str("x")),
			},
			want: []TextItem{{Text: "x", X: 10, Y: 20}},
		},
		{
			name: "cumulative move",
			ops: []contentstream.Operation{
				op("Td", num(1), num(1)), op("Td", num(2), num(2)), op("Tj", str("x")),
			},
			want: []TextItem{{Text: "x", X: 3, Y: 3}},
		},
		{
			name: "TD moves like Td",
			ops: []contentstream.Operation{
				op("Td", num(1), num(-1)), op("TD", core.Int(2), core.Int(-14)), op("Tj", str("x")),
			},
			want: []TextItem{{Text: "x", X: 3, Y: -15}},
		},
		{
			name: "text matrix replaces accumulated moves",
			ops: []contentstream.Operation{
				op("Td", num(7), num(7)), op("Tm", num(1), num(0), num(0), num(1), num(100), num(200)),
				op("Td", num(0), num(-14)), op("Tj", str("x")),
			},
			want: []TextItem{{Text: "x", X: 100, Y: 186}},
		},
		{
			name: "adjusted text concatenates strings",
			ops: []contentstream.Operation{
				op("TJ", core.Array{str("Hel"), core.Int(-100), str("lo")}),
			},
			want: []TextItem{{Text: "Hello"}},
		},
		{
			name: "adjusted text without strings still emits",
			ops: []contentstream.Operation{
				op("TJ", core.Array{core.Int(-100), core.Real(2.5)}),
			},
			want: []TextItem{{Text: ""}},
		},
		{
			name: "adjusted text skips foreign elements",
			ops: []contentstream.Operation{
				op("TJ", core.Array{str("a"), core.Name("N"), str("b"), core.Bool(true)}),
			},
			want: []TextItem{{Text: "ab"}},
		},
		{
			name: "show does not advance",
			ops: []contentstream.Operation{
				op("Tf", core.Name("F1"), num(9.5)), op("Td", num(72), num(700)),
				op("Tj", str("a")), op("Tj", str("b")),
			},
			want: []TextItem{
				{Text: "a", X: 72, Y: 700, FontSize: 9.5},
				{Text: "b", X: 72, Y: 700, FontSize: 9.5},
			},
		},
		{
			name: "malformed font operands leave size unchanged",
			ops: []contentstream.Operation{
				op("Tf", str("not-a-number"), str("also-not-a-number")), op("BT"), op("Tj", str("x")),
			},
			want: []TextItem{{Text: "x", FontSize: 0}},
		},
		{
			name: "font size needs two operands",
			ops: []contentstream.Operation{
				op("Tf", core.Int(12)), op("Tj", str("x")),
			},
			want: []TextItem{{Text: "x"}},
		},
		{
			name: "move with one numeric operand changes nothing",
			ops: []contentstream.Operation{
				op("Td", num(5), core.Name("y")), op("Tj", str("x")),
			},
			want: []TextItem{{Text: "x"}},
		},
		{
			name: "short text matrix is ignored",
			ops: []contentstream.Operation{
				op("Tm", num(1), num(0), num(0), num(1), num(50)), op("Tj", str("x")),
			},
			want: []TextItem{{Text: "x"}},
		},
		{
			name: "show text with a non-string operand emits nothing",
			ops: []contentstream.Operation{
				op("Tj", core.Int(5)), op("Tj"), op("TJ", str("a")), op("TJ"),
			},
			want: nil,
		},
		{
			name: "operand kinds are not coerced",
			ops: []contentstream.Operation{
				op("Tf", core.Name("F1"), str("12")), op("Td", core.Bool(true), core.Null{}), op("Tj", str("x")),
			},
			want: []TextItem{{Text: "x"}},
		},
		{
			name: "extra operands are ignored",
			ops: []contentstream.Operation{
				op("Td", num(1), num(2), num(3)), op("Tj", str("x"), str("y")),
			},
			want: []TextItem{{Text: "x", X: 1, Y: 2}},
		},
		{
			name: "operator names are case sensitive",
			ops: []contentstream.Operation{
				op("tj", str("x")), op("bt"), op("td", num(1), num(1)),
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.ops)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractIsRepeatable(t *testing.T) {
	ops := []contentstream.Operation{
		op("BT"), op("Tf", core.Name("F1"), core.Int(10)), op("Td", num(3), num(4)),
		op("Tj", str("a")), op("TJ", core.Array{str("b"), core.Int(-20), str("c")}), op("ET"),
	}
	first := Extract(ops)
	second := Extract(ops)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	if len(first) != 2 {
		t.Fatalf("got %d items, want 2", len(first))
	}
}

func TestUnknownOperatorsDoNotChangeOutput(t *testing.T) {
	base := []contentstream.Operation{
		op("BT"), op("Tf", core.Name("F1"), core.Int(11)), op("Td", num(10), num(20)),
		op("Tj", str("a")), op("Tm", num(1), num(0), num(0), num(1), num(5), num(6)),
		op("TJ", core.Array{str("b")}), op("ET"),
	}
	want := Extract(base)

	noise := []contentstream.Operation{
		op("re", num(0), num(0), num(10), num(10)),
		op("q"),
		op("cm", num(2), num(0), num(0), num(2), num(30), num(40)),
		op("T*"),
		op("Tc", num(1)),
	}

	for pos := 0; pos <= len(base); pos++ {
		for _, extra := range noise {
			ops := append([]contentstream.Operation{}, base[:pos]...)
			ops = append(ops, extra)
			ops = append(ops, base[pos:]...)
			if diff := cmp.Diff(want, Extract(ops)); diff != "" {
				t.Errorf("inserting %s at %d changed output (-want +got):\n%s", extra.Operator, pos, diff)
			}
		}
	}
}

func TestOutputBoundedByShowOperators(t *testing.T) {
	names := []string{"BT", "ET", "Tf", "Td", "TD", "Tm", "Tj", "TJ", "re", "q"}
	operands := []core.Object{
		core.Int(3), core.Real(-1.5), str("s"), core.Name("N"), core.Null{},
		core.Array{str("a"), core.Int(1)}, core.Bool(false),
	}

	rng := rand.New(rand.NewSource(1))
	for run := 0; run < 200; run++ {
		var ops []contentstream.Operation
		shows := 0
		for i := rng.Intn(40); i > 0; i-- {
			name := names[rng.Intn(len(names))]
			var args []core.Object
			for j := rng.Intn(7); j > 0; j-- {
				args = append(args, operands[rng.Intn(len(operands))])
			}
			if name == "Tj" || name == "TJ" {
				shows++
			}
			ops = append(ops, op(name, args...))
		}
		if got := len(Extract(ops)); got > shows {
			t.Fatalf("run %d: %d items from %d show operators", run, got, shows)
		}
	}
}

func TestEngineStep(t *testing.T) {
	e := NewEngine()
	if e.State() != (State{}) {
		t.Fatalf("initial state = %+v, want zero", e.State())
	}

	e.Step(op("Tf", core.Name("F1"), core.Int(14)))
	e.Step(op("Td", num(1.5), num(2.5)))
	if want := (State{X: 1.5, Y: 2.5, FontSize: 14}); e.State() != want {
		t.Errorf("state = %+v, want %+v", e.State(), want)
	}
	if e.Items() != nil {
		t.Errorf("Items before any show = %v, want nil", e.Items())
	}

	e.Step(op("Tj", str("x")))
	items := e.Items()
	items[0].Text = "changed"
	if e.Items()[0].Text != "x" {
		t.Error("Items returned a slice sharing storage with the engine")
	}
}

func TestObserver(t *testing.T) {
	var skips []Skip
	ops := []contentstream.Operation{
		op("BT"),
		op("Tf", core.Int(12)),
		op("Td", num(1), str("y")),
		op("Tj", core.Int(4)),
		op("TJ", core.Array{str("a"), core.Name("X")}),
		op("Tm", num(1)),
	}
	Extract(ops, WithObserver(func(s Skip) { skips = append(skips, s) }), WithPage(3))

	if len(skips) != 5 {
		t.Fatalf("got %d skips, want 5: %v", len(skips), skips)
	}

	var arity *ArityError
	if !errors.As(skips[0].Err, &arity) || arity.Want != 2 || arity.Got != 1 {
		t.Errorf("skip 0 = %v, want arity error 2/1", skips[0].Err)
	}
	if !errors.Is(skips[0].Err, ErrTooFewOperands) {
		t.Errorf("skip 0 does not wrap ErrTooFewOperands")
	}
	if !errors.Is(skips[1].Err, core.ErrNotANumber) {
		t.Errorf("skip 1 = %v, want ErrNotANumber", skips[1].Err)
	}
	if !errors.Is(skips[2].Err, core.ErrNotAByteString) {
		t.Errorf("skip 2 = %v, want ErrNotAByteString", skips[2].Err)
	}
	if !errors.Is(skips[3].Err, core.ErrNotAByteString) {
		t.Errorf("skip 3 = %v, want ErrNotAByteString for TJ element", skips[3].Err)
	}
	if !errors.As(skips[4].Err, &arity) || arity.Want != 6 {
		t.Errorf("skip 4 = %v, want arity error for Tm", skips[4].Err)
	}

	wantIndex := []int{1, 2, 3, 4, 5}
	for i, s := range skips {
		if s.Index != wantIndex[i] {
			t.Errorf("skip %d index = %d, want %d", i, s.Index, wantIndex[i])
		}
		if s.Page != 3 {
			t.Errorf("skip %d page = %d, want 3", i, s.Page)
		}
	}
}

func TestDecodePolicy(t *testing.T) {
	invalid := core.ByteString("ok\xff")
	ops := []contentstream.Operation{
		op("Tj", invalid),
		op("TJ", core.Array{str("A"), invalid, str("B")}),
	}

	t.Run("lossy", func(t *testing.T) {
		got := Extract(ops)
		want := []TextItem{{Text: "ok\ufffd"}, {Text: "Aok\ufffdB"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("strict", func(t *testing.T) {
		var decodeErrs int
		got := Extract(ops, WithPolicy(Strict), WithObserver(func(s Skip) {
			var de *DecodeError
			if errors.As(s.Err, &de) {
				decodeErrs++
			}
		}))
		want := []TextItem{{Text: ""}, {Text: "AB"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if decodeErrs != 2 {
			t.Errorf("got %d decode errors, want 2", decodeErrs)
		}
	})

	t.Run("valid text is unchanged", func(t *testing.T) {
		for _, p := range []DecodePolicy{Lossy, Strict} {
			got := Extract([]contentstream.Operation{op("Tj", str("héllo wörld"))}, WithPolicy(p))
			if len(got) != 1 || got[0].Text != "héllo wörld" {
				t.Errorf("%v: got %v", p, got)
			}
		}
	})
}

func TestNormalization(t *testing.T) {
	ops := []contentstream.Operation{
		op("TJ", core.Array{str("e"), core.Int(-10), str("\u0301t\u00e9")}),
	}

	if got := Extract(ops)[0].Text; got != "e\u0301t\u00e9" {
		t.Errorf("without normalization got %q", got)
	}
	if got := Extract(ops, WithNormalization())[0].Text; got != "\u00e9t\u00e9" {
		t.Errorf("with normalization got %q, want %q", got, "\u00e9t\u00e9")
	}
}

func TestDecodePolicyString(t *testing.T) {
	if Lossy.String() != "lossy" || Strict.String() != "strict" || DecodePolicy(7).String() != "unknown" {
		t.Errorf("unexpected names: %s %s %s", Lossy, Strict, DecodePolicy(7))
	}
}
