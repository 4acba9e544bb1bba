package placement

import (
	"strings"

	"github.com/tsawler/textpos/contentstream"
	"github.com/tsawler/textpos/core"
)

// TextItem is one piece of shown text and where it was shown.
type TextItem struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"font_size"`
}

// State is the engine's position and font size. The zero value is the
// state at the start of a page.
type State struct {
	X        float64
	Y        float64
	FontSize float64
}

// Engine runs the placement state machine over one page. Use a new Engine
// for every page; an Engine must not be shared between goroutines.
type Engine struct {
	cfg   config
	dec   *textDecoder
	state State
	items []TextItem
	n     int
}

// NewEngine returns an engine in the initial state.
func NewEngine(opts ...Option) *Engine {
	cfg := newConfig(opts)
	return &Engine{
		cfg: cfg,
		dec: newTextDecoder(cfg.policy, cfg.normalize),
	}
}

// Extract runs a fresh engine over ops and returns the items it emitted,
// in order. It never fails.
func Extract(ops []contentstream.Operation, opts ...Option) []TextItem {
	e := NewEngine(opts...)
	for _, op := range ops {
		e.Step(op)
	}
	return e.items
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Items returns a copy of the items emitted so far.
func (e *Engine) Items() []TextItem {
	if len(e.items) == 0 {
		return nil
	}
	return append([]TextItem(nil), e.items...)
}

// Step applies one operation.
func (e *Engine) Step(op contentstream.Operation) {
	defer func() { e.n++ }()

	switch op.Operator.Kind() {
	case contentstream.OpBeginText:
		e.state.X, e.state.Y = 0, 0

	case contentstream.OpSetFont:
		if !e.hasOperands(op, 2) {
			return
		}
		size, err := core.AsNumber(op.Operands[1])
		if err != nil {
			e.skip(op, err)
			return
		}
		e.state.FontSize = size

	case contentstream.OpMoveText, contentstream.OpMoveTextSetLeading:
		if !e.hasOperands(op, 2) {
			return
		}
		tx, ty, ok := e.pair(op, 0)
		if !ok {
			return
		}
		e.state.X += tx
		e.state.Y += ty

	case contentstream.OpSetTextMatrix:
		if !e.hasOperands(op, 6) {
			return
		}
		x, y, ok := e.pair(op, 4)
		if !ok {
			return
		}
		e.state.X, e.state.Y = x, y

	case contentstream.OpShowText:
		if !e.hasOperands(op, 1) {
			return
		}
		s, err := core.AsByteString(op.Operands[0])
		if err != nil {
			e.skip(op, err)
			return
		}
		e.emit(e.text(op, s))

	case contentstream.OpShowTextAdjusted:
		if !e.hasOperands(op, 1) {
			return
		}
		arr, err := core.AsArray(op.Operands[0])
		if err != nil {
			e.skip(op, err)
			return
		}
		var sb strings.Builder
		for _, elem := range arr {
			switch v := elem.(type) {
			case core.ByteString:
				sb.WriteString(e.text(op, v))
			case core.Int, core.Real:
				// Kerning adjustments do not move the position.
			default:
				e.skip(op, &core.TypeError{Want: core.KindByteString, Got: core.KindOf(elem)})
			}
		}
		e.emit(sb.String())
	}
}

func (e *Engine) hasOperands(op contentstream.Operation, n int) bool {
	if len(op.Operands) >= n {
		return true
	}
	e.skip(op, &ArityError{Op: op.Operator, Want: n, Got: len(op.Operands)})
	return false
}

// pair reads two numeric operands starting at i. Nothing changes unless
// both are numbers.
func (e *Engine) pair(op contentstream.Operation, i int) (float64, float64, bool) {
	a, err := core.AsNumber(op.Operands[i])
	if err != nil {
		e.skip(op, err)
		return 0, 0, false
	}
	b, err := core.AsNumber(op.Operands[i+1])
	if err != nil {
		e.skip(op, err)
		return 0, 0, false
	}
	return a, b, true
}

func (e *Engine) text(op contentstream.Operation, s core.ByteString) string {
	text, err := e.dec.decode(s)
	if err != nil {
		e.skip(op, &DecodeError{Op: op.Operator, Bytes: s, Err: err})
		return ""
	}
	return text
}

func (e *Engine) emit(text string) {
	e.items = append(e.items, TextItem{
		Text:     e.dec.finish(text),
		X:        e.state.X,
		Y:        e.state.Y,
		FontSize: e.state.FontSize,
	})
}

func (e *Engine) skip(op contentstream.Operation, err error) {
	if e.cfg.observer == nil {
		return
	}
	e.cfg.observer(Skip{Page: e.cfg.page, Index: e.n, Op: op, Err: err})
}
