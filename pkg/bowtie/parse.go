package bowtie

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseExpr reads the text form printed by Expr.String, for example
//
//	barrier(c, combine(No Flight Plan, Flight Plan), 1)
//
// Bare words are node references and may contain spaces; a name holding a
// comma, parenthesis or quote, or one that reads as a number, is written as a
// Go string literal. Numbers are constants. Switch
// gates take an optional input and threshold: cause(x) is cause(x, 1, 0) and
// barrier(c, x) uses the default barrier threshold.
func ParseExpr(s string) (Expr, error) {
	p := &exprParser{src: s}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: expression %q at %d: %s", ErrInvalidNode, p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *exprParser) expr() (Expr, error) {
	p.skipSpace()
	if p.peek() == '"' {
		name, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return Ref(name), nil
	}

	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(",()\"", rune(p.src[p.pos])) {
		p.pos++
	}
	word := strings.TrimSpace(p.src[start:p.pos])
	if word == "" {
		return nil, p.errorf("expected a name, number or gate")
	}

	if p.peek() == '(' {
		p.pos++
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		return p.gate(GateKind(word), args)
	}
	if v, err := strconv.ParseFloat(word, 64); err == nil {
		return Const(v), nil
	}
	return Ref(word), nil
}

func (p *exprParser) quoted() (string, error) {
	lit, err := strconv.QuotedPrefix(p.src[p.pos:])
	if err != nil {
		return "", p.errorf("unterminated quote")
	}
	name, err := strconv.Unquote(lit)
	if err != nil {
		return "", p.errorf("bad quoted name %s", lit)
	}
	p.pos += len(lit)
	return name, nil
}

func (p *exprParser) args() ([]Expr, error) {
	var out []Expr
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or ')'")
		}
	}
}

func (p *exprParser) gate(kind GateKind, args []Expr) (Expr, error) {
	switch kind {
	case GateBarrier, GateCause, GateFactor:
		return p.switchGate(kind, args)
	case GateConsequence, GateTopEvent:
		if len(args) != 1 {
			return nil, p.errorf("%s takes one argument, got %d", kind, len(args))
		}
		if kind == GateTopEvent {
			return TopEvent(args[0]), nil
		}
		return Consequence(args[0]), nil
	case GateCombine:
		return Combine(args...), nil
	case GateInvert:
		return Invert(args...), nil
	case GateInvertingAnd:
		if len(args) != 2 {
			return nil, p.errorf("%s takes two arguments, got %d", kind, len(args))
		}
		return InvertingAnd(args[0], args[1]), nil
	}
	return nil, p.errorf("unknown gate %q", kind)
}

func (p *exprParser) switchGate(kind GateKind, args []Expr) (Expr, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, p.errorf("%s takes one to three arguments, got %d", kind, len(args))
	}
	if kind != GateCause && len(args) < 2 {
		return nil, p.errorf("%s needs a condition and an input", kind)
	}

	var level *float64
	if len(args) == 3 {
		c, ok := args[2].(constExpr)
		if !ok {
			return nil, p.errorf("%s threshold must be a number, got %s", kind, args[2])
		}
		level = &c.value
	}

	switch kind {
	case GateCause:
		if len(args) == 1 {
			return Cause(args[0]), nil
		}
		if level == nil {
			return CauseAt(args[0], args[1], 0), nil
		}
		return CauseAt(args[0], args[1], *level), nil
	case GateFactor:
		if level == nil {
			return Factor(args[0], args[1]), nil
		}
		return FactorAt(args[0], args[1], *level), nil
	default:
		if level == nil {
			return Barrier(args[0], args[1]), nil
		}
		return BarrierAt(args[0], args[1], *level), nil
	}
}
