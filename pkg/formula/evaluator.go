// Package formula evaluates the restricted arithmetic expressions used by
// derived form fields. The grammar covers infix `+ - * /`, parentheses,
// numeric literals, unary minus, and identifiers bound to field values.
// Evaluation is a pure function of (formula, bindings); there is no dynamic
// code execution.
package formula

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmptyFormula signals a blank or whitespace-only formula.
	ErrEmptyFormula = errors.New("formula: empty expression")
	// ErrUnboundIdentifier signals a formula referencing a field id that is
	// not present in the bindings (for example a deleted parent field).
	ErrUnboundIdentifier = errors.New("formula: unbound identifier")
	// ErrNonNumericOperand signals an operand that cannot be coerced to a
	// number. Surfacing this keeps NaN out of stored form data.
	ErrNonNumericOperand = errors.New("formula: non-numeric operand")
	// ErrDivisionByZero signals a division whose divisor evaluated to zero.
	ErrDivisionByZero = errors.New("formula: division by zero")
)

// Evaluator parses and evaluates derived-field formulas. The zero value is
// ready to use; New exists for symmetry with the rest of the module.
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

// Eval evaluates the formula against the provided bindings and returns the
// numeric result. Field ids in the bindings are substituted for synthesized
// variable names before parsing, so ids do not need to be lexically valid
// identifiers (numeric-looking ids such as timestamps are fine).
func (e *Evaluator) Eval(formula string, bindings map[string]any) (float64, error) {
	trimmed := strings.TrimSpace(formula)
	if trimmed == "" {
		return 0, ErrEmptyFormula
	}

	rewritten, renamed := rewriteIdentifiers(trimmed, bindings)

	tokens, err := tokenize(rewritten)
	if err != nil {
		return 0, err
	}

	stream := &tokenStream{tokens: tokens}
	node, err := parseSum(stream)
	if err != nil {
		return 0, err
	}
	if stream.pos < len(stream.tokens) {
		return 0, fmt.Errorf("formula: unexpected token %q", stream.tokens[stream.pos].raw)
	}

	return node.eval(renamed)
}

// EvalString evaluates the formula and formats the result without a trailing
// fractional part when the value is integral.
func (e *Evaluator) EvalString(formula string, bindings map[string]any) (string, error) {
	value, err := e.Eval(formula, bindings)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(value, 'f', -1, 64), nil
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdentifier
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '+':
			tokens = append(tokens, token{kind: tokenPlus, raw: "+"})
			i++
		case ch == '-':
			tokens = append(tokens, token{kind: tokenMinus, raw: "-"})
			i++
		case ch == '*':
			tokens = append(tokens, token{kind: tokenStar, raw: "*"})
			i++
		case ch == '/':
			tokens = append(tokens, token{kind: tokenSlash, raw: "/"})
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch >= '0' && ch <= '9' || ch == '.':
			start := i
			seenDot := false
			for i < len(input) {
				c := input[i]
				if c == '.' {
					if seenDot {
						break
					}
					seenDot = true
					i++
					continue
				}
				if c < '0' || c > '9' {
					break
				}
				i++
			}
			raw := input[start:i]
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("formula: invalid number literal %q", raw)
			}
			tokens = append(tokens, token{kind: tokenNumber, raw: raw})
		case isIdentChar(ch):
			start := i
			for i < len(input) && isIdentChar(input[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdentifier, raw: input[start:i]})
		default:
			return nil, fmt.Errorf("formula: unexpected character %q", string(ch))
		}
	}

	return tokens, nil
}

func isIdentChar(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

type exprNode interface {
	eval(bindings map[string]any) (float64, error)
}

type literalNode struct {
	value float64
}

func (n literalNode) eval(map[string]any) (float64, error) {
	return n.value, nil
}

type variableNode struct {
	name string
}

func (n variableNode) eval(bindings map[string]any) (float64, error) {
	value, ok := bindings[n.name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnboundIdentifier, n.name)
	}
	number, ok := coerceNumber(value)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNonNumericOperand, n.name)
	}
	return number, nil
}

type negateNode struct {
	inner exprNode
}

func (n negateNode) eval(bindings map[string]any) (float64, error) {
	value, err := n.inner.eval(bindings)
	if err != nil {
		return 0, err
	}
	return -value, nil
}

type binaryNode struct {
	op    tokenKind
	left  exprNode
	right exprNode
}

func (n binaryNode) eval(bindings map[string]any) (float64, error) {
	left, err := n.left.eval(bindings)
	if err != nil {
		return 0, err
	}
	right, err := n.right.eval(bindings)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case tokenPlus:
		return left + right, nil
	case tokenMinus:
		return left - right, nil
	case tokenStar:
		return left * right, nil
	case tokenSlash:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left / right, nil
	default:
		return 0, fmt.Errorf("formula: unsupported operator")
	}
}

type tokenStream struct {
	tokens []token
	pos    int
}

func (s *tokenStream) match(kinds ...tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	for _, kind := range kinds {
		if s.tokens[s.pos].kind == kind {
			out := s.tokens[s.pos]
			s.pos++
			return out, true
		}
	}
	return token{}, false
}

// parseSum handles `+` and `-`, the loosest-binding level. Left-to-right
// associativity falls out of the loop structure.
func parseSum(stream *tokenStream) (exprNode, error) {
	left, err := parseProduct(stream)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := stream.match(tokenPlus, tokenMinus)
		if !ok {
			return left, nil
		}
		right, err := parseProduct(stream)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op.kind, left: left, right: right}
	}
}

func parseProduct(stream *tokenStream) (exprNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := stream.match(tokenStar, tokenSlash)
		if !ok {
			return left, nil
		}
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op.kind, left: left, right: right}
	}
}

func parseUnary(stream *tokenStream) (exprNode, error) {
	if _, ok := stream.match(tokenMinus); ok {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return negateNode{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (exprNode, error) {
	if _, ok := stream.match(tokenLParen); ok {
		inner, err := parseSum(stream)
		if err != nil {
			return nil, err
		}
		if _, ok := stream.match(tokenRParen); !ok {
			return nil, errors.New("formula: missing closing ')'")
		}
		return inner, nil
	}
	if tok, ok := stream.match(tokenNumber); ok {
		value, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("formula: invalid number literal %q", tok.raw)
		}
		return literalNode{value: value}, nil
	}
	if tok, ok := stream.match(tokenIdentifier); ok {
		return variableNode{name: tok.raw}, nil
	}
	if stream.pos >= len(stream.tokens) {
		return nil, errors.New("formula: unexpected end of expression")
	}
	return nil, fmt.Errorf("formula: unexpected token %q", stream.tokens[stream.pos].raw)
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			// A blank field participates in arithmetic as zero; formulas over
			// not-yet-filled fields evaluate instead of erroring.
			return 0, true
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
