package tool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	calculatorAllowedChars  = "0123456789+-*/(). "
	calculatorMaxExprLength = 128
)

var calculatorBannedSequences = []string{"__", "//", "**"}

// CalculatorTool evaluates basic arithmetic with strict input sanitization.
type CalculatorTool struct{}

func NewCalculatorTool() *CalculatorTool {
	return &CalculatorTool{}
}

func (c *CalculatorTool) Name() string { return "calculator" }

func (c *CalculatorTool) Run(_ context.Context, req Request) (Response, error) {
	expression := strings.TrimSpace(req.Slot("operation"))
	if expression == "" {
		expression = strings.TrimSpace(req.Query)
	}

	if err := validateExpression(expression); err != nil {
		return Response{
			Content: "I couldn't compute that expression. Please check the syntax.",
			Data:    map[string]any{"error": err.Error()},
		}, nil
	}

	result, err := evaluateExpression(expression)
	if err != nil {
		return Response{
			Content: "I couldn't compute that expression. Please check the syntax.",
			Data:    map[string]any{"error": err.Error()},
		}, nil
	}

	return Response{
		Content: strconv.FormatFloat(result, 'f', -1, 64),
		Data:    map[string]any{"expression": expression, "result": result},
		Success: true,
	}, nil
}

func validateExpression(expression string) error {
	if expression == "" {
		return fmt.Errorf("expression is empty")
	}
	if len(expression) > calculatorMaxExprLength {
		return fmt.Errorf("expression too long")
	}
	for _, ch := range expression {
		if !strings.ContainsRune(calculatorAllowedChars, ch) {
			return fmt.Errorf("unsupported character %q", ch)
		}
	}
	for _, seq := range calculatorBannedSequences {
		if strings.Contains(expression, seq) {
			return fmt.Errorf("forbidden operator sequence %q", seq)
		}
	}

	balance := 0
	for _, ch := range expression {
		switch ch {
		case '(':
			balance++
		case ')':
			balance--
			if balance < 0 {
				return fmt.Errorf("expression has unbalanced parentheses")
			}
		}
	}
	if balance != 0 {
		return fmt.Errorf("expression has unbalanced parentheses")
	}
	return nil
}

func evaluateExpression(expression string) (float64, error) {
	p := &exprParser{input: expression}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.hasNext() {
		return 0, fmt.Errorf("unexpected token at position %d", p.pos)
	}
	return value, nil
}

// exprParser is a recursive-descent evaluator for + - * / with parentheses
// and unary signs.
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('+'):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case p.match('-'):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('*'):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.match('/'):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpaces()
	if p.match('+') {
		return p.parseUnary()
	}
	if p.match('-') {
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.match('(') {
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if !p.match(')') {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		return value, nil
	}
	return p.parseNumber()
}

func (p *exprParser) parseNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	hasDigit := false
	hasDot := false

	for p.hasNext() {
		ch := p.peek()
		if ch >= '0' && ch <= '9' {
			hasDigit = true
			p.pos++
			continue
		}
		if ch == '.' {
			if hasDot {
				return 0, fmt.Errorf("invalid number format at position %d", p.pos)
			}
			hasDot = true
			p.pos++
			continue
		}
		break
	}

	if !hasDigit {
		return 0, fmt.Errorf("expected number at position %d", start)
	}

	raw := p.input[start:p.pos]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return value, nil
}

func (p *exprParser) skipSpaces() {
	for p.hasNext() && p.peek() == ' ' {
		p.pos++
	}
}

func (p *exprParser) hasNext() bool {
	return p.pos < len(p.input)
}

func (p *exprParser) peek() byte {
	return p.input[p.pos]
}

func (p *exprParser) match(expected byte) bool {
	if p.hasNext() && p.peek() == expected {
		p.pos++
		return true
	}
	return false
}
