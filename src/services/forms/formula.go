package forms

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// formulaCharset is what a formula may contain after every field reference
// has been substituted. Anything else means an unknown identifier survived
// and the formula is rejected rather than evaluated.
var formulaCharset = regexp.MustCompile(`^[0-9+\-*/.() ]+$`)

var leadingNumberRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// HasArithmetic reports whether a formula contains any arithmetic operator.
// Formulas without one are left untouched.
func HasArithmetic(formula string) bool {
	return strings.ContainsAny(formula, "+-*/")
}

// Evaluate substitutes known record fields into the formula and evaluates
// the resulting arithmetic expression. Any rejection or evaluation failure
// returns 0 with a warning; formulas never fail a submission and never
// execute anything but arithmetic.
func Evaluate(formula string, doc map[string]interface{}) float64 {
	expr := formula

	// Longest key first so a key that is a prefix of another cannot steal
	// its occurrences.
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	for _, k := range keys {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(k) + `\b`)
		if err != nil {
			continue
		}
		val := parseFloatLoose(doc[k])
		expr = re.ReplaceAllString(expr, strconv.FormatFloat(val, 'f', -1, 64))
	}

	if !formulaCharset.MatchString(expr) {
		log.Printf("⚠️ formula rejected, unresolved input: %q", formula)
		return 0
	}

	result, err := evalArithmetic(expr)
	if err != nil || math.IsNaN(result) || math.IsInf(result, 0) {
		log.Printf("⚠️ formula evaluation failed for %q: %v", formula, err)
		return 0
	}
	return result
}

// parseFloatLoose mirrors parseFloat-or-zero: a leading numeric prefix
// parses, everything else is 0.
func parseFloatLoose(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		m := leadingNumberRe.FindString(strings.TrimSpace(n))
		if m == "" {
			return 0
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// evalArithmetic is a small recursive-descent evaluator over the fixed
// grammar: numbers, + - * / and parentheses. It deliberately replaces the
// general-purpose evaluator the formula feature once leaned on.
type exprParser struct {
	s string
	i int
}

func evalArithmetic(s string) (float64, error) {
	p := &exprParser{s: s}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.i != len(p.s) {
		return 0, fmt.Errorf("unexpected character at %d", p.i)
	}
	return v, nil
}

func (p *exprParser) skipSpaces() {
	for p.i < len(p.s) && p.s[p.i] == ' ' {
		p.i++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpaces()
	if p.i >= len(p.s) {
		return 0
	}
	return p.s[p.i]
}

// expr := term { (+|-) term }
func (p *exprParser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.i++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.i++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

// term := unary { (*|/) unary }
func (p *exprParser) parseTerm() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.i++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.i++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

// unary := [+|-] unary | primary
func (p *exprParser) parseUnary() (float64, error) {
	switch p.peek() {
	case '+':
		p.i++
		return p.parseUnary()
	case '-':
		p.i++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

// primary := number | '(' expr ')'
func (p *exprParser) parsePrimary() (float64, error) {
	if p.peek() == '(' {
		p.i++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.i++
		return v, nil
	}

	p.skipSpaces()
	start := p.i
	for p.i < len(p.s) && (p.s[p.i] == '.' || (p.s[p.i] >= '0' && p.s[p.i] <= '9')) {
		p.i++
	}
	if start == p.i {
		return 0, fmt.Errorf("expected number at %d", start)
	}
	return strconv.ParseFloat(p.s[start:p.i], 64)
}
