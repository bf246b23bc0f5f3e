package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-strategy-wizard/pkg/visibility"
)

// Evaluator interprets visibleWhen rules written against the wizard
// configuration tree.
//
// Supported forms:
//   - truthiness: `parameters.partialUpdate`
//   - comparisons: `parameters.kalmanType == "window"`, `logics.maxBars != 0`
//   - composition: `a == "x" && (b || !c)`
//
// Identifiers resolve against visibility.Context.Config using dot traversal;
// the `data.` prefix resolves against visibility.Context.Data. Parsed rules are
// cached, so an Evaluator is cheap to call on every render.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]Rule
}

// New returns an Evaluator with an empty rule cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]Rule)}
}

// Eval compiles (or reuses) rule and evaluates it. An empty rule is visible.
func (e *Evaluator) Eval(fieldPath, rule string, ctx visibility.Context) (bool, error) {
	compiled, err := e.compile(rule)
	if err != nil {
		return false, fmt.Errorf("visibility: field %q: %w", fieldPath, err)
	}
	return compiled.Eval(ctx)
}

func (e *Evaluator) compile(rule string) (Rule, error) {
	key := strings.TrimSpace(rule)
	e.mu.RLock()
	cached, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	compiled, err := Compile(key)
	if err != nil {
		return Rule{}, err
	}

	e.mu.Lock()
	if e.cache == nil {
		e.cache = make(map[string]Rule)
	}
	e.cache[key] = compiled
	e.mu.Unlock()
	return compiled, nil
}

// Rule is a parsed visibleWhen expression.
type Rule struct {
	source string
	root   node
}

// Compile parses rule without evaluating it. Schema loaders use it to reject
// malformed rules up front.
func Compile(rule string) (Rule, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return Rule{}, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return Rule{}, err
	}
	root, err := parse(tokens)
	if err != nil {
		return Rule{}, err
	}
	return Rule{source: trimmed, root: root}, nil
}

// String returns the original rule text.
func (r Rule) String() string {
	return r.source
}

// Identifiers lists the configuration paths the rule reads, in order of
// appearance.
func (r Rule) Identifiers() []string {
	if r.root == nil {
		return nil
	}
	var out []string
	r.root.identifiers(&out)
	return out
}

// Eval evaluates the rule. The zero Rule is always visible.
func (r Rule) Eval(ctx visibility.Context) (bool, error) {
	if r.root == nil {
		return true, nil
	}
	return r.root.eval(ctx)
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
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
		case ch == '(':
			tokens = append(tokens, token{kind: tokLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokRParen, raw: ")"})
			i++
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokNeq, raw: "!="})
				i += 2
				continue
			}
			tokens = append(tokens, token{kind: tokNot, raw: "!"})
			i++
		case ch == '=':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, errors.New("visibility: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{kind: tokEq, raw: "=="})
			i += 2
		case ch == '&':
			if i+1 >= len(input) || input[i+1] != '&' {
				return nil, errors.New("visibility: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{kind: tokAnd, raw: "&&"})
			i += 2
		case ch == '|':
			if i+1 >= len(input) || input[i+1] != '|' {
				return nil, errors.New("visibility: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{kind: tokOr, raw: "||"})
			i += 2
		case ch == '"' || ch == '\'':
			end, value, err := readString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, raw: value})
			i = end
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			tokens = append(tokens, classifyWord(input[start:i]))
		}
	}
	return tokens, nil
}

func readString(input string, start int) (int, string, error) {
	quote := input[start]
	escaped := false
	for i := start + 1; i < len(input); i++ {
		c := input[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := input[start+1 : i]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `"`, `\"`)
			body = strings.ReplaceAll(body, `\'`, `'`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return 0, "", fmt.Errorf("visibility: invalid string literal: %w", err)
		}
		return i + 1, value, nil
	}
	return 0, "", errors.New("visibility: unterminated string literal")
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|':
		return true
	}
	return false
}

func classifyWord(raw string) token {
	switch strings.ToLower(raw) {
	case "true", "false":
		return token{kind: tokBool, raw: strings.ToLower(raw)}
	case "null", "nil":
		return token{kind: tokNull, raw: "null"}
	}
	if c := raw[0]; (c >= '0' && c <= '9') || c == '-' || c == '+' {
		return token{kind: tokNumber, raw: raw}
	}
	return token{kind: tokIdent, raw: raw}
}

type node interface {
	eval(ctx visibility.Context) (bool, error)
	identifiers(out *[]string)
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

func (n orNode) identifiers(out *[]string) {
	n.left.identifiers(out)
	n.right.identifiers(out)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

func (n andNode) identifiers(out *[]string) {
	n.left.identifiers(out)
	n.right.identifiers(out)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n notNode) identifiers(out *[]string) { n.inner.identifiers(out) }

type truthyNode struct{ ident string }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.ident)
	return ok && truthy(value), nil
}

func (n truthyNode) identifiers(out *[]string) { *out = append(*out, n.ident) }

type compareNode struct {
	ident   string
	negate  bool
	literal token
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.ident)
	equal, err := n.equals(value)
	if err != nil {
		return false, err
	}
	return equal != n.negate, nil
}

func (n compareNode) equals(value any) (bool, error) {
	switch n.literal.kind {
	case tokNull:
		return value == nil, nil
	case tokBool:
		got, _ := coerceBool(value)
		return got == (n.literal.raw == "true"), nil
	case tokNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, fmt.Errorf("visibility: invalid number literal %q", n.literal.raw)
		}
		got, _ := coerceNumber(value)
		return got == want, nil
	default:
		return coerceString(value) == n.literal.raw, nil
	}
}

func (n compareNode) identifiers(out *[]string) { *out = append(*out, n.ident) }

type stream struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	s := &stream{tokens: tokens}
	root, err := s.parseOr()
	if err != nil {
		return nil, err
	}
	if s.pos < len(s.tokens) {
		return nil, fmt.Errorf("visibility: unexpected token %q", s.tokens[s.pos].raw)
	}
	return root, nil
}

func (s *stream) parseOr() (node, error) {
	left, err := s.parseAnd()
	if err != nil {
		return nil, err
	}
	for s.match(tokOr) {
		right, err := s.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (s *stream) parseAnd() (node, error) {
	left, err := s.parseUnary()
	if err != nil {
		return nil, err
	}
	for s.match(tokAnd) {
		right, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (s *stream) parseUnary() (node, error) {
	if s.match(tokNot) {
		inner, err := s.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return s.parsePrimary()
}

func (s *stream) parsePrimary() (node, error) {
	if s.match(tokLParen) {
		inner, err := s.parseOr()
		if err != nil {
			return nil, err
		}
		if !s.match(tokRParen) {
			return nil, errors.New("visibility: missing closing ')'")
		}
		return inner, nil
	}

	if s.pos >= len(s.tokens) {
		return nil, errors.New("visibility: empty expression")
	}
	ident := s.tokens[s.pos]
	if ident.kind != tokIdent {
		return nil, fmt.Errorf("visibility: expected identifier, got %q", ident.raw)
	}
	s.pos++

	negate := false
	switch {
	case s.match(tokEq):
	case s.match(tokNeq):
		negate = true
	default:
		return truthyNode{ident: ident.raw}, nil
	}

	if s.pos >= len(s.tokens) {
		return nil, errors.New("visibility: missing literal")
	}
	lit := s.tokens[s.pos]
	s.pos++
	switch lit.kind {
	case tokString, tokNumber, tokBool, tokNull:
	case tokIdent:
		// bare words compare as strings: kalmanType == window
		lit.kind = tokString
	default:
		return nil, fmt.Errorf("visibility: expected literal, got %q", lit.raw)
	}
	return compareNode{ident: ident.raw, negate: negate, literal: lit}, nil
}

func (s *stream) match(kind tokenKind) bool {
	if s.pos < len(s.tokens) && s.tokens[s.pos].kind == kind {
		s.pos++
		return true
	}
	return false
}

func lookup(ctx visibility.Context, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if rest, ok := strings.CutPrefix(path, "data."); ok {
		return lookupMap(ctx.Data, rest)
	}
	return lookupMap(ctx.Config, path)
}

func lookupMap(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		typed, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := typed[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if n, ok := coerceNumber(value); ok {
		return n != 0
	}
	return true
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed, true
		}
	}
	return truthy(value), true
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return fmt.Sprint(value)
}
