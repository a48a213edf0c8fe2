package declarative

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// parseExports parses an ECMAScript module and returns the literal values of
// the requested export names. Names that are missing or not literal are
// left out of the result.
func parseExports(code []byte, names []string) (map[string]any, error) {
	tree, err := js.Parse(parse.NewInputBytes(code), js.Options{})
	if err != nil {
		return nil, fmt.Errorf("parsing module: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	locals := map[string]js.IExpr{}
	exported := map[string]js.IExpr{}
	aliases := map[string]string{} // exported name → local name

	for _, stmt := range tree.BlockStmt.List {
		switch s := stmt.(type) {
		case *js.VarDecl:
			collectBindings(s, locals)
		case *js.ExportStmt:
			if s.Default || s.Module != nil {
				continue
			}
			if decl, ok := s.Decl.(*js.VarDecl); ok {
				collectBindings(decl, locals)
				collectBindings(decl, exported)
				continue
			}
			for _, alias := range s.List {
				local, name := alias.Name, alias.Binding
				if local == nil {
					local = name
				}
				if name == nil {
					name = local
				}
				aliases[string(name)] = string(local)
			}
		}
	}

	result := make(map[string]any)
	for name := range wanted {
		init, ok := exported[name]
		if !ok {
			if local, aliased := aliases[name]; aliased {
				init, ok = locals[local]
			}
		}
		if !ok || init == nil {
			continue
		}
		if v, ok := literalValue(init); ok {
			result[name] = v
		}
	}
	return result, nil
}

func collectBindings(decl *js.VarDecl, into map[string]js.IExpr) {
	for _, b := range decl.List {
		v, ok := b.Binding.(*js.Var)
		if !ok {
			continue // destructuring patterns are never literal exports
		}
		into[string(v.Data)] = b.Default
	}
}

// literalValue reconstructs a literal expression. The second return is false
// when the expression, or anything nested in it, is not a plain literal.
func literalValue(expr js.IExpr) (any, bool) {
	switch e := expr.(type) {
	case *js.GroupExpr:
		return literalValue(e.X)
	case *js.LiteralExpr:
		return scalarValue(e)
	case *js.UnaryExpr:
		if e.Op != js.NegToken && e.Op != js.PosToken {
			return nil, false
		}
		v, ok := literalValue(e.X)
		n, isNum := v.(float64)
		if !ok || !isNum {
			return nil, false
		}
		if e.Op == js.NegToken {
			n = -n
		}
		return n, true
	case *js.ArrayExpr:
		out := make([]any, 0, len(e.List))
		for _, el := range e.List {
			if el.Spread || el.Value == nil {
				return nil, false
			}
			v, ok := literalValue(el.Value)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return out, true
	case *js.ObjectExpr:
		out := make(map[string]any, len(e.List))
		for _, prop := range e.List {
			if prop.Spread || prop.Name == nil || prop.Name.Computed != nil || prop.Init != nil {
				return nil, false
			}
			key, ok := propertyKey(prop.Name.Literal)
			if !ok {
				return nil, false
			}
			v, ok := literalValue(prop.Value)
			if !ok {
				return nil, false
			}
			out[key] = v
		}
		return out, true
	default:
		return nil, false
	}
}

func scalarValue(lit *js.LiteralExpr) (any, bool) {
	switch lit.TokenType {
	case js.StringToken:
		return unquote(lit.Data)
	case js.DecimalToken:
		f, err := strconv.ParseFloat(strings.ReplaceAll(string(lit.Data), "_", ""), 64)
		return f, err == nil
	case js.BinaryToken, js.OctalToken, js.HexadecimalToken:
		n, err := strconv.ParseInt(strings.ReplaceAll(string(lit.Data), "_", ""), 0, 64)
		return float64(n), err == nil
	case js.TrueToken:
		return true, true
	case js.FalseToken:
		return false, true
	case js.NullToken:
		return nil, true
	default:
		return nil, false
	}
}

func propertyKey(lit js.LiteralExpr) (string, bool) {
	switch lit.TokenType {
	case js.StringToken:
		s, ok := unquote(lit.Data)
		return s, ok
	case js.DecimalToken, js.BinaryToken, js.OctalToken, js.HexadecimalToken:
		v, ok := scalarValue(&lit)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(v.(float64), 'f', -1, 64), true
	default:
		// Identifiers and reserved words used as keys.
		if len(lit.Data) == 0 {
			return "", false
		}
		return string(lit.Data), true
	}
}

// unquote decodes a single- or double-quoted JavaScript string literal.
func unquote(data []byte) (string, bool) {
	if len(data) < 2 {
		return "", false
	}
	q := data[0]
	if (q != '"' && q != '\'') || data[len(data)-1] != q {
		return "", false
	}
	s := string(data[1 : len(data)-1])
	if !strings.ContainsRune(s, '\\') {
		return s, true
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", false
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			if i+2 >= len(s) {
				return "", false
			}
			n, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(n))
			i += 2
		case 'u':
			r, width, ok := unicodeEscape(s[i+1:])
			if !ok {
				return "", false
			}
			b.WriteRune(r)
			i += width
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), true
}

// unicodeEscape decodes the part after "\u": either XXXX or {X...}.
func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0, false
		}
		n, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			return 0, 0, false
		}
		return rune(n), end + 1, true
	}
	if len(s) < 4 {
		return 0, 0, false
	}
	n, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(n), 4, true
}
