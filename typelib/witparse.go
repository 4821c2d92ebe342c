package typelib

import (
	"fmt"
	"unicode"
)

type witTokenType int

const (
	witIdent witTokenType = iota
	witPunct
	witArrow
)

func (t witTokenType) String() string {
	switch t {
	case witIdent:
		return "identifier"
	case witPunct:
		return "punctuation"
	case witArrow:
		return "'->'"
	}
	return "unknown"
}

type witToken struct {
	Value string
	Type  witTokenType
	Line  int
}

func isWITIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '%' || r == '.'
}

// witTokenize splits WIT source into identifiers and punctuation, dropping
// comments. Versions such as 1.2.0 lex as one identifier.
func witTokenize(input string) []witToken {
	var tokens []witToken
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment, including /// doc comments
		if r == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++
			continue
		}

		// Block comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			i += 2
			for i < len(runes) && !(runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/') {
				if runes[i] == '\n' {
					line++
				}
				i++
			}
			i++
			continue
		}

		if r == '-' && i+1 < len(runes) && runes[i+1] == '>' {
			tokens = append(tokens, witToken{"->", witArrow, line})
			i++
			continue
		}

		if isWITIdentRune(r) {
			start := i
			for i < len(runes) && isWITIdentRune(runes[i]) {
				i++
			}
			tokens = append(tokens, witToken{string(runes[start:i]), witIdent, line})
			i--
			continue
		}

		tokens = append(tokens, witToken{string(r), witPunct, line})
	}

	return tokens
}

type witParser struct {
	toks []witToken
	pos  int
}

func (p *witParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].Value
	}
	return ""
}

func (p *witParser) next() *witToken {
	if p.pos < len(p.toks) {
		t := &p.toks[p.pos]
		p.pos++
		return t
	}
	return nil
}

func (p *witParser) accept(tok string) bool {
	if p.peek() == tok {
		p.pos++
		return true
	}
	return false
}

func (p *witParser) expect(tok string) error {
	t := p.next()
	if t == nil {
		return fmt.Errorf("unexpected end of input, expected %q", tok)
	}
	if t.Value != tok {
		return fmt.Errorf("line %d: expected %q, got %q", t.Line, tok, t.Value)
	}
	return nil
}

func (p *witParser) ident() (string, error) {
	t := p.next()
	if t == nil {
		return "", fmt.Errorf("unexpected end of input, expected %v", witIdent)
	}
	if t.Type != witIdent {
		return "", fmt.Errorf("line %d: expected %v, got %q", t.Line, witIdent, t.Value)
	}
	return t.Value, nil
}

// skipStatement consumes tokens through the next ';' at brace depth zero.
func (p *witParser) skipStatement() {
	depth := 0
	for t := p.next(); t != nil; t = p.next() {
		switch t.Value {
		case "{":
			depth++
		case "}":
			depth--
		case ";":
			if depth == 0 {
				return
			}
		}
	}
}

func (p *witParser) file() (*witFile, error) {
	f := &witFile{}
	for p.peek() != "" {
		switch p.peek() {
		case "package":
			p.next()
			if err := p.pkg(f); err != nil {
				return nil, err
			}
		case "interface", "world":
			p.next()
			if _, err := p.ident(); err != nil {
				return nil, err
			}
			if err := p.block(f); err != nil {
				return nil, err
			}
		default:
			if err := p.item(f); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// pkg parses `namespace:name@version;`.
func (p *witParser) pkg(f *witFile) error {
	first, err := p.ident()
	if err != nil {
		return err
	}
	name := first
	if p.accept(":") {
		if name, err = p.ident(); err != nil {
			return err
		}
	}
	f.pkg = name
	if p.accept("@") {
		if f.version, err = p.ident(); err != nil {
			return err
		}
	}
	return p.expect(";")
}

func (p *witParser) block(f *witFile) error {
	if err := p.expect("{"); err != nil {
		return err
	}
	for !p.accept("}") {
		if p.peek() == "" {
			return fmt.Errorf("unterminated block")
		}
		if err := p.item(f); err != nil {
			return err
		}
	}
	return nil
}

func (p *witParser) item(f *witFile) error {
	switch tok := p.peek(); tok {
	case "use", "include":
		p.skipStatement()
		return nil
	case "import", "export":
		p.next()
		name, err := p.ident()
		if err != nil {
			return err
		}
		if !p.accept(":") {
			// import of an external interface path
			p.skipStatement()
			return nil
		}
		if p.accept("interface") {
			return p.block(f)
		}
		fn, err := p.funcSig(name)
		if err != nil {
			return err
		}
		f.funcs = append(f.funcs, fn)
		return p.expect(";")
	case "record", "variant", "enum", "flags":
		p.next()
		d, err := p.members(tok)
		if err != nil {
			return err
		}
		f.decls = append(f.decls, d)
		return nil
	case "resource":
		p.next()
		d, err := p.resource()
		if err != nil {
			return err
		}
		f.decls = append(f.decls, d)
		return nil
	case "type":
		p.next()
		name, err := p.ident()
		if err != nil {
			return err
		}
		if err := p.expect("="); err != nil {
			return err
		}
		t, err := p.typeExpr()
		if err != nil {
			return err
		}
		f.decls = append(f.decls, &witDecl{kind: "type", name: name, alias: t})
		return p.expect(";")
	}

	name, err := p.ident()
	if err != nil {
		return err
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	fn, err := p.funcSig(name)
	if err != nil {
		return err
	}
	f.funcs = append(f.funcs, fn)
	return p.expect(";")
}

// members parses the brace-delimited body of a record, variant, enum or flags.
func (p *witParser) members(kind string) (*witDecl, error) {
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	d := &witDecl{kind: kind, name: name}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	for !p.accept("}") {
		m, err := p.ident()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, name, err)
		}
		member := witParam{name: m}
		switch kind {
		case "record":
			if err := p.expect(":"); err != nil {
				return nil, err
			}
			if member.typ, err = p.typeExpr(); err != nil {
				return nil, err
			}
		case "variant":
			if p.accept("(") {
				if member.typ, err = p.typeExpr(); err != nil {
					return nil, err
				}
				if err := p.expect(")"); err != nil {
					return nil, err
				}
			}
		}
		d.members = append(d.members, member)
		if !p.accept(",") {
			if err := p.expect("}"); err != nil {
				return nil, err
			}
			break
		}
	}
	return d, nil
}

func (p *witParser) resource() (*witDecl, error) {
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	d := &witDecl{kind: "resource", name: name}
	if p.accept(";") {
		return d, nil
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	for !p.accept("}") {
		var fn witFunc
		if p.accept("constructor") {
			params, err := p.params()
			if err != nil {
				return nil, err
			}
			fn = witFunc{name: "constructor", params: params, ctor: true}
		} else {
			m, err := p.ident()
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", name, err)
			}
			if err := p.expect(":"); err != nil {
				return nil, err
			}
			static := p.accept("static")
			if fn, err = p.funcSig(m); err != nil {
				return nil, err
			}
			fn.static = static
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		d.funcs = append(d.funcs, fn)
	}
	return d, nil
}

// funcSig parses `func(params) -> result` after the name and colon.
func (p *witParser) funcSig(name string) (witFunc, error) {
	p.accept("async")
	if err := p.expect("func"); err != nil {
		return witFunc{}, fmt.Errorf("%s: %w", name, err)
	}
	params, err := p.params()
	if err != nil {
		return witFunc{}, fmt.Errorf("%s: %w", name, err)
	}
	fn := witFunc{name: name, params: params}
	if p.accept("->") {
		if fn.result, err = p.typeExpr(); err != nil {
			return witFunc{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return fn, nil
}

func (p *witParser) params() ([]witParam, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var out []witParam
	for !p.accept(")") {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		t, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, witParam{name: name, typ: t})
		if !p.accept(",") {
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			break
		}
	}
	return out, nil
}

func (p *witParser) typeExpr() (*witExpr, error) {
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	e := &witExpr{name: name}
	if p.accept("<") {
		for {
			arg, err := p.typeExpr()
			if err != nil {
				return nil, err
			}
			e.args = append(e.args, arg)
			if p.accept(">") {
				break
			}
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	return e, nil
}
