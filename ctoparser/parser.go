package ctoparser

import (
	"strconv"
	"strings"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/metamodel"
)

// Parser implements [github.com/concerto-project/concerto-go/modelmanager.Parser].
// The zero value is ready to use.
type Parser struct{}

// Parse scans and parses text as a single .cto source file named name,
// producing a [metamodel.Models] with exactly one [metamodel.Model].
func (Parser) Parse(name string, text []byte) (*metamodel.Models, error) {
	p := &parser{file: name, lex: newLexer(string(text))}

	if err := p.advance(); err != nil {
		return nil, p.wrap(err)
	}

	model, err := p.parseModel()
	if err != nil {
		return nil, err
	}

	return &metamodel.Models{Models: []*metamodel.Model{model}}, nil
}

type parser struct {
	file string
	lex  *lexer
	cur  token
}

func (p *parser) wrap(err error) error {
	if le, ok := err.(*lexError); ok {
		return cerror.New(cerror.ErrIllegalModel, "%s: %s", p.file, le.msg).WithLocation(cerror.FileLocation{
			File: p.file, StartLine: le.line, StartCol: le.col,
		})
	}

	return err
}

func (p *parser) errorf(format string, args ...any) error {
	return cerror.New(cerror.ErrIllegalModel, format, args...).WithLocation(cerror.FileLocation{
		File: p.file, StartLine: p.cur.line, StartCol: p.cur.col,
	})
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return p.wrap(err)
	}

	p.cur = tok

	return nil
}

func (p *parser) atIdent(text string) bool {
	return p.cur.kind == tokIdent && p.cur.text == text
}

func (p *parser) expectIdent(text string) error {
	if !p.atIdent(text) {
		return p.errorf("expected %q, got %s", text, p.cur)
	}

	return p.advance()
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.cur.kind != kind {
		return token{}, p.errorf("expected %s, got %s", what, p.cur)
	}

	tok := p.cur

	return tok, p.advance()
}

func (p *parser) parseModel() (*metamodel.Model, error) {
	loc := cerror.FileLocation{File: p.file, StartLine: p.cur.line, StartCol: p.cur.col}

	if p.atIdent("concerto") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	model := &metamodel.Model{Location: loc}

	if p.atIdent("version") {
		if err := p.advance(); err != nil {
			return nil, err
		}

		ver, err := p.expect(tokString, "a version string")
		if err != nil {
			return nil, err
		}

		model.ConcertoVersion = ver.text
	}

	if err := p.expectIdent("namespace"); err != nil {
		return nil, err
	}

	ns, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}

	model.Namespace = ns

	for p.atIdent("import") {
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}

		model.Imports = append(model.Imports, imp)
	}

	for p.cur.kind != tokEOF {
		decorators, err := p.parseDecorators()
		if err != nil {
			return nil, err
		}

		decl, err := p.parseDeclaration(decorators)
		if err != nil {
			return nil, err
		}

		model.Declarations = append(model.Declarations, decl)
	}

	return model, nil
}

// parseQualifiedName reads a dotted identifier path, e.g. "org.acme.sample".
func (p *parser) parseQualifiedName() (string, error) {
	first, err := p.expect(tokIdent, "an identifier")
	if err != nil {
		return "", err
	}

	parts := []string{first.text}

	for p.cur.kind == tokDot {
		if err := p.advance(); err != nil {
			return "", err
		}

		seg, err := p.expect(tokIdent, "an identifier")
		if err != nil {
			return "", err
		}

		parts = append(parts, seg.text)
	}

	return strings.Join(parts, "."), nil
}

// parseTypeReference reads a dotted type path that may end in a wildcard
// "*", returning the joined namespace-qualified segments up to (but not
// including) the trailing "*" when present, and whether a wildcard was
// seen.
func (p *parser) parseTypeReference() (qualified string, wildcard bool, err error) {
	var parts []string

	first, err := p.expect(tokIdent, "an identifier")
	if err != nil {
		return "", false, err
	}

	parts = append(parts, first.text)

	for p.cur.kind == tokDot {
		if err := p.advance(); err != nil {
			return "", false, err
		}

		if p.cur.kind == tokStar {
			if err := p.advance(); err != nil {
				return "", false, err
			}

			return strings.Join(parts, "."), true, nil
		}

		seg, err := p.expect(tokIdent, "an identifier or '*'")
		if err != nil {
			return "", false, err
		}

		parts = append(parts, seg.text)
	}

	return strings.Join(parts, "."), false, nil
}

func (p *parser) parseImport() (*metamodel.Import, error) {
	if err := p.advance(); err != nil { // "import"
		return nil, err
	}

	qualified, wildcard, err := p.parseTypeReference()
	if err != nil {
		return nil, err
	}

	imp := &metamodel.Import{}

	if wildcard {
		imp.Namespace = qualified
	} else {
		idx := strings.LastIndex(qualified, ".")
		if idx < 0 {
			return nil, p.errorf("import %q must be namespace-qualified", qualified)
		}

		imp.Namespace = qualified[:idx]
		imp.Name = qualified[idx+1:]
	}

	if p.atIdent("from") {
		if err := p.advance(); err != nil {
			return nil, err
		}

		uri, err := p.expect(tokString, "a URI string")
		if err != nil {
			return nil, err
		}

		imp.URI = uri.text
	}

	return imp, nil
}

var declKeywords = map[string]metamodel.DeclarationKind{
	"asset":       metamodel.KindAsset,
	"participant": metamodel.KindParticipant,
	"transaction": metamodel.KindTransaction,
	"event":       metamodel.KindEvent,
	"concept":     metamodel.KindConcept,
	"enum":        metamodel.KindEnum,
}

func (p *parser) parseDeclaration(decorators []*metamodel.Decorator) (*metamodel.Declaration, error) {
	loc := cerror.FileLocation{File: p.file, StartLine: p.cur.line, StartCol: p.cur.col}

	abstract := false
	if p.atIdent("abstract") {
		abstract = true

		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.cur.kind != tokIdent {
		return nil, p.errorf("expected a declaration kind, got %s", p.cur)
	}

	kind, ok := declKeywords[p.cur.text]
	if !ok {
		return nil, p.errorf("unrecognized declaration kind %q", p.cur.text)
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	name, err := p.expect(tokIdent, "a declaration name")
	if err != nil {
		return nil, err
	}

	decl := &metamodel.Declaration{
		Kind:       kind,
		Name:       name.text,
		IsAbstract: abstract,
		Decorators: decorators,
		Location:   loc,
	}

	if p.atIdent("identified") {
		if err := p.advance(); err != nil {
			return nil, err
		}

		if err := p.expectIdent("by"); err != nil {
			return nil, err
		}

		field, err := p.expect(tokIdent, "an identifier field name")
		if err != nil {
			return nil, err
		}

		decl.IdentifiedBy = field.text
	}

	if p.atIdent("extends") {
		if err := p.advance(); err != nil {
			return nil, err
		}

		super, _, err := p.parseTypeReference()
		if err != nil {
			return nil, err
		}

		decl.SuperType = super
	}

	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}

	for p.cur.kind != tokRBrace {
		propDecorators, err := p.parseDecorators()
		if err != nil {
			return nil, err
		}

		prop, err := p.parseProperty(kind, propDecorators)
		if err != nil {
			return nil, err
		}

		decl.Properties = append(decl.Properties, prop)
	}

	if _, err := p.expect(tokRBrace, "'}'"); err != nil {
		return nil, err
	}

	return decl, nil
}

func (p *parser) parseDecorators() ([]*metamodel.Decorator, error) {
	var decorators []*metamodel.Decorator

	for p.cur.kind == tokAt {
		if err := p.advance(); err != nil {
			return nil, err
		}

		name, err := p.expect(tokIdent, "a decorator name")
		if err != nil {
			return nil, err
		}

		dec := &metamodel.Decorator{Name: name.text}

		if p.cur.kind == tokLParen {
			if err := p.advance(); err != nil {
				return nil, err
			}

			for p.cur.kind != tokRParen {
				arg, err := p.parseDecoratorArg()
				if err != nil {
					return nil, err
				}

				dec.Arguments = append(dec.Arguments, arg)

				if p.cur.kind == tokComma {
					if err := p.advance(); err != nil {
						return nil, err
					}
				}
			}

			if _, err := p.expect(tokRParen, "')'"); err != nil {
				return nil, err
			}
		}

		decorators = append(decorators, dec)
	}

	return decorators, nil
}

func (p *parser) parseDecoratorArg() (metamodel.DecoratorArg, error) {
	switch p.cur.kind {
	case tokString:
		arg := metamodel.DecoratorArg{Kind: metamodel.ArgString, String: p.cur.text}
		return arg, p.advance()
	case tokNumber:
		n, err := strconv.ParseFloat(p.cur.text, 64)
		if err != nil {
			return metamodel.DecoratorArg{}, p.errorf("malformed number %q", p.cur.text)
		}

		arg := metamodel.DecoratorArg{Kind: metamodel.ArgNumber, Number: n}

		return arg, p.advance()
	case tokIdent:
		switch p.cur.text {
		case "true", "false":
			arg := metamodel.DecoratorArg{Kind: metamodel.ArgBoolean, Boolean: p.cur.text == "true"}
			return arg, p.advance()
		default:
			qualified, _, err := p.parseTypeReference()
			if err != nil {
				return metamodel.DecoratorArg{}, err
			}

			if strings.Contains(qualified, ".") {
				return metamodel.DecoratorArg{Kind: metamodel.ArgTypeRef, TypeRef: qualified}, nil
			}

			return metamodel.DecoratorArg{Kind: metamodel.ArgIdentifier, Identifer: qualified}, nil
		}
	default:
		return metamodel.DecoratorArg{}, p.errorf("expected a decorator argument, got %s", p.cur)
	}
}

func (p *parser) parseProperty(declKind metamodel.DeclarationKind, decorators []*metamodel.Decorator) (*metamodel.Property, error) {
	loc := cerror.FileLocation{File: p.file, StartLine: p.cur.line, StartCol: p.cur.col}

	if declKind == metamodel.KindEnum {
		if err := p.expectIdent("o"); err != nil {
			return nil, err
		}

		name, err := p.expect(tokIdent, "an enum value name")
		if err != nil {
			return nil, err
		}

		p.skipSemicolon()

		return &metamodel.Property{Kind: metamodel.PropertyEnumValue, Name: name.text, Location: loc}, nil
	}

	propKind := metamodel.PropertyField

	switch {
	case p.atIdent("o"):
		if err := p.advance(); err != nil {
			return nil, err
		}
	case p.cur.kind == tokArrow:
		propKind = metamodel.PropertyRelationship

		if err := p.advance(); err != nil {
			return nil, err
		}
	default:
		return nil, p.errorf("expected 'o' or '-->' to begin a property, got %s", p.cur)
	}

	typeName, _, err := p.parseTypeReference()
	if err != nil {
		return nil, err
	}

	isArray := false
	if p.cur.kind == tokLBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}

		if _, err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}

		isArray = true
	}

	name, err := p.expect(tokIdent, "a property name")
	if err != nil {
		return nil, err
	}

	prop := &metamodel.Property{
		Kind:       propKind,
		Name:       name.text,
		Type:       typeName,
		IsArray:    isArray,
		Decorators: decorators,
		Location:   loc,
	}

	if err := p.parsePropertyModifiers(prop); err != nil {
		return nil, err
	}

	p.skipSemicolon()

	return prop, nil
}

func (p *parser) skipSemicolon() {
	if p.cur.kind == tokSemicolon {
		_ = p.advance()
	}
}

// parsePropertyModifiers reads the zero-or-more trailing modifiers on a
// property line: "optional", "regex=/pattern/flags", "range=[min,max]",
// "length=[min,max]" (preserved as an @length decorator -- the
// declaration graph's Validator only models string-regex and numeric
// range, so a string-length bound is not lossily coerced into a numeric
// Range), and "default=<literal>".
func (p *parser) parsePropertyModifiers(prop *metamodel.Property) error {
	for {
		switch {
		case p.atIdent("optional"):
			prop.IsOptional = true

			if err := p.advance(); err != nil {
				return err
			}
		case p.atIdent("regex"):
			if err := p.parseRegexValidator(prop); err != nil {
				return err
			}
		case p.atIdent("range"):
			if err := p.parseRangeValidator(prop); err != nil {
				return err
			}
		case p.atIdent("length"):
			if err := p.parseLengthAsDecorator(prop); err != nil {
				return err
			}
		case p.atIdent("default"):
			if err := p.parseDefault(prop); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *parser) parseRegexValidator(prop *metamodel.Property) error {
	if err := p.advance(); err != nil { // "regex"
		return err
	}

	// The lexer must not advance past '=' here: it would try to read the
	// regex literal's leading '/' as an ordinary token.
	if p.cur.kind != tokEquals {
		return p.errorf("expected '=', got %s", p.cur)
	}

	p.lex.skipWhitespaceAndComments()

	pattern, flags, err := p.lex.scanRegexLiteral()
	if err != nil {
		return p.wrap(err)
	}

	prop.Validator = &metamodel.Validator{Kind: metamodel.ValidatorStringRegex, Pattern: pattern, Flags: flags}

	return p.advance()
}

func (p *parser) parseRangeValidator(prop *metamodel.Property) error {
	if err := p.advance(); err != nil { // "range"
		return err
	}

	if _, err := p.expect(tokEquals, "'='"); err != nil {
		return err
	}

	minV, maxV, err := p.parseBoundPair()
	if err != nil {
		return err
	}

	prop.Validator = &metamodel.Validator{Kind: metamodel.ValidatorRange, Min: minV, Max: maxV}

	return nil
}

func (p *parser) parseLengthAsDecorator(prop *metamodel.Property) error {
	if err := p.advance(); err != nil { // "length"
		return err
	}

	if _, err := p.expect(tokEquals, "'='"); err != nil {
		return err
	}

	minV, maxV, err := p.parseBoundPair()
	if err != nil {
		return err
	}

	arg := func(v *float64) metamodel.DecoratorArg {
		if v == nil {
			return metamodel.DecoratorArg{Kind: metamodel.ArgIdentifier, Identifer: "_"}
		}

		return metamodel.DecoratorArg{Kind: metamodel.ArgNumber, Number: *v}
	}

	prop.Decorators = append(prop.Decorators, &metamodel.Decorator{
		Name:      "length",
		Arguments: []metamodel.DecoratorArg{arg(minV), arg(maxV)},
	})

	return nil
}

// parseBoundPair reads "[" (number | "_") "," (number | "_") "]", as used
// by both range= and length=; "_" denotes an unbounded side.
func (p *parser) parseBoundPair() (min, max *float64, err error) {
	if _, err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, nil, err
	}

	min, err = p.parseOptionalBound()
	if err != nil {
		return nil, nil, err
	}

	if _, err := p.expect(tokComma, "','"); err != nil {
		return nil, nil, err
	}

	max, err = p.parseOptionalBound()
	if err != nil {
		return nil, nil, err
	}

	if _, err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, nil, err
	}

	return min, max, nil
}

func (p *parser) parseOptionalBound() (*float64, error) {
	if p.cur.kind == tokComma || p.cur.kind == tokRBracket {
		return nil, nil
	}

	if p.atIdent("_") {
		return nil, p.advance()
	}

	neg := false
	if p.cur.kind == tokMinus {
		neg = true

		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	num, err := p.expect(tokNumber, "a number or '_'")
	if err != nil {
		return nil, err
	}

	v, parseErr := strconv.ParseFloat(num.text, 64)
	if parseErr != nil {
		return nil, p.errorf("malformed number %q", num.text)
	}

	if neg {
		v = -v
	}

	return &v, nil
}

func (p *parser) parseDefault(prop *metamodel.Property) error {
	if err := p.advance(); err != nil { // "default"
		return err
	}

	if _, err := p.expect(tokEquals, "'='"); err != nil {
		return err
	}

	switch p.cur.kind {
	case tokString:
		prop.Default = p.cur.text
	case tokNumber, tokIdent:
		prop.Default = p.cur.text
	default:
		return p.errorf("expected a default value, got %s", p.cur)
	}

	prop.HasDefault = true

	return p.advance()
}
