// Package asmparse consumes the asmlex token stream and produces
// asmir.ParsedLine values, implementing the grammar documented in
// original_source/luz_asm_sim/lib/asmlib/asmparser.py: a line is an
// optional label definition followed by a directive, an instruction,
// or nothing.
package asmparse

import (
	"fmt"

	"github.com/eliben/luz-cpu/asmir"
	"github.com/eliben/luz-cpu/asmlex"
)

// ParseError reports a token sequence that does not match any
// grammar production.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type parser struct {
	toks []asmlex.Token
	pos  int
}

// Parse tokenizes and parses source into a sequence of
// asmir.ParsedLine values, one per non-empty source line.
func Parse(source string) ([]asmir.ParsedLine, error) {
	toks, err := asmlex.Lex(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseFile()
}

func (p *parser) peek() asmlex.Token { return p.toks[p.pos] }

func (p *parser) advance() asmlex.Token {
	t := p.toks[p.pos]
	if t.Kind != asmlex.KindEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseFile() ([]asmir.ParsedLine, error) {
	var lines []asmir.ParsedLine
	for p.peek().Kind != asmlex.KindEOF {
		if p.peek().Kind == asmlex.KindNewline {
			p.advance()
			continue
		}
		line, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		if err := p.expect(asmlex.KindNewline); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (p *parser) expect(k asmlex.Kind) error {
	t := p.advance()
	if t.Kind != k {
		return &ParseError{Line: t.Line, Msg: fmt.Sprintf("unexpected token %v", t)}
	}
	return nil
}

// parseLine handles: label_def? DIRECTIVE args? | label_def? ID args? | label_def
func (p *parser) parseLine() (asmir.ParsedLine, error) {
	label := ""
	lineNo := p.peek().Line

	if p.peek().Kind == asmlex.KindID && p.toks[p.pos+1].Kind == asmlex.KindColon {
		label = p.advance().Text
		p.advance() // colon
		if p.peek().Kind == asmlex.KindNewline {
			return asmir.Instruction{Label: label, LineNo: lineNo}, nil
		}
	}

	switch p.peek().Kind {
	case asmlex.KindDirective:
		name := p.advance().Text
		args, err := p.parseArgsOpt()
		if err != nil {
			return nil, err
		}
		return asmir.Directive{Label: label, Name: name, Args: args, LineNo: lineNo}, nil

	case asmlex.KindID:
		name := p.advance().Text
		args, err := p.parseArgsOpt()
		if err != nil {
			return nil, err
		}
		return asmir.Instruction{Label: label, Mnemonic: name, Args: args, LineNo: lineNo}, nil

	default:
		t := p.peek()
		return nil, &ParseError{Line: t.Line, Msg: fmt.Sprintf("expected a directive or instruction, got %v", t)}
	}
}

func (p *parser) parseArgsOpt() ([]asmir.Argument, error) {
	if p.peek().Kind == asmlex.KindNewline {
		return nil, nil
	}
	var args []asmir.Argument
	for {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Kind != asmlex.KindComma {
			break
		}
		p.advance()
	}
	return args, nil
}

// parseArgument handles: ID | STRING | number | number LPAREN ID RPAREN | ID LPAREN ID RPAREN
func (p *parser) parseArgument() (asmir.Argument, error) {
	t := p.peek()
	switch t.Kind {
	case asmlex.KindString:
		p.advance()
		return asmir.StringArg(t.Text), nil

	case asmlex.KindNumber:
		p.advance()
		if p.peek().Kind == asmlex.KindLParen {
			return p.parseMemRef(asmir.Number(t.Num))
		}
		return asmir.Number(t.Num), nil

	case asmlex.KindID:
		p.advance()
		if p.peek().Kind == asmlex.KindLParen {
			return p.parseMemRef(asmir.Id(t.Text))
		}
		return asmir.Id(t.Text), nil

	default:
		return nil, &ParseError{Line: t.Line, Msg: fmt.Sprintf("expected an argument, got %v", t)}
	}
}

func (p *parser) parseMemRef(offset asmir.Argument) (asmir.Argument, error) {
	p.advance() // lparen
	baseTok := p.advance()
	if baseTok.Kind != asmlex.KindID {
		return nil, &ParseError{Line: baseTok.Line, Msg: "memory reference base must be an identifier"}
	}
	if err := p.expect(asmlex.KindRParen); err != nil {
		return nil, err
	}
	return asmir.MemRef{Offset: offset, Base: asmir.Id(baseTok.Text)}, nil
}
