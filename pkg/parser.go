package alba

// Parser is a deterministic single-lookahead parser over the token stream.
// Acceptance requires consuming the end-of-input token: trailing tokens and
// premature end of input are both syntax errors.
//
// Precedence is structural: sequencing binds loosest, then declarations,
// assignment, match and while, then application, then atoms. A declaration's
// body extends maximally to the right, so `a; decl x <- 1 in b; c` sequences
// `a` with a declaration whose body is `b; c`.
type Parser struct {
	filename  string
	tokenizer Tokenizer
	buf       *Token
	index     int // tokens consumed, used to tag syntax errors
}

func NewParser(tokenizer Tokenizer) *Parser {
	return &Parser{
		tokenizer: tokenizer,
		filename:  tokenizer.GetFilename(),
	}
}

func (p *Parser) GetFilename() string {
	return p.filename
}

// Run consumes the whole token stream and returns the program expression.
func (p *Parser) Run() (Expr, error) {
	go p.tokenizer.Do()

	expr, err := p.expr()
	if err != nil {
		return nil, err
	}

	end := p.next()
	switch end.Typ {
	case TokenEOF:
		return expr, nil
	case TokenError:
		return nil, p.lexError(end)
	default:
		return nil, &UnexpectedTokenError{Index: p.index - 1, Token: end}
	}
}

func (p *Parser) peek() Token {
	if p.buf == nil {
		tok := p.tokenizer.Get()
		p.buf = &tok
	}

	return *p.buf
}

func (p *Parser) next() Token {
	tok := p.peek()
	if !tok.isValid() {
		// Keep terminal tokens buffered; the stream has ended.
		return tok
	}

	p.buf = nil
	p.index++
	return tok
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Typ == typ
}

// expect consumes the next token, failing unless it has the wanted type.
func (p *Parser) expect(typ TokenType) (Token, error) {
	tok := p.next()
	if tok.Typ != typ {
		return tok, p.fail(tok)
	}

	return tok, nil
}

// fail converts an unwanted token into the matching structured error.
func (p *Parser) fail(tok Token) error {
	switch tok.Typ {
	case TokenEOF:
		return &UnexpectedEOFError{Index: p.index}
	case TokenError:
		return p.lexError(tok)
	default:
		return &UnexpectedTokenError{Index: p.index - 1, Token: tok}
	}
}

// lexError recovers the structured lexical error behind a TokenError.
func (p *Parser) lexError(tok Token) error {
	type errorSource interface {
		Err() error
	}
	if src, ok := p.tokenizer.(errorSource); ok {
		if err := src.Err(); err != nil {
			return err
		}
	}

	return &InvalidTokenError{Lexeme: tok.Value}
}

// expr ::= assign (";" assign)*
func (p *Parser) expr() (Expr, error) {
	first, err := p.assign()
	if err != nil {
		return nil, err
	}

	for p.check(TokenSemicolon) {
		p.next()

		second, err := p.assign()
		if err != nil {
			return nil, err
		}

		first = &Seq{First: first, Second: second}
	}

	return first, nil
}

// assign ::= "decl" Ident Ident* "<-" assign "in" expr
//          | "match" call "with" ("|" pattern "->" assign)+
//          | "while" assign "do" expr "done"
//          | Ident "<-" assign
//          | call
func (p *Parser) assign() (Expr, error) {
	switch p.peek().Typ {
	case TokenDecl:
		return p.decl()
	case TokenMatch:
		return p.match()
	case TokenWhile:
		return p.while()
	case TokenIdentifier:
		name := p.next()
		if p.check(TokenAssign) {
			p.next()

			value, err := p.assign()
			if err != nil {
				return nil, err
			}

			return &Assign{Name: name.Value, Value: value}, nil
		}

		return p.callArgs(name.Value)
	default:
		return p.call()
	}
}

func (p *Parser) decl() (Expr, error) {
	p.next() // decl keyword

	name, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}

	var params []string
	for p.check(TokenIdentifier) {
		params = append(params, p.next().Value)
	}

	if _, err := p.expect(TokenAssign); err != nil {
		return nil, err
	}

	value, err := p.assign()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenIn); err != nil {
		return nil, err
	}

	body, err := p.expr()
	if err != nil {
		return nil, err
	}

	return &Decl{Name: name.Value, Params: params, Value: value, Body: body}, nil
}

func (p *Parser) match() (Expr, error) {
	p.next() // match keyword

	scrutinee, err := p.call()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenWith); err != nil {
		return nil, err
	}

	var arms []MatchArm
	for p.check(TokenPipe) {
		p.next()

		var arm MatchArm
		switch tok := p.next(); tok.Typ {
		case TokenInt:
			arm.Pattern = tok.Int
		case TokenUnderscore:
			arm.Wildcard = true
		default:
			return nil, p.fail(tok)
		}

		if _, err := p.expect(TokenArrow); err != nil {
			return nil, err
		}

		arm.Body, err = p.assign()
		if err != nil {
			return nil, err
		}

		arms = append(arms, arm)
	}

	if len(arms) == 0 {
		return nil, p.fail(p.next())
	}

	return &Match{Scrutinee: scrutinee, Arms: arms}, nil
}

func (p *Parser) while() (Expr, error) {
	p.next() // while keyword

	cond, err := p.assign()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenDo); err != nil {
		return nil, err
	}

	body, err := p.expr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenDone); err != nil {
		return nil, err
	}

	return &While{Cond: cond, Body: body}, nil
}

// call ::= Ident atom+ | Op atom+ | "print" atom | atom
func (p *Parser) call() (Expr, error) {
	tok := p.peek()

	if tok.Typ == TokenPrint {
		p.next()

		arg, err := p.atom()
		if err != nil {
			return nil, err
		}

		return &Call{Name: "print", Args: []Expr{arg}}, nil
	}

	if name, ok := operatorNames[tok.Typ]; ok {
		p.next()
		return p.operands(name)
	}

	if tok.Typ == TokenIdentifier {
		name := p.next()
		return p.callArgs(name.Value)
	}

	return p.atom()
}

// callArgs finishes an expression that began with an identifier: with one or
// more following atoms it is an application, alone it is a variable
// reference.
func (p *Parser) callArgs(name string) (Expr, error) {
	if !p.atAtom() {
		return &Ident{Name: name}, nil
	}

	return p.operands(name)
}

// operands collects the maximal run of argument atoms for a call.
func (p *Parser) operands(name string) (Expr, error) {
	var args []Expr
	for {
		arg, err := p.atom()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)
		if !p.atAtom() {
			return &Call{Name: name, Args: args}, nil
		}
	}
}

func (p *Parser) atAtom() bool {
	switch p.peek().Typ {
	case TokenInt, TokenIdentifier, TokenParenL:
		return true
	default:
		return false
	}
}

// atom ::= IntLiteral | Ident | "(" expr ")"
func (p *Parser) atom() (Expr, error) {
	switch tok := p.next(); tok.Typ {
	case TokenInt:
		return &Number{Value: tok.Int}, nil
	case TokenIdentifier:
		return &Ident{Name: tok.Value}, nil
	case TokenParenL:
		expr, err := p.expr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokenParenR); err != nil {
			return nil, err
		}

		return expr, nil
	default:
		return nil, p.fail(tok)
	}
}
