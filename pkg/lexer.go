package alba

import (
	"io"
	"os"
	"strconv"
	"unicode"
)

// Location is a 1-based line/column position in the source text.
type Location struct {
	Line   int
	Column int
}

type charClass int

// Character classes recognized by the classifier. The transition table is
// indexed by these, so the order is load-bearing.
const (
	classDigit      charClass = iota // 0..9
	classLower                       // a..z plus Latin-1 lowercase ranges
	classUpper                       // A..Z plus Latin-1 uppercase ranges
	classLess                        // <
	classGreater                     // >
	classMinus                       // -
	classPlus                        // +
	classStar                        // *
	classSlash                       // /
	classEquals                      // =
	classExclam                      // !
	classPercent                     // %
	classCaret                       // ^
	classUnderscore                  // _
	classPipe                        // |
	classParenL                      // (
	classParenR                      // )
	classSemicolon                   // ;
	classSpace                       // any Unicode whitespace
	classPunct                       // { } [ ] . :
	classAmpersand                   // &

	numClasses = 21
)

// classify maps a source rune to its character class. The boolean is false
// for runes outside the permitted alphabet (control characters, emoji, ...).
func classify(r rune) (charClass, bool) {
	switch {
	case '0' <= r && r <= '9':
		return classDigit, true
	case 'a' <= r && r <= 'z', 'ß' <= r && r <= 'ö', 'ø' <= r && r <= 'ÿ':
		return classLower, true
	case 'A' <= r && r <= 'Z', 'À' <= r && r <= 'Ö', 'Ø' <= r && r <= 'Þ':
		return classUpper, true
	case r == '<':
		return classLess, true
	case r == '>':
		return classGreater, true
	case r == '-':
		return classMinus, true
	case r == '+':
		return classPlus, true
	case r == '*':
		return classStar, true
	case r == '/':
		return classSlash, true
	case r == '=':
		return classEquals, true
	case r == '!':
		return classExclam, true
	case r == '%':
		return classPercent, true
	case r == '^':
		return classCaret, true
	case r == '_':
		return classUnderscore, true
	case r == '&':
		return classAmpersand, true
	case r == '|':
		return classPipe, true
	case r == '(':
		return classParenL, true
	case r == ')':
		return classParenR, true
	case r == ';':
		return classSemicolon, true
	case unicode.IsSpace(r):
		return classSpace, true
	case r == '{', r == '}', r == '[', r == ']', r == '.', r == ':':
		return classPunct, true
	}
	return 0, false
}

type state int

const (
	stateStart                             state = iota // q0
	stateDigit                                          // q1
	statePipeOrIdentifier                               // q2
	stateAssignOrIdentifier                             // q3, after <
	stateFinishAssignOrIdentifier                       // q4, after <-
	stateIdentifier                                     // q5
	stateArrowOrIdentifierOrNegativeNumber              // q6, after -
	stateFinishArrowOrIdentifier                        // q7, after ->
	stateParenLOrComment                                // q8
	stateComment                                        // q9
	stateMayFinishComment                               // q10, after * inside a comment
	stateParenR                                         // q11

	numStates = 12
)

const (
	noTransition      = -1 // finalize the current lexeme and reprocess the character
	invalidTransition = -2 // no token can end here: lexical error
)

// stateTransitions is the complete transition function of the tokenizer's
// finite-state machine, indexed by [state][charClass]. The q9/q10 rows
// describe comment interiors over the classifiable alphabet; run handles
// those two states directly so comments accept arbitrary runes.
var stateTransitions = [numStates][numClasses]int8{
	// q0 Start
	{1, 5, 5, 3, 5, 6, 5, 5, 5, 5, 5, 5, 5, 5, 2, 8, 11, 0, 0, -1, 5},
	// q1 Digit
	{1, -2, -2, -2, -2, -2, -2, -2, -2, -2, -2, -2, -2, -2, -1, -1, -1, -1, -1, -1, -2},
	// q2 PipeOrIdentifier
	{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, -1, -1, -1, -1, -1, -1, 5},
	// q3 AssignOrIdentifier
	{5, 5, 5, 5, 5, 4, 5, 5, 5, 5, 5, 5, 5, 5, -1, -1, -1, -1, -1, -1, 5},
	// q4 FinishAssignOrIdentifier
	{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, -1, -1, -1, -1, -1, -1, 5},
	// q5 Identifier
	{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, -1, -1, -1, -1, -1, -1, 5},
	// q6 ArrowOrIdentifierOrNegativeNumber
	{1, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 5, 5, -1, -1, -1, -1, -1, -1, 5},
	// q7 FinishArrowOrIdentifier
	{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, -1, -1, -1, -1, -1, -1, 5},
	// q8 ParenLOrComment
	{-1, -1, -1, -1, -1, -1, -1, 9, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1},
	// q9 Comment
	{9, 9, 9, 9, 9, 9, 9, 10, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9},
	// q10 MayFinishComment
	{9, 9, 9, 9, 9, 9, 9, 10, 9, 9, 9, 9, 9, 9, 9, 9, 0, 9, 9, 9, 9},
	// q11 ParenR
	{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1},
}

// Tokenizer is the streaming producer interface the parser consumes.
type Tokenizer interface {
	Do()
	Get() Token
	GetFilename() string
}

// Lexer drives the state machine over a source text and produces tokens.
// Comments nest to arbitrary depth: the two comment states only track
// "inside / may be leaving", so the lexer keeps an explicit depth counter
// beside them.
type Lexer struct {
	filename string
	input    []rune
	done     chan Token
	err      error
}

// NewLexer reads and tokenizes the named file.
func NewLexer(filename string) (*Lexer, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	l := NewLexerFromString(string(data))
	l.filename = filename
	return l, nil
}

func NewLexerFromReader(reader io.Reader) (*Lexer, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return NewLexerFromString(string(data)), nil
}

func NewLexerFromString(source string) *Lexer {
	return &Lexer{
		filename: "<memory>",
		input:    []rune(source),
		done:     make(chan Token, 2),
	}
}

func (l *Lexer) GetFilename() string {
	return l.filename
}

func (l *Lexer) Chan() chan Token {
	return l.done
}

func (l *Lexer) Get() Token {
	return <-l.done
}

// Err returns the structured lexical error after a TokenError was emitted.
func (l *Lexer) Err() error {
	return l.err
}

// Do runs the machine, emitting tokens on the channel. The stream ends with
// TokenEOF, or with TokenError after a lexical error.
func (l *Lexer) Do() {
	err := l.run(func(t Token) {
		l.done <- t
	})
	if err != nil {
		l.err = err
		l.done <- Token{Typ: TokenError, Value: err.Error()}
	} else {
		l.done <- Token{Typ: TokenEOF}
	}

	close(l.done)
}

// RunBlocking tokenizes the whole input at once. The end-of-input token is
// not included in the returned slice.
func (l *Lexer) RunBlocking() ([]Token, error) {
	var tokens []Token
	err := l.run(func(t Token) {
		tokens = append(tokens, t)
	})
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

func (l *Lexer) run(emit func(Token)) error {
	var (
		cur    = stateStart
		lexeme []rune
		depth  int      // comment nesting depth
		open   Location // position of the outermost comment opener
		line   = 1
		col    = 1
		i      int
	)

	peek := func() (rune, bool) {
		if i+1 < len(l.input) {
			return l.input[i+1], true
		}
		return 0, false
	}
	advance := func(c rune) {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i++
	}

	for i < len(l.input) {
		c := l.input[i]

		// Comment interiors are free-form, so the comment states are
		// handled before classification: any rune may appear between
		// (* and *). The depth counter nests openers, which the two
		// table states alone cannot.
		if cur == stateComment || cur == stateMayFinishComment {
			switch {
			case c == '(':
				if next, ok := peek(); ok && next == '*' {
					depth++
					advance(c)
					advance('*')
					cur = stateComment
					continue
				}
				cur = stateComment
			case cur == stateMayFinishComment && c == ')':
				depth--
				if depth == 0 {
					cur = stateStart
				} else {
					cur = stateComment
				}
			case c == '*':
				cur = stateMayFinishComment
			default:
				cur = stateComment
			}

			advance(c)
			continue
		}

		class, ok := classify(c)
		if !ok {
			return &UnexpectedCharError{Char: c, Loc: Location{line, col}}
		}

		next := stateTransitions[cur][class]
		switch {
		case next == invalidTransition:
			return &InvalidTokenError{Lexeme: string(lexeme) + string(c), Loc: Location{line, col}}

		case next == noTransition:
			// No token can begin with this character.
			if cur == stateStart {
				return &InvalidTokenStartError{Char: c, Loc: Location{line, col}}
			}
			// Maximal munch: finalize the accumulated token, then
			// reprocess this character from Start.
			tok, err := finalizeLexeme(cur, lexeme, Location{line, col})
			if err != nil {
				return err
			}
			if tok != nil {
				emit(*tok)
			}
			lexeme = lexeme[:0]
			cur = stateStart

		default:
			target := state(next)
			if cur == stateStart {
				switch class {
				case classParenL:
					if n, ok := peek(); ok && n == '*' {
						depth = 1
						open = Location{line, col}
					} else {
						emit(Token{Typ: TokenParenL, Value: "("})
					}
				case classParenR:
					emit(Token{Typ: TokenParenR, Value: ")"})
				case classSemicolon:
					emit(Token{Typ: TokenSemicolon, Value: ";"})
				case classSpace, classPunct:
					// skipped
				default:
					lexeme = append(lexeme, c)
				}
			} else if target >= stateDigit && target <= stateFinishArrowOrIdentifier {
				lexeme = append(lexeme, c)
			}
			advance(c)
			cur = target
		}
	}

	if cur == stateComment || cur == stateMayFinishComment || depth > 0 {
		return &UnterminatedCommentError{Loc: open}
	}

	tok, err := finalizeLexeme(cur, lexeme, Location{line, col})
	if err != nil {
		return err
	}
	if tok != nil {
		emit(*tok)
	}

	return nil
}

// finalizeLexeme turns the accumulated lexeme into a token. Only states that
// represent a complete token may finalize; the rest have nothing pending.
func finalizeLexeme(cur state, lexeme []rune, loc Location) (*Token, error) {
	if len(lexeme) == 0 {
		return nil, nil
	}

	switch cur {
	case stateDigit:
		n, err := strconv.ParseInt(string(lexeme), 10, 64)
		if err != nil {
			return nil, &InvalidTokenError{Lexeme: string(lexeme), Loc: loc}
		}
		return &Token{Typ: TokenInt, Value: string(lexeme), Int: n}, nil

	case statePipeOrIdentifier, stateAssignOrIdentifier, stateFinishAssignOrIdentifier,
		stateIdentifier, stateArrowOrIdentifierOrNegativeNumber, stateFinishArrowOrIdentifier:
		s := string(lexeme)
		if t, ok := keywordTable[s]; ok {
			return &Token{Typ: t, Value: s}, nil
		}
		return &Token{Typ: TokenIdentifier, Value: s}, nil
	}

	return nil, nil
}
