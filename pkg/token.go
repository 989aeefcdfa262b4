package alba

type TokenType uint64

//go:generate stringer -type=TokenType -trimprefix=Token
const (
	TokenError TokenType = iota
	TokenEOF
	TokenInt
	TokenIdentifier

	TokenDecl
	TokenIn
	TokenWhile
	TokenDo
	TokenDone
	TokenMatch
	TokenWith
	TokenPrint

	TokenAssign // <-
	TokenArrow  // ->
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenLess
	TokenGreater
	TokenEquals
	TokenNotEquals
	TokenAmpersand
	TokenPipe
	TokenUnderscore
	TokenSemicolon
	TokenParenL
	TokenParenR
)

// keywordTable maps a finished lexeme to its token type. Operators live here
// too: the state machine accumulates them like identifiers ("<-" and "->"
// share prefixes with identifiers) and the lookup decides what they were.
var keywordTable = map[string]TokenType{
	"decl":  TokenDecl,
	"in":    TokenIn,
	"while": TokenWhile,
	"do":    TokenDo,
	"done":  TokenDone,
	"match": TokenMatch,
	"with":  TokenWith,
	"print": TokenPrint,

	"<-": TokenAssign,
	"->": TokenArrow,
	"+":  TokenPlus,
	"-":  TokenMinus,
	"*":  TokenStar,
	"/":  TokenSlash,
	"%":  TokenPercent,
	"<":  TokenLess,
	">":  TokenGreater,
	"=":  TokenEquals,
	"!=": TokenNotEquals,
	"&":  TokenAmpersand,
	"|":  TokenPipe,
	"_":  TokenUnderscore,
	";":  TokenSemicolon,
	"(":  TokenParenL,
	")":  TokenParenR,
}

// operatorNames maps builtin operator tokens to the callee name they resolve
// to during code generation.
var operatorNames = map[TokenType]string{
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenPercent:   "%",
	TokenLess:      "<",
	TokenGreater:   ">",
	TokenEquals:    "=",
	TokenNotEquals: "!=",
	TokenAmpersand: "&",
	TokenPipe:      "|",
}

type Token struct {
	Typ   TokenType
	Value string
	Int   int64 // set when Typ is TokenInt
}

func (t Token) isValid() bool {
	return t.Typ != TokenError && t.Typ != TokenEOF
}
