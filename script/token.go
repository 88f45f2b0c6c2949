package script

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIdent
	tokNumber
	tokString

	tokAssign // =
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent

	tokEq // ==
	tokNe // !=
	tokLt
	tokLe
	tokGt
	tokGe

	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma

	tokLet
	tokIf
	tokElse
	tokEnd
	tokWhile
	tokFor
	tokTo
	tokAnd
	tokOr
	tokNot
	tokTrue
	tokFalse
)

var keywords = map[string]tokenKind{
	"let":   tokLet,
	"if":    tokIf,
	"else":  tokElse,
	"end":   tokEnd,
	"while": tokWhile,
	"for":   tokFor,
	"to":    tokTo,
	"and":   tokAnd,
	"or":    tokOr,
	"not":   tokNot,
	"true":  tokTrue,
	"false": tokFalse,
}

type token struct {
	kind tokenKind
	text string
	num  float64
	line int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of routine"
	case tokNewline:
		return "newline"
	case tokNumber:
		return fmt.Sprintf("number %v", t.num)
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}
