package script

import (
	"fmt"
	"strconv"
	"unicode"
)

// lex tokenizes a routine source. The grammar is line oriented: newlines
// separate statements and '#' starts a comment running to end of line.
func lex(src string) ([]token, error) {
	var toks []token
	line := 1
	i := 0

	emit := func(kind tokenKind, text string) {
		toks = append(toks, token{kind: kind, text: text, line: line})
	}

	for i < len(src) {
		ch := src[i]

		switch {
		case ch == '\n':
			emit(tokNewline, "\n")
			line++
			i++

		case ch == ' ' || ch == '\t' || ch == '\r':
			i++

		case ch == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}

		case ch == '"':
			start := i + 1
			j := start
			for j < len(src) && src[j] != '"' && src[j] != '\n' {
				j++
			}
			if j >= len(src) || src[j] != '"' {
				return nil, fmt.Errorf("%w: line %d: unterminated string", ErrSyntax, line)
			}
			emit(tokString, src[start:j])
			i = j + 1

		case unicode.IsDigit(rune(ch)) || (ch == '.' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1]))):
			j := i
			for j < len(src) && (unicode.IsDigit(rune(src[j])) || src[j] == '.' || src[j] == 'e' || src[j] == 'E' ||
				((src[j] == '+' || src[j] == '-') && j > i && (src[j-1] == 'e' || src[j-1] == 'E'))) {
				j++
			}
			text := src[i:j]
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad number %q", ErrSyntax, line, text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: num, line: line})
			i = j

		case isIdentStart(ch):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			if kind, ok := keywords[word]; ok {
				emit(kind, word)
			} else {
				emit(tokIdent, word)
			}
			i = j

		default:
			two := ""
			if i+1 < len(src) {
				two = src[i : i+2]
			}
			switch {
			case two == "==":
				emit(tokEq, two)
				i += 2
			case two == "!=":
				emit(tokNe, two)
				i += 2
			case two == "<=":
				emit(tokLe, two)
				i += 2
			case two == ">=":
				emit(tokGe, two)
				i += 2
			default:
				kind, ok := singleCharTokens[ch]
				if !ok {
					return nil, fmt.Errorf("%w: line %d: unexpected character %q", ErrSyntax, line, string(ch))
				}
				emit(kind, string(ch))
				i++
			}
		}
	}

	toks = append(toks, token{kind: tokEOF, line: line})

	return toks, nil
}

var singleCharTokens = map[byte]tokenKind{
	'=': tokAssign,
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'%': tokPercent,
	'<': tokLt,
	'>': tokGt,
	'(': tokLParen,
	')': tokRParen,
	'[': tokLBracket,
	']': tokRBracket,
	',': tokComma,
}

func isIdentStart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || unicode.IsDigit(rune(ch))
}
