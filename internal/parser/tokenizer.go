// Package parser splits console input lines into a command key and argument tokens.
// It is shared by the dispatcher and the autocomplete engine, which calls it against
// progressively longer prefixes of the same line.
package parser

import "strings"

// QuoteChar groups space-separated words into a single token.
const QuoteChar = '"'

const quote = string(QuoteChar)

// Tokenize strips the first prefixLength bytes of line, splits the rest on single
// spaces and returns the first word as the key and the remaining words as tokens.
//
// Words starting with a quote are merged with the following words until one ends
// with a quote; the surrounding quotes are removed. A quote left open merges to the
// end of the line, which is the normal state while a user is still typing it.
// Empty words produced by repeated spaces outside quotes are dropped.
func Tokenize(line string, prefixLength int) (string, []string) {
	key, tokens, _ := tokenize(line, prefixLength)
	return key, tokens
}

// HasOpenQuote reports whether the argument part of line ends inside an unterminated quote.
func HasOpenQuote(line string, prefixLength int) bool {
	_, _, open := tokenize(line, prefixLength)
	return open
}

// EndsAtBoundary reports whether line ends exactly between tokens: a trailing space
// that is not inside an open quote.
func EndsAtBoundary(line string, prefixLength int) bool {
	if !strings.HasSuffix(line, " ") {
		return false
	}
	return !HasOpenQuote(line, prefixLength)
}

// KeyComplete reports whether the key portion of line has been terminated by a space.
func KeyComplete(line string, prefixLength int) bool {
	if prefixLength >= len(line) {
		return false
	}
	return strings.Contains(line[max(prefixLength, 0):], " ")
}

// Quote wraps token in quotes when it would not survive tokenization on its own.
func Quote(token string) string {
	if token == "" || strings.Contains(token, " ") || strings.HasPrefix(token, quote) {
		return quote + token + quote
	}
	return token
}

// Join rebuilds an argument string from tokens, quoting where needed.
func Join(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = Quote(t)
	}
	return strings.Join(quoted, " ")
}

// Unquote removes one leading and one trailing quote character.
func Unquote(s string) string {
	s = strings.TrimPrefix(s, quote)
	return strings.TrimSuffix(s, quote)
}

func tokenize(line string, prefixLength int) (string, []string, bool) {
	prefixLength = max(prefixLength, 0)
	if prefixLength >= len(line) {
		return "", nil, false
	}

	words := strings.Split(line[prefixLength:], " ")
	tokens, open := merge(words[1:])
	return words[0], tokens, open
}

func merge(words []string) ([]string, bool) {
	tokens := make([]string, 0, len(words))
	open := false

	for i := 0; i < len(words); i++ {
		word := words[i]
		if !strings.HasPrefix(word, quote) {
			if word != "" {
				tokens = append(tokens, word)
			}
			continue
		}

		end := i
		for !closesQuote(words[end], end == i) {
			if end+1 == len(words) {
				open = true
				break
			}
			end++
		}
		tokens = append(tokens, Unquote(strings.Join(words[i:end+1], " ")))
		i = end
	}

	return tokens, open
}

// closesQuote reports whether word ends a quoted run. The opening word only closes
// the run when it holds both quotes.
func closesQuote(word string, opening bool) bool {
	if opening {
		return len(word) >= 2 && strings.HasSuffix(word, quote)
	}
	return strings.HasSuffix(word, quote)
}
