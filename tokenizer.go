package wordsense

import (
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"github.com/unixpickle/essentials"
)

// EmptyToken stands in for a token that was rejected by
// a filter.
// It keeps the token's position in the document so that
// windows around neighboring tokens are unaffected.
const EmptyToken = ""

// PunctuationMode is a way to deal with punctuation and
// other symbols when tokenizing strings.
type PunctuationMode int

const (
	// Treat each piece of punctuation as its own token.
	SeparatePunctuation PunctuationMode = iota

	// Remove all punctuation.
	DropPunctuation

	// Treat punctuation as just another character.
	IncludePunctuation
)

// A TokenFilter decides which tokens are kept.
type TokenFilter interface {
	Accept(token string) bool
}

// A StopList is a TokenFilter that rejects the tokens in
// the set.
type StopList map[string]bool

// EnglishStopList creates a StopList from the English
// stop words shipped with bleve.
func EnglishStopList() (StopList, error) {
	tokens := analysis.NewTokenMap()
	if err := tokens.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, essentials.AddCtx("load english stop words", err)
	}
	return StopList(tokens), nil
}

// Accept returns false for stop words.
func (s StopList) Accept(token string) bool {
	return !s[token]
}

// A Tokenizer separates strings into word tokens.
//
// By default, a Tokenizer converts all tokens to
// lowercase and treats punctuation as its own token.
type Tokenizer struct {
	// PunctuationMode is used to decide how to treat
	// punctuation.
	PunctuationMode PunctuationMode

	// PreserveCase, if true, indicates that fields should
	// not automatically be converted to lowercase.
	PreserveCase bool

	// Filter, if non-nil, is applied to every token.
	// Rejected tokens are replaced with EmptyToken.
	Filter TokenFilter

	// Stem, if true, reduces accepted tokens with the
	// Porter stemmer.
	Stem bool
}

// Tokenize produces tokens for the string.
func (t *Tokenizer) Tokenize(s string) []string {
	var res []string
	for _, field := range strings.Fields(s) {
		if !t.PreserveCase {
			field = strings.ToLower(field)
		}
		for _, tok := range handlePunctuation(t.PunctuationMode, field) {
			res = append(res, t.filter(tok))
		}
	}
	return res
}

func (t *Tokenizer) filter(tok string) string {
	if tok == EmptyToken {
		return EmptyToken
	}
	if t.Filter != nil && !t.Filter.Accept(tok) {
		return EmptyToken
	}
	if t.Stem {
		return porterstemmer.StemString(tok)
	}
	return tok
}

func handlePunctuation(m PunctuationMode, field string) []string {
	switch m {
	case SeparatePunctuation:
		var res []string
		var cur strings.Builder
		for _, ch := range field {
			if unicode.IsPunct(ch) {
				if cur.Len() > 0 {
					res = append(res, cur.String())
				}
				res = append(res, string(ch))
				cur.Reset()
			} else {
				cur.WriteRune(ch)
			}
		}
		if cur.Len() > 0 {
			res = append(res, cur.String())
		}
		return res
	case DropPunctuation:
		var res strings.Builder
		for _, ch := range field {
			if !unicode.IsPunct(ch) {
				res.WriteRune(ch)
			}
		}
		return []string{res.String()}
	case IncludePunctuation:
		return []string{field}
	}
	panic("unknown punctuation mode")
}
