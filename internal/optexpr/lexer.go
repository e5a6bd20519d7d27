package optexpr

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// token is a lexed token with its byte span in the source and the bracket
// nesting depth it starts at.
type token struct {
	text  string
	start int
	end   int
	depth int
	ident bool
}

// scan lexes src with the HCL expression lexer. Newline and EOF tokens are
// dropped; every other token is kept with its nesting depth. Tabs are
// treated as plain whitespace.
func scan(src string) ([]token, error) {
	spaced := strings.ReplaceAll(src, "\t", " ")
	raw, diags := hclsyntax.LexExpression([]byte(spaced), "options", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		offending := src
		if subj := diags[0].Subject; subj != nil && subj.End.Byte <= len(src) && subj.Start.Byte < subj.End.Byte {
			offending = src[subj.Start.Byte:subj.End.Byte]
		}
		return nil, syntaxErr(src, offending, "%s", diags[0].Summary)
	}

	toks := make([]token, 0, len(raw))
	depth := 0
	for _, t := range raw {
		switch t.Type {
		case hclsyntax.TokenEOF, hclsyntax.TokenNewline:
			continue
		}

		if isCloser(t.Type) {
			depth--
			if depth < 0 {
				return nil, syntaxErr(src, string(t.Bytes), "unbalanced %q", string(t.Bytes))
			}
		}

		toks = append(toks, token{
			text:  src[t.Range.Start.Byte:t.Range.End.Byte],
			start: t.Range.Start.Byte,
			end:   t.Range.End.Byte,
			depth: depth,
			ident: t.Type == hclsyntax.TokenIdent,
		})

		if isOpener(t.Type) {
			depth++
		}
	}

	if depth != 0 {
		return nil, syntaxErr(src, src, "unterminated bracket or string")
	}
	return toks, nil
}

func isOpener(tt hclsyntax.TokenType) bool {
	switch tt {
	case hclsyntax.TokenOBrace, hclsyntax.TokenOBrack, hclsyntax.TokenOParen,
		hclsyntax.TokenOQuote, hclsyntax.TokenOHeredoc,
		hclsyntax.TokenTemplateInterp, hclsyntax.TokenTemplateControl:
		return true
	}
	return false
}

func isCloser(tt hclsyntax.TokenType) bool {
	switch tt {
	case hclsyntax.TokenCBrace, hclsyntax.TokenCBrack, hclsyntax.TokenCParen,
		hclsyntax.TokenCQuote, hclsyntax.TokenCHeredoc,
		hclsyntax.TokenTemplateSeqEnd:
		return true
	}
	return false
}
