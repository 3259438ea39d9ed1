package css

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into structured rules. Malformed input never
// fails the caller - the parser produces a partial stylesheet and records
// warnings for what it had to skip.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	var pending []string // selectors accumulated from comma-separated preludes

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			// End of input or error
			if parser.Err() != nil && parser.Err().Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(parser.Err()))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			atRule := string(data)
			if atRule == "@media" {
				mq := p.parseMediaQuery(parser.Values())
				rules := p.parseMediaBlockRules(parser, sheet)
				p.log.Debug("Parsed @media block", zap.String("query", mq.Raw), zap.Int("rules", len(rules)))
				sheet.Items = append(sheet.Items, StylesheetItem{
					MediaBlock: &MediaBlock{Query: mq, Rules: rules},
				})
			} else {
				p.skipAtRuleBlock(parser)
				sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+atRule)
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			}

		case css.AtRuleGrammar:
			// Simple @-rule without block (e.g. @import) - nothing we support
			sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+string(data))
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.QualifiedRuleGrammar:
			// prelude before a comma - declarations follow the last one
			pending = append(pending, p.parseSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			selectors := append(pending, p.parseSelectors(data, parser.Values())...)
			pending = nil
			decls := p.parseDeclarations(parser)
			p.appendRules(sheet, selectors, decls)
		}
	}
}

// ParseDeclarations parses a bare declaration list, as found in a style=""
// attribute. Order is preserved.
func (p *Parser) ParseDeclarations(data []byte) []Declaration {
	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, true)

	var decls []Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return decls
		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				decls = append(decls, Declaration{
					Property: strings.ToLower(string(data)),
					Value:    p.parsePropertyValue(values),
				})
			}
		}
	}
}

// appendRules creates one rule per selector, cloning declarations so rules
// never share backing storage.
func (p *Parser) appendRules(sheet *Stylesheet, selectors []string, decls []Declaration) {
	if len(decls) == 0 {
		return
	}
	for _, selStr := range selectors {
		sel := p.parseSelector(selStr, sheet)
		if !sel.IsSimple() {
			continue
		}
		rule := Rule{
			Selector:     sel,
			Declarations: append([]Declaration(nil), decls...),
		}
		sheet.Items = append(sheet.Items, StylesheetItem{Rule: &rule})
	}
}

// parseMediaBlockRules collects rules nested inside a @media block until the
// block ends.
func (p *Parser) parseMediaBlockRules(parser *css.Parser, sheet *Stylesheet) []Rule {
	var rules []Rule
	var pending []string
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return rules

		case css.QualifiedRuleGrammar:
			pending = append(pending, p.parseSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			selectors := append(pending, p.parseSelectors(data, parser.Values())...)
			pending = nil
			decls := p.parseDeclarations(parser)
			if len(decls) == 0 {
				continue
			}
			for _, selStr := range selectors {
				sel := p.parseSelector(selStr, sheet)
				if !sel.IsSimple() {
					continue
				}
				rules = append(rules, Rule{
					Selector:     sel,
					Declarations: append([]Declaration(nil), decls...),
				})
			}
		}
	}
}

// skipAtRuleBlock consumes tokens until the current at-rule block is closed.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 0
	for {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndRulesetGrammar:
			if depth > 0 {
				depth--
			}
		case css.EndAtRuleGrammar:
			if depth == 0 {
				return
			}
			depth--
		}
	}
}

// mediaFeaturePattern matches dimensional media features like (min-width: 480px).
var mediaFeaturePattern = regexp.MustCompile(`\(\s*([a-z-]+)\s*:\s*([0-9.]+)\s*(?:px)?\s*\)`)

// parseMediaQuery reconstructs the query text from tokens and extracts the
// parts we evaluate: optional "not", media type and dimensional features.
func (p *Parser) parseMediaQuery(tokens []css.Token) MediaQuery {
	var sb strings.Builder
	for _, t := range tokens {
		sb.Write(t.Data)
	}
	raw := strings.TrimSpace(sb.String())
	mq := MediaQuery{Raw: raw}

	rest := strings.ToLower(raw)
	if s, ok := strings.CutPrefix(rest, "not "); ok {
		mq.Negated = true
		rest = strings.TrimSpace(s)
	}
	if idx := strings.IndexAny(rest, " ("); idx > 0 {
		mq.Type = strings.TrimSpace(rest[:idx])
	} else if !strings.Contains(rest, "(") {
		mq.Type = rest
	}
	// media type is optional, "(min-width: 10)" alone is valid
	if strings.HasPrefix(mq.Type, "(") {
		mq.Type = ""
	}

	for _, m := range mediaFeaturePattern.FindAllStringSubmatch(rest, -1) {
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		mq.Features = append(mq.Features, MediaFeature{Name: m[1], Value: value})
	}
	return mq
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser) []Declaration {
	var decls []Declaration
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				decls = append(decls, Declaration{
					Property: strings.ToLower(string(data)),
					Value:    p.parsePropertyValue(values),
				})
			}

		case css.CustomPropertyGrammar:
			// CSS custom properties (--var) are not supported
			continue
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value.
func (p *Parser) parsePropertyValue(tokens []css.Token) Value {
	if len(tokens) == 0 {
		return Value{}
	}

	// Build raw value string
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))

	val := Value{Raw: raw}

	// Single token cases
	if len(tokens) == 1 || (len(tokens) == 2 && tokens[1].TokenType == css.WhitespaceToken) {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		case css.HashToken:
			// Color value
			val.Keyword = string(t.Data)
		}
		return val
	}

	// Function tokens (rgb(), etc.) and multi-value properties keep raw text
	val.Keyword = raw
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

// parseSelector parses a single selector string into a Selector.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	switch {
	case strings.ContainsAny(selStr, "+~>"):
		sheet.Warnings = append(sheet.Warnings, "unsupported combinator selector: "+selStr)
		p.log.Debug("Skipping combinator selector", zap.String("selector", selStr))
		return sel
	case strings.Contains(selStr, "["):
		sheet.Warnings = append(sheet.Warnings, "unsupported attribute selector: "+selStr)
		p.log.Debug("Skipping attribute selector", zap.String("selector", selStr))
		return sel
	case strings.Contains(selStr, ":"):
		sheet.Warnings = append(sheet.Warnings, "unsupported pseudo selector: "+selStr)
		p.log.Debug("Skipping pseudo selector", zap.String("selector", selStr))
		return sel
	case strings.ContainsAny(selStr, " \t\n"):
		sheet.Warnings = append(sheet.Warnings, "unsupported descendant selector: "+selStr)
		p.log.Debug("Skipping descendant selector", zap.String("selector", selStr))
		return sel
	}

	return parseSimpleSelector(selStr)
}

// parseSimpleSelector handles ".class", "#id" and plain element selectors.
func parseSimpleSelector(selStr string) Selector {
	sel := Selector{Raw: selStr}
	switch {
	case strings.HasPrefix(selStr, "."):
		sel.Class = selStr[1:]
	case strings.HasPrefix(selStr, "#"):
		sel.ID = selStr[1:]
	case strings.Contains(selStr, "."):
		// compound element.class - keep both parts, matching stays simple
		parts := strings.SplitN(selStr, ".", 2)
		sel.Element = strings.ToLower(parts[0])
		sel.Class = parts[1]
	default:
		sel.Element = strings.ToLower(selStr)
	}
	return sel
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
