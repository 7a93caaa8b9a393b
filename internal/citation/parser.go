// Package citation turns collaborator responses into an ordered citation list
// and annotated text, and highlights those citations in the case description.
package citation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ppiankov/dxcite/internal/cache"
	"github.com/ppiankov/dxcite/internal/model"
	"github.com/tidwall/gjson"
)

// Fixed messages for responses that carry no citations
const (
	ControlMessage  = "You are in the control group. You will not receive any AI help."
	FallbackMessage = "AI assistance is not available for this condition."
)

// Parser parses collaborator responses. Results are memoized by the literal
// inputs, so repeated renders never re-walk the response.
type Parser struct {
	style Style
	memo  *lru.Cache[string, *model.Parsed]
}

// NewParser creates a parser; memoSize <= 0 disables memoization
func NewParser(style Style, memoSize int) *Parser {
	p := &Parser{style: style}
	if memoSize > 0 {
		memo, err := lru.New[string, *model.Parsed](memoSize)
		if err == nil {
			p.memo = memo
		}
	}
	return p
}

// Style returns the marker style used by the parser
func (p *Parser) Style() Style {
	return p.style
}

// Parse extracts the ordered citations from a response and rewrites its text
// with highlighted markers. The response shape is chosen by the condition.
// On error no partial result is returned.
func (p *Parser) Parse(response string, hypotheses, selected []string, c model.Condition) (*model.Parsed, error) {
	var key string
	if p.memo != nil {
		key = memoKey(p.style, response, hypotheses, selected, c)
		if cached, ok := p.memo.Get(key); ok {
			return cached.Clone(), nil
		}
	}

	parsed, err := Parse(response, hypotheses, selected, c, p.style)
	if err != nil {
		return nil, err
	}

	if p.memo != nil {
		p.memo.Add(key, parsed.Clone())
	}
	return parsed, nil
}

// Parse is the uncached parse; see Parser.Parse
func Parse(response string, hypotheses, selected []string, c model.Condition, style Style) (*model.Parsed, error) {
	switch c.Format() {
	case model.FormatNone:
		return &model.Parsed{Citations: []string{}, Message: ControlMessage}, nil

	case model.FormatFreeText:
		return parseFreeText(response, style), nil

	case model.FormatHypothesisEvidence:
		doc, err := decode(response)
		if err != nil {
			return nil, err
		}
		considered := selected
		if len(considered) == 0 {
			considered = hypotheses
		}
		return parseEvidence(doc, considered, style)

	case model.FormatRecommendation:
		doc, err := decode(response)
		if err != nil {
			return nil, err
		}
		return parseRecommendation(doc, hypotheses, style)

	default:
		return &model.Parsed{Citations: []string{}, Message: FallbackMessage}, nil
	}
}

// decode validates the response as a JSON object
func decode(response string) (gjson.Result, error) {
	body := trimFence(response)
	if strings.TrimSpace(body) == "" {
		return gjson.Result{}, fieldErr("$", "empty response")
	}

	if !gjson.Valid(body) {
		var v any
		err := json.Unmarshal([]byte(body), &v)
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return gjson.Result{}, fieldErr("$", fmt.Sprintf("invalid JSON at offset %d: %v", syntaxErr.Offset, syntaxErr))
		}
		return gjson.Result{}, fieldErr("$", "invalid JSON")
	}

	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return gjson.Result{}, fieldErr("$", "expected object, got "+typeName(doc))
	}
	return doc, nil
}

// trimFence removes a Markdown code fence wrapped around the whole body
func trimFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(t[3:], "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 && !strings.ContainsAny(t[:nl], "{[") {
		t = t[nl+1:]
	}
	return t
}

func typeName(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	}
	switch r.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Null:
		return "null"
	default:
		return "nothing"
	}
}

// index is the running, deduplicated citation list of one parse
type index struct {
	list []string
	pos  map[string]int
}

func newIndex() *index {
	return &index{list: []string{}, pos: make(map[string]int)}
}

// add returns the 1-based position of c, appending it on first sight
func (x *index) add(c string) int {
	if i, ok := x.pos[c]; ok {
		return i
	}
	x.list = append(x.list, c)
	x.pos[c] = len(x.list)
	return len(x.list)
}

func memoKey(style Style, response string, hypotheses, selected []string, c model.Condition) string {
	parts := []string{style.Name, style.Open, style.Close, string(c), response}
	parts = append(parts, strconv.Itoa(len(hypotheses)))
	parts = append(parts, hypotheses...)
	parts = append(parts, strconv.Itoa(len(selected)))
	parts = append(parts, selected...)
	return cache.Key(parts...)
}

func contains(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
