package format

import (
	"bytes"
	"encoding/json"
	"html/template"
	"regexp"
	"strings"
)

// jsonToken matches one highlightable token: a quoted string (optionally
// followed by a colon, which makes it an object key), a boolean, null, or a
// number. Escaped quotes inside strings are handled by the escape alternates.
var jsonToken = regexp.MustCompile(`"(\\u[0-9a-fA-F]{4}|\\[^u]|[^\\"])*"(\s*:)?|\b(true|false)\b|\bnull\b|-?\d+(\.\d*)?([eE][+\-]?\d+)?`)

// htmlEscaper escapes the three characters that matter in element content.
// Quotes stay literal so the token regex still sees JSON strings.
var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// HighlightJSON pretty-prints a raw JSON document with 4-space indentation
// and wraps each token in a span for CSS coloring. Input that does not parse
// as JSON comes back escaped but otherwise untouched, so malformed LLM
// output still renders as plain text instead of breaking the page.
func HighlightJSON(raw string) template.HTML {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return template.HTML(htmlEscaper.Replace(raw))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return template.HTML(htmlEscaper.Replace(raw))
	}
	pretty := strings.TrimRight(buf.String(), "\n")

	escaped := htmlEscaper.Replace(pretty)
	return template.HTML(jsonToken.ReplaceAllStringFunc(escaped, wrapToken))
}

// wrapToken wraps a single matched token in its class span. For object keys
// the trailing colon stays outside the span.
func wrapToken(tok string) string {
	class := "json-number"
	suffix := ""

	switch {
	case strings.HasPrefix(tok, `"`):
		if strings.HasSuffix(strings.TrimSpace(tok), ":") {
			class = "json-key"
			idx := strings.LastIndex(tok, `"`)
			suffix = tok[idx+1:]
			tok = tok[:idx+1]
		} else {
			class = "json-string"
		}
	case tok == "true" || tok == "false":
		class = "json-boolean"
	case tok == "null":
		class = "json-null"
	}

	return `<span class="` + class + `">` + tok + `</span>` + suffix
}
