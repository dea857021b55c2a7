package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Fields holds frontmatter values keyed by lowercased name.
//
// Values are kept as YAML nodes so callers see scalars exactly as written;
// a date without an offset stays distinguishable from one with an offset.
type Fields struct {
	nodes map[string]*yaml.Node
}

// Split separates YAML frontmatter (`---` delimited) from the document body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the final line without a trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := len(content) - len("---")
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// Parse extracts metadata from a source document.
//
// YAML frontmatter is preferred. Documents without it may carry a header of
// `Key: value` lines terminated by a blank line, which is read as plain
// string metadata. The remaining body is returned unchanged.
func Parse(content []byte) (Fields, []byte, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Fields{}, nil, err
	}
	if had {
		fields, err := ParseYAML(fm)
		if err != nil {
			return Fields{}, nil, err
		}
		return fields, body, nil
	}

	fields, body := parseHeader(content)
	return fields, body, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters).
func ParseYAML(frontmatter []byte) (Fields, error) {
	fields := Fields{nodes: map[string]*yaml.Node{}}
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return fields, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(frontmatter, &doc); err != nil {
		return Fields{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	if len(doc.Content) == 0 {
		return fields, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Fields{}, fmt.Errorf("parse frontmatter: expected a mapping, got %s", kindName(root.Kind))
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := strings.ToLower(strings.TrimSpace(root.Content[i].Value))
		fields.nodes[key] = resolveAlias(root.Content[i+1])
	}
	return fields, nil
}

// Has reports whether the key is present, even with an empty value.
func (f Fields) Has(key string) bool {
	_, ok := f.nodes[strings.ToLower(key)]
	return ok
}

// Len returns the number of keys.
func (f Fields) Len() int { return len(f.nodes) }

// String returns the scalar value of the first present key, as written.
//
// A YAML null reads as an empty string.
func (f Fields) String(keys ...string) (string, bool) {
	for _, key := range keys {
		n, ok := f.nodes[strings.ToLower(key)]
		if !ok {
			continue
		}
		if n.Kind != yaml.ScalarNode {
			return "", false
		}
		if n.Tag == "!!null" {
			return "", true
		}
		return n.Value, true
	}
	return "", false
}

// Bool interprets the key as a boolean flag. Strings such as "True" and
// "yes" are accepted alongside YAML booleans.
func (f Fields) Bool(key string) (value bool, ok bool) {
	s, ok := f.String(key)
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0", "":
		return false, true
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}

// Strings reads a list. A YAML sequence yields its scalar items; a scalar is
// split on commas, matching the header metadata convention for tags.
func (f Fields) Strings(key string) []string {
	n, ok := f.nodes[strings.ToLower(key)]
	if !ok {
		return nil
	}

	var raw []string
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			item = resolveAlias(item)
			if item.Kind == yaml.ScalarNode && item.Tag != "!!null" {
				raw = append(raw, item.Value)
			}
		}
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
		raw = strings.Split(n.Value, ",")
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var headerLine = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*)\s*:\s*(.*)$`)

func parseHeader(content []byte) (Fields, []byte) {
	fields := Fields{nodes: map[string]*yaml.Node{}}
	rest := content
	for len(rest) > 0 {
		line := rest
		next := []byte{}
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, next = rest[:i], rest[i+1:]
		}
		text := strings.TrimRight(string(line), "\r")
		if strings.TrimSpace(text) == "" {
			if fields.Len() > 0 {
				rest = next
			}
			break
		}
		m := headerLine.FindStringSubmatch(text)
		if m == nil {
			// Not a header block; the document has no metadata.
			return Fields{nodes: map[string]*yaml.Node{}}, content
		}
		fields.nodes[strings.ToLower(m[1])] = &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: strings.TrimSpace(m[2]),
		}
		rest = next
	}
	return fields, rest
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "node"
	}
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
