// Package frontmatter splits YAML front matter from Markdown and HTML pages.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a front matter
// block with `---` but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// ErrInvalidYAML indicates the front matter block is not a YAML mapping.
var ErrInvalidYAML = errors.New("front matter is not valid YAML")

// Matter is a parsed document: its front matter fields and the remaining body.
type Matter struct {
	Fields map[string]any
	Raw    []byte // front matter bytes without delimiters
	Body   []byte
	Had    bool // document carried a front matter block, even an empty one
}

// Parse splits content and decodes the front matter block.
// Documents without front matter yield empty Fields and the full content as Body.
func Parse(content []byte) (Matter, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Matter{}, err
	}
	fields, err := ParseYAML(raw)
	if err != nil {
		return Matter{}, err
	}
	return Matter{Fields: fields, Raw: raw, Body: body, Had: had}, nil
}

// Split separates a `---` delimited front matter block from the body.
// Both LF and CRLF documents are accepted.
func Split(content []byte) (raw, body []byte, had bool, err error) {
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
		// A closing delimiter on the final line has no trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) && len(content)-len(nl)-3 >= start {
			end := len(content) - 3
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// ParseYAML decodes raw front matter (without delimiters) into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// SerializeYAML renders fields with sorted keys so the output is stable.
func SerializeYAML(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
