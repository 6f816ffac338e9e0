package render

import (
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EngineName selects how a template source is preprocessed.
type EngineName string

const (
	// EngineGoTemplate executes the source with text/template.
	EngineGoTemplate EngineName = "gotmpl"
	// EngineNone passes the source through untouched.
	EngineNone EngineName = "none"
)

// IsValid reports whether the name is a known engine.
func (e EngineName) IsValid() bool {
	return e == EngineGoTemplate || e == EngineNone
}

// ParseEngine normalises an engine name. Empty selects gotmpl.
func ParseEngine(raw string) (EngineName, error) {
	name := EngineName(strings.ToLower(strings.TrimSpace(raw)))
	if name == "" {
		return EngineGoTemplate, nil
	}
	if !name.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, raw)
	}
	return name, nil
}

// Engine preprocesses template sources before conversion.
type Engine struct {
	name EngineName
}

// NewEngine creates an engine by name.
func NewEngine(name EngineName) (*Engine, error) {
	if !name.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return &Engine{name: name}, nil
}

// Name returns the engine's name.
func (e *Engine) Name() EngineName { return e.name }

// Execute runs src (identified by name in error messages) against data.
func (e *Engine) Execute(name, src string, data any) (string, error) {
	if e.name == EngineNone || !strings.Contains(src, "{{") {
		return src, nil
	}
	tmpl, err := template.New(name).Funcs(textFuncs()).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	return b.String(), nil
}

// ExecuteData expands top-level string values containing template actions.
// The input map is not modified.
func (e *Engine) ExecuteData(name string, fields map[string]any, data any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		s, ok := v.(string)
		if !ok || !strings.Contains(s, "{{") {
			out[k] = v
			continue
		}
		expanded, err := e.Execute(name+"#"+k, s, data)
		if err != nil {
			return nil, fmt.Errorf("front matter %q: %w", k, err)
		}
		out[k] = expanded
	}
	return out, nil
}

func textFuncs() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"trim":  strings.TrimSpace,
		"join":  strings.Join,
		"title": func(s string) string {
			return cases.Title(language.BritishEnglish).String(s)
		},
		"default": func(def, v any) any {
			if v == nil {
				return def
			}
			if s, ok := v.(string); ok && s == "" {
				return def
			}
			return v
		},
	}
}
