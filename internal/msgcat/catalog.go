// Package msgcat holds the user-facing texts of the trainer as templates.
package msgcat

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var defaultMessages []byte

// Catalog maps dotted keys ("training.stats") to parsed templates. It is
// read-only after New.
type Catalog struct {
	tpl map[string]*template.Template
}

// New parses the embedded messages, then every *.yaml/*.yml file in
// overrideDir in name order. Overrides may only replace existing keys.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{tpl: make(map[string]*template.Template)}
	if err := c.merge("messages.en.yaml", defaultMessages, false); err != nil {
		return nil, err
	}
	overrideDir = strings.TrimSpace(overrideDir)
	if overrideDir == "" {
		return c, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(overrideDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("messages dir: %w", err)
		}
		files = append(files, m...)
	}
	if len(files) == 0 {
		if _, err := os.Stat(overrideDir); err != nil {
			return nil, fmt.Errorf("messages dir: %w", err)
		}
	}
	slices.Sort(files)
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(f), err)
		}
		if err := c.merge(filepath.Base(f), raw, true); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) merge(name string, raw []byte, override bool) error {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	texts := make(map[string]string)
	if err := flatten(doc, "", texts); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	for key, text := range texts {
		if _, known := c.tpl[key]; override && !known {
			return fmt.Errorf("%s: unknown message %q", name, key)
		}
		t, err := template.New(key).Option("missingkey=error").Parse(text)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		c.tpl[key] = t
	}
	return nil
}

func flatten(node any, prefix string, out map[string]string) error {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flatten(child, key, out); err != nil {
				return err
			}
		}
	case string:
		if prefix == "" {
			return errors.New("text without a key")
		}
		out[prefix] = v
	case nil:
	default:
		return fmt.Errorf("%s: want text, got %T", prefix, v)
	}
	return nil
}

// Render executes the template for key. Unknown keys and missing data
// fields are errors.
func (c *Catalog) Render(key string, data any) (string, error) {
	t, ok := c.tpl[key]
	if !ok {
		return "", fmt.Errorf("unknown message %q", key)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Text is Render with a fallback for callers that always need a string.
func (c *Catalog) Text(key string, data any, fallback string) string {
	if c == nil {
		return fallback
	}
	out, err := c.Render(key, data)
	if err != nil {
		return fallback
	}
	return out
}
