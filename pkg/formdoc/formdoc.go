// Package formdoc reads Form documents produced by external editors. A
// document is JSON; YAML is accepted as an authoring convenience. Lint and
// LintSchema report problems the runtime would otherwise tolerate silently.
package formdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Parse decodes a form document. JSON is tried first, then YAML. source is
// used in error messages only.
func Parse(data []byte, source string) (model.Form, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Form{}, fmt.Errorf("%w: %s", ErrEmptyDocument, source)
	}

	var form model.Form
	jsonErr := json.Unmarshal(data, &form)
	if jsonErr == nil {
		return form, nil
	}
	if looksLikeJSON(data) {
		return model.Form{}, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, source, jsonErr)
	}

	form = model.Form{}
	if err := yaml.Unmarshal(data, &form); err != nil {
		return model.Form{}, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, source, err)
	}
	return form, nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// Catalog holds forms loaded from a filesystem, keyed by form id.
type Catalog struct {
	forms   map[string]model.Form
	sources map[string]string
}

// LoadFS walks fsys and parses every .json, .yaml and .yml file as a form.
// Forms without an id take the file name without extension. A nil fsys
// yields an empty catalog.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := &Catalog{
		forms:   make(map[string]model.Form),
		sources: make(map[string]string),
	}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !IsFormFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("formdoc: read %s: %w", p, err)
		}
		form, err := Parse(data, p)
		if err != nil {
			return err
		}

		id := strings.TrimSpace(form.ID)
		if id == "" {
			id = strings.TrimSuffix(path.Base(p), path.Ext(p))
			form.ID = id
		}
		if prev, exists := catalog.sources[id]; exists {
			return fmt.Errorf("%w: %q in %s and %s", ErrDuplicateForm, id, prev, p)
		}
		catalog.forms[id] = form
		catalog.sources[id] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// IsFormFile reports whether p has a form document extension.
func IsFormFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Form returns the form registered under id.
func (c *Catalog) Form(id string) (model.Form, bool) {
	if c == nil {
		return model.Form{}, false
	}
	form, ok := c.forms[id]
	return form, ok
}

// Source returns the path the form was loaded from.
func (c *Catalog) Source(id string) string {
	if c == nil {
		return ""
	}
	return c.sources[id]
}

// IDs returns the form ids in sorted order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.forms))
	for id := range c.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports how many forms the catalog holds.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.forms)
}
