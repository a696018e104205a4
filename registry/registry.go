// Package registry implements the Template Registry (C3, §4.3): an
// idempotent bulk insert and lookup of templates by name.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package registry

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/azraelhq/azrael/assets"
	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/cmn/cos"
	"github.com/azraelhq/azrael/kvs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const keyPrefix = "tpl:"

type doc struct {
	Template aztype.Template `json:"template"`
	URLFrag  string          `json:"url_frag"`
}

// Registry is the Template Registry.
type Registry struct {
	store  *kvs.Store
	assets assets.Store
}

func New(store *kvs.Store, as assets.Store) *Registry {
	return &Registry{store: store, assets: as}
}

// AddTemplates upserts every template with create-if-absent semantics
// and reports which ones were newly inserted (§4.3).
//
// If any single template fails validation the entire call fails and
// nothing is inserted; an Asset Store failure for one template is not
// possible to partially roll back from others already committed, so
// each template is validated up front, before any store mutation.
func (r *Registry) AddTemplates(templates []aztype.Template) (map[string]bool, error) {
	if len(templates) == 0 {
		return map[string]bool{}, nil
	}
	for i := range templates {
		if err := validateTemplate(&templates[i]); err != nil {
			return nil, err
		}
	}

	result := make(map[string]bool, len(templates))
	for _, t := range templates {
		urlFrag, err := r.assets.Put(string(t.AID), t.Fragments)
		if err != nil {
			return nil, err
		}
		stripped := t.StripFiles()
		d := doc{Template: stripped, URLFrag: urlFrag}
		b, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		inserted, err := r.store.SetIfAbsent(keyPrefix+string(t.AID), string(b))
		if err != nil {
			return nil, err
		}
		result[string(t.AID)] = inserted
	}
	return result, nil
}

// GetTemplates resolves a de-duplicated set of AIDs; if any requested
// AID is missing the whole call fails (§4.3).
func (r *Registry) GetTemplates(aids []string) (map[string]struct {
	Template aztype.Template
	URLFrag  string
}, error) {
	seen := make(map[string]bool, len(aids))
	out := make(map[string]struct {
		Template aztype.Template
		URLFrag  string
	}, len(aids))

	for _, aid := range aids {
		if seen[aid] {
			continue
		}
		seen[aid] = true

		v, found, err := r.store.Get(keyPrefix + aid)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, cos.NewErrNotFound("template %q", aid)
		}
		var d doc
		if err := json.Unmarshal([]byte(v), &d); err != nil {
			return nil, err
		}
		out[aid] = struct {
			Template aztype.Template
			URLFrag  string
		}{Template: d.Template, URLFrag: d.URLFrag}
	}
	return out, nil
}

// GetOne is a convenience wrapper used by the Object Store where only
// one template is needed at a time.
func (r *Registry) GetOne(aid string) (aztype.Template, string, error) {
	res, err := r.GetTemplates([]string{aid})
	if err != nil {
		return aztype.Template{}, "", err
	}
	v := res[aid]
	return v.Template, v.URLFrag, nil
}

func validateTemplate(t *aztype.Template) error {
	if !cos.IsValidAID(string(t.AID)) {
		return cos.NewErrValidation("invalid template AID %q", t.AID)
	}
	if err := t.RB.Validate(); err != nil {
		return err
	}
	for name, fm := range t.Fragments {
		if !cos.IsValidAID(name) {
			return cos.NewErrValidation("invalid fragment AID %q", name)
		}
		if err := fm.Validate(); err != nil {
			return err
		}
	}
	for name, bst := range t.Boosters {
		if !cos.IsValidAID(name) {
			return cos.NewErrValidation("invalid booster AID %q", name)
		}
		if err := bst.Normalize(); err != nil {
			return err
		}
		t.Boosters[name] = bst
	}
	for name, f := range t.Factories {
		if !cos.IsValidAID(name) {
			return cos.NewErrValidation("invalid factory AID %q", name)
		}
		if err := f.Normalize(); err != nil {
			return err
		}
		t.Factories[name] = f
	}
	return nil
}
