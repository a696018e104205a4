// Template (§3), built through a validating builder (§4.1).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package aztype

import "github.com/azraelhq/azrael/cmn/cos"

// Template is a reusable blueprint from which instances are spawned
// (§3, glossary).
type Template struct {
	AID       AID                     `json:"aid"`
	RB        RigidBody               `json:"rbs"`
	Fragments map[string]FragmentMeta `json:"fragments"`
	Boosters  map[string]Booster      `json:"boosters"`
	Factories map[string]Factory      `json:"factories"`
	Custom    string                  `json:"custom"`
}

// TemplateBuilder incrementally assembles a Template, validating each
// sub-record as it is added so any invariant violation fails
// construction (§3: "Constructed through a validating builder; any
// sub-invariant violation fails construction.").
type TemplateBuilder struct {
	t   Template
	err error
}

func NewTemplateBuilder(aid AID, rb RigidBody) *TemplateBuilder {
	b := &TemplateBuilder{t: Template{
		AID:       aid,
		RB:        rb,
		Fragments: map[string]FragmentMeta{},
		Boosters:  map[string]Booster{},
		Factories: map[string]Factory{},
	}}
	if !cos.IsValidAID(string(aid)) {
		b.err = cos.NewErrValidation("invalid template AID %q", aid)
		return b
	}
	if err := rb.Validate(); err != nil {
		b.err = err
	}
	return b
}

func (b *TemplateBuilder) WithFragment(name string, fm FragmentMeta) *TemplateBuilder {
	if b.err != nil {
		return b
	}
	if !cos.IsValidAID(name) {
		b.err = cos.NewErrValidation("invalid fragment AID %q", name)
		return b
	}
	if err := fm.Validate(); err != nil {
		b.err = err
		return b
	}
	b.t.Fragments[name] = fm
	return b
}

func (b *TemplateBuilder) WithBooster(name string, bst Booster) *TemplateBuilder {
	if b.err != nil {
		return b
	}
	if !cos.IsValidAID(name) {
		b.err = cos.NewErrValidation("invalid booster AID %q", name)
		return b
	}
	if err := bst.Normalize(); err != nil {
		b.err = err
		return b
	}
	b.t.Boosters[name] = bst
	return b
}

func (b *TemplateBuilder) WithFactory(name string, f Factory) *TemplateBuilder {
	if b.err != nil {
		return b
	}
	if !cos.IsValidAID(name) {
		b.err = cos.NewErrValidation("invalid factory AID %q", name)
		return b
	}
	if err := f.Normalize(); err != nil {
		b.err = err
		return b
	}
	b.t.Factories[name] = f
	return b
}

func (b *TemplateBuilder) WithCustom(custom string) *TemplateBuilder {
	b.t.Custom = custom
	return b
}

func (b *TemplateBuilder) Build() (Template, error) {
	if b.err != nil {
		return Template{}, b.err
	}
	return b.t, nil
}

// Clone returns a deep copy, used whenever a template is snapshotted
// into a freshly spawned object instance (§4.4: "copy the template").
func (t Template) Clone() Template {
	out := t
	out.RB = t.RB.Clone()
	out.Fragments = make(map[string]FragmentMeta, len(t.Fragments))
	for k, v := range t.Fragments {
		v.Files = cloneFiles(v.Files)
		out.Fragments[k] = v
	}
	out.Boosters = make(map[string]Booster, len(t.Boosters))
	for k, v := range t.Boosters {
		out.Boosters[k] = v
	}
	out.Factories = make(map[string]Factory, len(t.Factories))
	for k, v := range t.Factories {
		out.Factories[k] = v
	}
	return out
}

// StripFiles returns a copy of t with every fragment's file bytes
// stripped to filenames-only, the form persisted by the Template
// Registry and Object Store (§3, §4.3).
func (t Template) StripFiles() Template {
	out := t.Clone()
	for k, v := range out.Fragments {
		out.Fragments[k] = v.StripFiles()
	}
	return out
}
