package clerk

import (
	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/wire"
)

type addTemplatesReq struct {
	Templates []aztype.Template `json:"templates"`
}

func (g *Gateway) handleAddTemplates(data []byte) wire.Reply {
	var req addTemplatesReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("add_templates: %v", err)
	}
	inserted, err := g.reg.AddTemplates(req.Templates)
	if err != nil {
		return wire.Err("add_templates: %v", err)
	}
	return wire.OK(inserted)
}

type getTemplatesReq struct {
	AIDs []string `json:"aids"`
}

func (g *Gateway) handleGetTemplates(data []byte) wire.Reply {
	var req getTemplatesReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("get_templates: %v", err)
	}
	templates, err := g.reg.GetTemplates(req.AIDs)
	if err != nil {
		return wire.Err("get_templates: %v", err)
	}
	return wire.OK(templates)
}

type getTemplateIDReq struct {
	ObjID string `json:"obj_id"`
}

func (g *Gateway) handleGetTemplateID(data []byte) wire.Reply {
	var req getTemplateIDReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("get_template_id: %v", err)
	}
	aid, err := g.objs.GetTemplateID(req.ObjID)
	if err != nil {
		return wire.Err("get_template_id: %v", err)
	}
	return wire.OK(map[string]string{"template_id": aid})
}
