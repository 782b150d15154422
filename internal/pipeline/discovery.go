package pipeline

import "github.com/a3tai/mcp-pdf-forms/internal/pdf/document"

// FieldInfo describes one discovered form field
type FieldInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Discovery is the per-item output of field discovery
type Discovery struct {
	TotalFields int         `json:"totalFields"`
	Fields      []FieldInfo `json:"fields"`
}

// ListFields enumerates every field of the form. It does not mutate it.
func ListFields(form document.Form) Discovery {
	fields := form.Fields()
	out := Discovery{
		TotalFields: len(fields),
		Fields:      make([]FieldInfo, 0, len(fields)),
	}
	for _, f := range fields {
		out.Fields = append(out.Fields, FieldInfo{Name: f.Name(), Type: string(f.Kind())})
	}
	return out
}

// JSON renders the discovery as item json
func (d Discovery) JSON() map[string]any {
	fields := make([]any, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = map[string]any{"name": f.Name, "type": f.Type}
	}
	return map[string]any{
		"totalFields": d.TotalFields,
		"fields":      fields,
	}
}
