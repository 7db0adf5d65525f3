package operations

import "strings"

// Sanitize never fails: anything it does not recognize degrades to a default or is dropped.
// A nil map is treated as an empty one.
func Sanitize(raw map[string]any) Operations {
	var ops Operations

	if adj, ok := raw["adjustments"].(map[string]any); ok {
		ops.Adjustments = sanitizeAdjustments(adj)
	}
	if rest, ok := raw["restorations"].(map[string]any); ok {
		ops.Restorations = sanitizeRestorations(rest)
	}
	if bg, ok := raw["background"].(map[string]any); ok {
		ops.Background = sanitizeBackground(bg)
	}
	if rs, ok := raw["resizing"].(map[string]any); ok {
		ops.Resizing = sanitizeResizing(rs)
	}
	if pad, ok := raw["padding"].(string); ok {
		ops.Padding = strings.TrimSpace(pad)
	}

	// пустой набор операций вендору не отправляем
	if ops.IsEmpty() {
		return DefaultOperations()
	}
	return ops
}

// BuildPayload sanitizes operations and output and wraps them together with the image input.
func BuildPayload(input string, rawOps map[string]any, rawOutput map[string]any) Payload {
	return Payload{
		Input:      input,
		Operations: Sanitize(rawOps),
		Output:     sanitizeOutput(rawOutput),
	}
}

func sanitizeAdjustments(raw map[string]any) *Adjustments {
	return &Adjustments{
		HDR:        roundAdjustment(raw["hdr"]),
		Exposure:   roundAdjustment(raw["exposure"]),
		Saturation: roundAdjustment(raw["saturation"]),
		Contrast:   roundAdjustment(raw["contrast"]),
		Sharpness:  roundAdjustment(raw["sharpness"]),
	}
}

func sanitizeRestorations(raw map[string]any) *Restorations {
	res := &Restorations{}

	// decompress: null выкидываем, строку оставляем как есть
	if v, ok := raw["decompress"].(string); ok && v != "" {
		res.Decompress = &v
	}
	// polish=false и отсутствие для вендора одно и то же
	if v, ok := raw["polish"].(bool); ok && v {
		res.Polish = &v
	}
	if v, ok := raw["upscale"].(string); ok && v != "" {
		res.Upscale = &v
	}

	return res
}

func sanitizeBackground(raw map[string]any) *Background {
	res := &Background{}

	if color, ok := raw["color"].(string); ok {
		res.Color = strings.TrimSpace(color)
	}

	removeRaw, present := raw["remove"]
	if !present || removeRaw == nil {
		return res
	}

	switch v := removeRaw.(type) {
	case map[string]any:
		res.Remove = sanitizeRemoveObject(v)
	case bool:
		res.Remove = &Remove{Enabled: v}
	default:
		res.Remove = &Remove{Enabled: isTruthy(v)}
	}

	return res
}

func sanitizeRemoveObject(raw map[string]any) *Remove {
	res := &Remove{Enabled: true}

	if category, ok := raw["category"].(string); ok {
		res.Category = strings.TrimSpace(category)
	}
	if sel, ok := raw["selective"].(map[string]any); ok {
		res.Selective = &Selective{}
		if keep, ok := sel["object_to_keep"].(string); ok {
			res.Selective.ObjectToKeep = keep
		}
	}
	// category и selective взаимоисключающие - побеждает category
	if res.Category != "" {
		res.Selective = nil
	}

	// без селектора объект схлопывается в true
	if !res.isObject() {
		return &Remove{Enabled: true}
	}

	if clip, ok := raw["clipping"].(bool); ok {
		res.Clipping = &clip
	}

	return res
}

// sanitizeResizing returns nil when nothing usable survives, so an empty object is never sent.
func sanitizeResizing(raw map[string]any) *Resizing {
	rs := &Resizing{
		Width:  toDimension(raw["width"]),
		Height: toDimension(raw["height"]),
		Fit:    toFit(raw["fit"]),
	}
	if rs.Width == nil && rs.Height == nil && rs.Fit == nil {
		return nil
	}
	return rs
}

func sanitizeOutput(raw map[string]any) Output {
	out := Output{Format: OutputFormat{Type: DefaultOutputFormat}}

	switch v := raw["format"].(type) {
	case string:
		if f := strings.ToLower(strings.TrimSpace(v)); f != "" {
			out.Format.Type = f
		}
	case map[string]any:
		if t, ok := v["type"].(string); ok && strings.TrimSpace(t) != "" {
			out.Format.Type = strings.ToLower(strings.TrimSpace(t))
		}
		if c, ok := v["compression"].(map[string]any); ok {
			out.Format.Compression = toCompression(c)
		}
	}

	return out
}

func toCompression(raw map[string]any) *Compression {
	res := &Compression{}
	if t, ok := raw["type"].(string); ok {
		res.Type = t
	}
	if q, ok := toNumber(raw["quality"]); ok {
		quality := roundHalfAway(q)
		res.Quality = &quality
	}
	return res
}
