package extract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// cleanJSON strips markdown code fences and any prose around the outermost
// JSON value.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	text = strings.TrimSpace(text)

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(text, closer); end > start {
		return text[start : end+1]
	}
	return text
}

// parseItems decodes a model response into a list of objects. A top-level
// object carrying key is unwrapped. ok is false when the payload is not a
// list.
func parseItems(text, key string) ([]map[string]any, bool, error) {
	var raw any
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return nil, false, eris.Wrap(err, "extract: parse json")
	}
	if obj, isObj := raw.(map[string]any); isObj {
		if inner, found := obj[key]; found {
			raw = inner
		}
	}
	list, isList := raw.([]any)
	if !isList {
		return nil, false, nil
	}
	items := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if m, isMap := v.(map[string]any); isMap {
			items = append(items, m)
		}
	}
	return items, true, nil
}

// parseObject decodes a model response that should be a single object.
func parseObject(text string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleanJSON(text)), &obj); err != nil {
		return nil, eris.Wrap(err, "extract: parse json object")
	}
	return obj, nil
}
