package projection

// ExtractNodeStatus extracts the normalized status token recorded on a single
// node value. The second return is false when the node carries no
// recognizable status.
//
// Two schema generations coexist in live data: the current one records the
// status directly under "status", the older one nests it under
// "event_data.status". Both are supported permanently. A node value that is
// not a map, or a status value that is not a non-empty string, counts as
// absent rather than as an error.
func ExtractNodeStatus(nodeValue any) (Status, bool) {
	m, ok := nodeValue.(map[string]any)
	if !ok {
		return "", false
	}
	if raw, present := m["status"]; present {
		return coerceStatus(raw)
	}
	if eventData, ok := m["event_data"].(map[string]any); ok {
		if raw, present := eventData["status"]; present {
			return coerceStatus(raw)
		}
	}
	return "", false
}

func coerceStatus(raw any) (Status, bool) {
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return NormalizeStatus(s)
}
