package projection

// TaskTotals holds node completion counts for an execution.
// Invariant: Completed <= Total.
type TaskTotals struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Aggregate folds over every node entry to produce completion totals and,
// when the per-node statuses support one, an overall derived status.
//
// Every entry counts toward Total whether or not a status could be extracted;
// only entries whose extracted status is "completed" count toward Completed.
// The derived status follows a fixed precedence over the extracted tokens:
// any error wins, then any running, then full completion, then partial
// completion (which implies an in-flight run). The second return is false
// when the nodes offer no opinion, leaving the caller to fall back to
// metadata or idle.
//
// A nodes value that is not a map yields zero totals and no opinion. The fold
// is a single linear pass and is insensitive to map iteration order.
func Aggregate(nodes any) (TaskTotals, Status, bool) {
	m, ok := nodes.(map[string]any)
	if !ok {
		return TaskTotals{}, "", false
	}

	var totals TaskTotals
	var sawError, sawRunning bool
	for _, nodeValue := range m {
		totals.Total++
		status, ok := ExtractNodeStatus(nodeValue)
		if !ok {
			continue
		}
		switch status {
		case StatusCompleted:
			totals.Completed++
		case StatusError:
			sawError = true
		case StatusRunning:
			sawRunning = true
		}
	}

	switch {
	case sawError:
		return totals, StatusError, true
	case sawRunning:
		return totals, StatusRunning, true
	case totals.Total > 0 && totals.Completed == totals.Total:
		return totals, StatusCompleted, true
	case totals.Completed > 0 && totals.Completed < totals.Total:
		return totals, StatusRunning, true
	default:
		return totals, "", false
	}
}
