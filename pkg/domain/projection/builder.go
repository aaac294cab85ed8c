package projection

// FromTaskContext derives a StatusProjection from a raw task context
// document. executionID and projectID come from the caller's request context;
// a missing projectID is backfilled from metadata when the document carries
// one.
//
// The only hard failures are a nil or non-map taskContext, reported as
// *InvalidTaskContextError. Every other malformation (non-map metadata or
// nodes, garbage node entries, unrecognized status strings, malformed task
// ids or branch names) degrades to defaults. Two calls with identical inputs
// produce identical projections: the engine reads no clock and depends on no
// map iteration order.
func FromTaskContext(taskContext any, executionID, projectID string) (*StatusProjection, error) {
	doc, ok := taskContext.(map[string]any)
	if !ok || doc == nil {
		return nil, newInvalidTaskContextError(taskContext)
	}

	// Non-map metadata and nodes degrade to empty; Resolve and Aggregate
	// absorb the mismatch.
	metadata := doc["metadata"]
	nodes := doc["nodes"]

	totals, derived, hasDerived := Aggregate(nodes)

	currentTask := ResolveString(metadata, "task_id", "taskId")
	if currentTask != "" && !taskIDPattern.MatchString(currentTask) {
		currentTask = ""
	}

	explicit, hasExplicit := NormalizeStatus(ResolveString(metadata, "status"))

	// Derived status wins over the explicit metadata status, with one
	// asymmetric exception: an explicit error always wins. Error derived
	// from nodes already ranks highest inside Aggregate, so the reverse
	// case needs no counterpart here.
	status := StatusIdle
	switch {
	case hasExplicit && explicit == StatusError:
		status = StatusError
	case hasDerived:
		status = derived
	case hasExplicit:
		status = explicit
	}

	progress := 0.0
	if totals.Total > 0 {
		progress = float64(totals.Completed) / float64(totals.Total) * 100
	}

	if projectID == "" {
		projectID = ResolveString(metadata, "project_id", "projectId")
	}

	branch := SanitizeBranch(ResolveString(metadata, "branch"))

	p := &StatusProjection{
		ExecutionID: executionID,
		ProjectID:   projectID,
		CustomerID:  splitCustomerID(projectID),
		Status:      status,
		Progress:    progress,
		CurrentTask: currentTask,
		Totals:      totals,
		Branch:      branch,
		Artifacts: ExecutionArtifacts{
			RepoPath:      ResolveString(metadata, "repo_path", "repoPath"),
			Branch:        branch,
			Logs:          ResolveStringSlice(metadata, "logs"),
			FilesModified: ResolveStringSlice(metadata, "files_modified", "filesModified"),
		},
		StartedAt: parseTimestamp(ResolveString(metadata, "started_at", "startedAt")),
		UpdatedAt: parseTimestamp(ResolveString(metadata, "updated_at", "updatedAt")),
	}
	p.normalize()
	return p, nil
}
