package projection

import "regexp"

// branchPattern is deliberately conservative: git allows more, but anything
// outside this set in a task context is more likely corruption than intent.
var branchPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// ExecutionArtifacts collects filesystem-level outputs recorded for an
// execution. All fields default to empty when the source metadata omits them.
type ExecutionArtifacts struct {
	RepoPath      string   `json:"repo_path,omitempty"`
	Branch        string   `json:"branch,omitempty"`
	Logs          []string `json:"logs"`
	FilesModified []string `json:"files_modified"`
}

// SanitizeBranch returns the branch name when it matches the conservative
// branch pattern, otherwise "".
func SanitizeBranch(branch string) string {
	if branch == "" || !branchPattern.MatchString(branch) {
		return ""
	}
	return branch
}
