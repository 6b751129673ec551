package extract

// truncationLikely decides whether truncation repair applies. Any finish
// reason other than stop counts, as does a root that never closed.
func truncationLikely(reason FinishReason, c Candidate) bool {
	return reason != FinishStop || !c.Balanced
}
