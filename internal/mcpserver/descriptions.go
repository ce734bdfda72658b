package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and key thresholds.

func describeDetectClones() string {
	return `Detects duplicated code (clones) across a codebase at function granularity.

USE WHEN:
- Finding copy-paste duplication before refactoring
- Estimating how many lines an extract-function refactor would save
- Auditing a codebase for drifted copies of the same logic
- Checking whether a bug fix needs to be applied in more than one place

INTERPRETING RESULTS:
- Kinds: exact (token-identical), renamed (identical up to identifier
  names, similarity >= 0.95), near_miss (statements inserted or removed,
  similarity >= threshold)
- estimated_savings: lines removable by extracting the duplicate once,
  (member_count - 1) * seed lines
- Groups are ranked by estimated savings; the first member of each group
  is the seed
- truncated=true with a result_handle: the full set is stored server-side;
  page through it with get_clone_result
- Similarity is computed over normalized token sequences: comments and
  whitespace never affect scores, identifier names only distinguish
  exact from renamed

METRICS RETURNED:
- Per-group: kind, members (file, lines, symbol), average similarity,
  estimated savings
- Summary: group counts by kind, total savings, P50/P95 similarity`
}

func describeGetCloneResult() string {
	return `Retrieves the full, untruncated result of a previous detect_clones run.

USE WHEN:
- A detect_clones response had truncated=true and a result_handle
- Paging through a large clone report without re-running detection

INTERPRETING RESULTS:
- Same shape as detect_clones output; offset/limit page the group list
- Handles expire after a few minutes; re-run detect_clones if unknown`
}
