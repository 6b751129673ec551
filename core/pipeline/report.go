package pipeline

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/leofalp/docextract/core/extract"
	"github.com/leofalp/docextract/providers/ai"
	"github.com/leofalp/docextract/providers/pages"
)

// PageResult is the outcome for one page.
type PageResult struct {
	Page         pages.Page
	Result       extract.Result
	Usage        *ai.Usage
	FinishReason string // as reported by the provider
}

// RecordCount is the number of records the page contributes: the length of
// an array root, one for an object root, zero for a failed page.
func (pr PageResult) RecordCount() int {
	if pr.Result.Status == extract.StatusFailed {
		return 0
	}
	root := gjson.Parse(pr.Result.JSON)
	switch {
	case root.IsArray():
		return len(root.Array())
	case root.IsObject():
		return 1
	default:
		return 0
	}
}

// Report collects the page results of one run in page order.
type Report struct {
	RunID  string
	Source string
	Pages  []PageResult
}

// Records returns the decoded records of every successful page in page
// order. Array roots are flattened into their elements.
func (r *Report) Records() []any {
	var out []any
	for _, pr := range r.Pages {
		switch v := pr.Result.Value.(type) {
		case []any:
			out = append(out, v...)
		case map[string]any:
			out = append(out, v)
		}
	}
	return out
}

// RecordsJSON returns the records as one JSON array built from the exact
// text each page parsed from, so key order and number spelling survive.
func (r *Report) RecordsJSON() string {
	var raws []string
	for _, pr := range r.Pages {
		if pr.Result.Status == extract.StatusFailed {
			continue
		}
		root := gjson.Parse(pr.Result.JSON)
		switch {
		case root.IsArray():
			root.ForEach(func(_, value gjson.Result) bool {
				raws = append(raws, value.Raw)
				return true
			})
		case root.IsObject():
			raws = append(raws, root.Raw)
		}
	}
	return "[" + strings.Join(raws, ",") + "]"
}

// Incomplete returns the pages whose data had to be repaired. Their records
// are usable but may be missing rows.
func (r *Report) Incomplete() []PageResult {
	return r.filter(extract.StatusRecovered)
}

// Failed returns the pages that yielded no data.
func (r *Report) Failed() []PageResult {
	return r.filter(extract.StatusFailed)
}

func (r *Report) filter(status extract.Status) []PageResult {
	var out []PageResult
	for _, pr := range r.Pages {
		if pr.Result.Status == status {
			out = append(out, pr)
		}
	}
	return out
}

// Usage sums token usage over all pages.
func (r *Report) Usage() ai.Usage {
	var total ai.Usage
	for _, pr := range r.Pages {
		if pr.Usage == nil {
			continue
		}
		total.PromptTokens += pr.Usage.PromptTokens
		total.CompletionTokens += pr.Usage.CompletionTokens
		total.TotalTokens += pr.Usage.TotalTokens
	}
	return total
}
