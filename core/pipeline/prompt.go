package pipeline

import "strings"

// PagePlaceholder marks where BuildPrompt inserts the page text.
const PagePlaceholder = "{{PAGE_TEXT}}"

// DefaultPrompt asks for the rows of the tables on a page as a JSON array.
const DefaultPrompt = `Extract the tables in the following raw text into structured data.

Rules:
- Identify the correct table headers, even if they are repeated or noisy.
- Return one JSON object per table row, all rows in a single JSON array.
- Use the header text as the key, e.g. "State" or "Sales Value (RM '000)".
- Parse numbers as numeric values, not strings. Remove thousands separators.
- If a value is missing (for example "." or "-"), use 0.
- For tables with sub-categories (for example Individual, Establishment,
  Agriculture Holding), nest each sub-category as an object under its name.
- Return ONLY the JSON array, with no explanation.

Example for a single-category table:
[
  {"State": "Malaysia", "Number of Agriculture Holding": 8263, "Sales Value (RM '000)": 13310105.96},
  {"State": "Johor", "Number of Agriculture Holding": 585, "Sales Value (RM '000)": 2971240.43}
]

Example for a multi-category table:
[
  {
    "State": "Malaysia",
    "Individual": {"Number": 7143, "Sales Value (RM '000)": 273267.38},
    "Establishment": {"Number": 1120, "Sales Value (RM '000)": 13036838.58}
  }
]

Raw text:

` + PagePlaceholder + `
`

// BuildPrompt fills template with pageText. A template without the
// placeholder gets the text appended after a blank line.
func BuildPrompt(template, pageText string) string {
	if template == "" {
		template = DefaultPrompt
	}
	if strings.Contains(template, PagePlaceholder) {
		return strings.Replace(template, PagePlaceholder, pageText, 1)
	}
	return strings.TrimRight(template, "\n") + "\n\n" + pageText
}
