package observability

// Attribute keys, span names and metric names shared by every component.

// --- LLM Attributes ---

const (
	// AttrLLMProvider is the provider name, e.g. "openai".
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier.
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL.
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the response identifier returned by the provider.
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation stopped.
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTemperature is the sampling temperature used.
	AttrLLMTemperature = "llm.temperature"

	// AttrLLMMaxTokens is the completion token limit sent with the request.
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensPrompt is the number of prompt tokens.
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensCompletion is the number of completion tokens.
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensTotal is the total number of tokens.
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Extraction Attributes ---

const (
	// AttrExtractStatus is the outcome: complete, recovered or failed.
	AttrExtractStatus = "extract.status"

	// AttrExtractStrategy is the fallback strategy that produced a recovered result.
	AttrExtractStrategy = "extract.strategy"

	// AttrExtractWarnings lists the repairs applied to a recovered result.
	AttrExtractWarnings = "extract.warnings"

	// AttrExtractErrorKind is the failure category of a failed result.
	AttrExtractErrorKind = "extract.error_kind"

	// AttrExtractExcerpt is the bounded excerpt of the text that failed.
	AttrExtractExcerpt = "extract.excerpt"

	// AttrExtractInputSize is the raw completion length in bytes.
	AttrExtractInputSize = "extract.input.size"

	// AttrExtractTrimmed reports whether surrounding prose was dropped.
	AttrExtractTrimmed = "extract.trimmed"

	// AttrExtractKind is the root kind of the located candidate.
	AttrExtractKind = "extract.candidate.kind"

	// AttrExtractCandidateStart is the byte offset of the candidate opener.
	AttrExtractCandidateStart = "extract.candidate.start"

	// AttrExtractCandidateEnd is the exclusive end offset of the candidate.
	AttrExtractCandidateEnd = "extract.candidate.end"

	// AttrExtractBalanced reports whether the candidate root closed.
	AttrExtractBalanced = "extract.candidate.balanced"

	// AttrExtractTruncated reports whether truncation repair was enabled.
	AttrExtractTruncated = "extract.truncated"
)

// --- Document Attributes ---

const (
	// AttrDocumentSource is the path or name of the source document.
	AttrDocumentSource = "document.source"

	// AttrDocumentPages is the number of pages loaded from the document.
	AttrDocumentPages = "document.pages"

	// AttrPageNumber is the 1-based page number.
	AttrPageNumber = "page.number"

	// AttrPageChars is the length of the cleaned page text.
	AttrPageChars = "page.chars"

	// AttrPageRecords is the number of records extracted from the page.
	AttrPageRecords = "page.records"
)

// --- Run Attributes ---

const (
	// AttrRunID identifies one pipeline run.
	AttrRunID = "run.id"

	// AttrRunConcurrency is the number of pages processed in parallel.
	AttrRunConcurrency = "run.concurrency"

	// AttrRunPagesFailed is the number of pages whose extraction failed.
	AttrRunPagesFailed = "run.pages.failed"

	// AttrRunPagesIncomplete is the number of pages recovered from truncation.
	AttrRunPagesIncomplete = "run.pages.incomplete"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method.
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code.
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the request URL.
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes.
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes.
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- Retry Attributes ---

const (
	// AttrRetryAttempt is the 1-based attempt number.
	AttrRetryAttempt = "retry.attempt"

	// AttrRetryMaxAttempts is the configured attempt ceiling.
	AttrRetryMaxAttempts = "retry.max_attempts"

	// AttrRetryBackoff is the delay before the next attempt.
	AttrRetryBackoff = "retry.backoff"
)

// --- General Attributes ---

const (
	AttrError             = "error"
	AttrErrorType         = "error.type"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanClientComplete covers one completion request through the client.
	SpanClientComplete = "client.complete"

	// SpanPipelineRun covers a whole document run.
	SpanPipelineRun = "pipeline.run"

	// SpanPipelinePage covers prompt, completion and extraction for one page.
	SpanPipelinePage = "pipeline.page"
)

// --- Event Names ---

const (
	EventLLMRequestStart = "llm.request.start"
	EventLLMRequestEnd   = "llm.request.end"
	EventRetry           = "retry"
)

// --- Metric Names ---

const (
	// MetricExtractResults counts extraction results by status.
	MetricExtractResults = "docextract.extract.results"

	// MetricExtractInputSize records raw completion sizes in bytes.
	MetricExtractInputSize = "docextract.extract.input.size"

	// MetricClientRequestCount counts completion requests.
	MetricClientRequestCount = "docextract.client.request.count"

	// MetricClientRequestDuration records completion latency in seconds.
	MetricClientRequestDuration = "docextract.client.request.duration"

	// MetricClientTokensTotal counts tokens consumed by completions.
	MetricClientTokensTotal = "docextract.client.tokens.total"

	// MetricPipelinePages counts processed pages by extraction status.
	MetricPipelinePages = "docextract.pipeline.pages"

	// MetricPipelineRecords counts records extracted across pages.
	MetricPipelineRecords = "docextract.pipeline.records"
)
