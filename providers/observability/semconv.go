package observability

// --- Pipeline Attributes ---

const (
	// AttrInvocationID identifies one process_url_with_llm call across its spans.
	AttrInvocationID = "invocation.id"

	// AttrTargetURL is the user-supplied page URL
	AttrTargetURL = "target.url"

	// AttrQuery is the optional focus query
	AttrQuery = "query"

	// AttrContentLength is the length of the extracted text
	AttrContentLength = "content.length"

	// AttrPromptLength is the length of the assembled prompt
	AttrPromptLength = "prompt.length"

	// AttrErrorKind is the pipeline failure classification
	AttrErrorKind = "error.kind"

	// AttrExtractMode is the extractor mode in use
	AttrExtractMode = "extract.mode"
)

// --- Inference Attributes ---

const (
	// AttrLLMModel is the model identifier (e.g., "deepseek-r1")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the inference endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMAttempt is the 1-based attempt number
	AttrLLMAttempt = "llm.attempt"

	// AttrLLMReplyKind is the normalised reply variant
	AttrLLMReplyKind = "llm.reply.kind"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General Attributes ---

const (
	AttrError             = "error"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	SpanProcess = "pipeline.process"
	SpanFetch   = "pipeline.fetch"
	SpanExtract = "pipeline.extract"
	SpanPrompt  = "pipeline.prompt"
	SpanInfer   = "pipeline.infer"
)
