package step

// Path is the routing decision handed back to the hosting workflow.
type Path string

// Routing paths.
const (
	PathSuccess Path = "success"
	PathError   Path = "error"
)

// TraceType classifies a trace event.
type TraceType string

// Trace event kinds.
const (
	TraceDebug TraceType = "debug"
	TraceText  TraceType = "text"
)

// User-visible error messages.
const (
	MsgMissingAPIKey = "Please provide your Perplexity API key"
	MsgMissingPrompt = "No prompt provided"
	MsgNoAnswer      = "Unable to get an answer"
)

// Diagnostic trace messages for validation failures.
const (
	traceMissingAPIKey = "No Perplexity API key provided"
	traceMissingPrompt = "No prompt value"
)

// Result is the step's complete output. Every field is always serialized.
type Result struct {
	OutputVars OutputVars   `json:"outputVars"`
	Next       Next         `json:"next"`
	Trace      []TraceEvent `json:"trace"`
}

// OutputVars carries the typed output variables. Either Answer and Think, or
// Error, is populated; the others are empty strings.
type OutputVars struct {
	Error  string `json:"error"`
	Think  string `json:"think"`
	Answer string `json:"answer"`
}

// Next is the routing directive.
type Next struct {
	Path Path `json:"path"`
}

// TraceEvent is a diagnostic or informational record for the host's trace.
type TraceEvent struct {
	Type    TraceType    `json:"type"`
	Payload TracePayload `json:"payload"`
}

// TracePayload is the body of a TraceEvent.
type TracePayload struct {
	Message string `json:"message"`
}

// OK reports whether the result routes to the success path.
func (r Result) OK() bool { return r.Next.Path == PathSuccess }

func success(answer, think string) Result {
	return Result{
		OutputVars: OutputVars{Answer: answer, Think: think},
		Next:       Next{Path: PathSuccess},
		Trace:      []TraceEvent{{Type: TraceText, Payload: TracePayload{Message: answer}}},
	}
}

func failure(msg, trace string) Result {
	return Result{
		OutputVars: OutputVars{Error: msg},
		Next:       Next{Path: PathError},
		Trace:      []TraceEvent{{Type: TraceDebug, Payload: TracePayload{Message: trace}}},
	}
}
