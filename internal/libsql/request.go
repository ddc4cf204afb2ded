package libsql

// Stmt is the statement object shared by every request shape.
type Stmt struct {
	SQL      string  `json:"sql"`
	Args     []Value `json:"args"`
	WantRows bool    `json:"want_rows"`
}

// PipelineRequest is the /v2/pipeline body. Baton is always null: every
// call is a single-shot pipeline ending with a close step.
type PipelineRequest struct {
	Baton    *string `json:"baton"`
	Requests []any   `json:"requests"`
}

// ExecuteRequest is the legacy /v1/execute body.
type ExecuteRequest struct {
	Stmt Stmt `json:"stmt"`
}

// attempt is one request strategy: where to post and how to shape the body.
type attempt struct {
	name  string
	path  string
	build func(Stmt) any
}

// attempts lists the request strategies in the order they are tried.
var attempts = []attempt{
	{name: "pipeline", path: pipelinePath, build: keyedPipeline},
	{name: "pipeline-typed", path: pipelinePath, build: typedPipeline},
	{name: "execute", path: executePath, build: legacyExecute},
}

// keyedPipeline keys each step by its name:
//
//	{"baton":null,"requests":[{"execute":{"stmt":...}},{"close":{}}]}
func keyedPipeline(s Stmt) any {
	return PipelineRequest{
		Requests: []any{
			map[string]any{"execute": map[string]any{"stmt": s}},
			map[string]any{"close": map[string]any{}},
		},
	}
}

// typedPipeline tags each step with an explicit type discriminator:
//
//	{"baton":null,"requests":[{"type":"execute","stmt":...},{"type":"close"}]}
func typedPipeline(s Stmt) any {
	return PipelineRequest{
		Requests: []any{
			map[string]any{"type": "execute", "stmt": s},
			map[string]any{"type": "close"},
		},
	}
}

func legacyExecute(s Stmt) any {
	return ExecuteRequest{Stmt: s}
}
