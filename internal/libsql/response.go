package libsql

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/ideaboard/internal/dbx"
)

// shapeMatcher decodes one response shape. It either handles the payload
// (ok == true, possibly with an error) or declines it.
type shapeMatcher func(payload map[string]any) (res *dbx.Result, ok bool, err error)

// shapes are tried in priority order.
var shapes = []shapeMatcher{
	pipelineShape,
	flatShape,
	errorShape,
}

// normalizeResponse decodes a response body into a Result. Unrecognised
// payloads yield an empty result.
func normalizeResponse(body []byte) (*dbx.Result, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return &dbx.Result{Rows: []dbx.Row{}}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	payload, isObject := decoded.(map[string]any)
	if !isObject {
		return &dbx.Result{Rows: []dbx.Row{}}, nil
	}

	for _, match := range shapes {
		res, ok, err := match(payload)
		if err != nil {
			return nil, err
		}
		if ok {
			return res, nil
		}
	}
	return &dbx.Result{Rows: []dbx.Row{}}, nil
}

// pipelineShape handles {"results":[{"type":"ok","response":{...}}, ...]}.
// Any failed step aborts the whole call.
func pipelineShape(payload map[string]any) (*dbx.Result, bool, error) {
	results, ok := payload["results"].([]any)
	if !ok {
		return nil, false, nil
	}

	for _, r := range results {
		step, _ := r.(map[string]any)
		if e := step["error"]; e != nil {
			return nil, true, statementErrorFrom(e)
		}
		resp, _ := step["response"].(map[string]any)
		if e := firstNonNil(resp["error"], resp["err"]); e != nil {
			return nil, true, statementErrorFrom(e)
		}
	}

	if len(results) == 0 {
		return &dbx.Result{Rows: []dbx.Row{}}, true, nil
	}

	first, _ := results[0].(map[string]any)
	resp, _ := first["response"].(map[string]any)
	okResp, _ := resp["ok"].(map[string]any)
	table, _ := firstNonNil(okResp["result"], resp["result"]).(map[string]any)

	return tableResult(table), true, nil
}

// flatShape handles the legacy {"columns":[...],"rows":[...]} payload.
func flatShape(payload map[string]any) (*dbx.Result, bool, error) {
	if payload["columns"] == nil || payload["rows"] == nil {
		return nil, false, nil
	}
	return tableResult(payload), true, nil
}

// errorShape handles {"error": "..."} and {"error": {"message": ...}}.
func errorShape(payload map[string]any) (*dbx.Result, bool, error) {
	e := payload["error"]
	if e == nil {
		return nil, false, nil
	}
	return nil, true, statementErrorFrom(e)
}

// tableResult zips row arrays against the column list.
func tableResult(table map[string]any) *dbx.Result {
	res := &dbx.Result{Rows: []dbx.Row{}}
	if table == nil {
		return res
	}

	rawCols, _ := firstNonNil(table["columns"], table["cols"]).([]any)
	cols := make([]string, len(rawCols))
	for i, c := range rawCols {
		cols[i] = columnName(i, c)
	}

	rawRows, _ := table["rows"].([]any)
	for _, rr := range rawRows {
		cells, _ := rr.([]any)
		row := make(dbx.Row, len(cols))
		for i, name := range cols {
			var v any
			if i < len(cells) {
				v = unwrapValue(cells[i])
			}
			row[name] = v
		}
		res.Rows = append(res.Rows, row)
	}

	if n, ok := asInt(table["affected_row_count"]); ok {
		res.AffectedRows = n
	}
	if id, ok := asInt(table["last_insert_rowid"]); ok {
		res.LastInsertRowID = &id
	}
	return res
}

// columnName accepts bare strings and {"name": ...} objects. Unnamed
// columns get a positional name.
func columnName(i int, c any) string {
	switch x := c.(type) {
	case string:
		return x
	case map[string]any:
		if name, ok := x["name"].(string); ok {
			return name
		}
	}
	return fmt.Sprintf("column%d", i)
}

func firstNonNil(vs ...any) any {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}
