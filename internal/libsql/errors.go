package libsql

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/ideaboard/internal/common"
)

// StatusError is returned when the final request attempt got a non-2xx
// response. It matches common.ErrNetwork.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("libsql %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == common.ErrNetwork
}

// StatementError is an error reported by the server for the statement
// itself (syntax, constraint, auth on the database side...).
type StatementError struct {
	Message string
	Code    string
}

func (e *StatementError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// statementErrorFrom builds a StatementError from a decoded JSON error
// field, which may be a bare string or an object.
func statementErrorFrom(v any) *StatementError {
	switch e := v.(type) {
	case string:
		return &StatementError{Message: e}
	case map[string]any:
		msg, _ := e["message"].(string)
		code, _ := e["code"].(string)
		if msg == "" {
			raw, _ := json.Marshal(e)
			msg = string(raw)
		}
		return &StatementError{Message: msg, Code: code}
	default:
		raw, _ := json.Marshal(e)
		return &StatementError{Message: string(raw)}
	}
}
