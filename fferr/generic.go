package fferr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

const ENABLE_STACK_TRACE = true

func NewGenericError(err error) GenericError {
	msg := err.Error()
	return GenericError{
		msg:     msg,
		err:     eris.New(msg),
		cause:   err,
		details: map[string]string{},
	}
}

type GenericError struct {
	msg     string
	err     error
	cause   error
	details map[string]string
}

func (e *GenericError) Error() string {
	msg := e.msg
	if len(e.details) > 0 {
		msg = fmt.Sprintf("%s\n", msg)
	}
	keys := make([]string, 0, len(e.details))
	for key := range e.details {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		msg = fmt.Sprintf("%s%s: %s\n", msg, key, e.details[key])
	}
	return msg
}

func (e *GenericError) Stack() JSONStackTrace {
	return eris.ToJSON(e.err, ENABLE_STACK_TRACE)
}

func (e *GenericError) Details() map[string]string {
	return e.details
}

func (e *GenericError) AddDetail(key, value string) {
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ToLower(key)
	e.details[key] = value
}

func (e *GenericError) SetMessage(msg string) {
	e.msg = fmt.Sprintf("%s: %s", msg, e.msg)
}
