// Package apperr defines the failure kinds the BIM library distinguishes.
// Callers branch on Kind, never on error strings: a StorageError means the
// whole pipeline is safely re-runnable, a TranslationError means the stored
// blob is an acceptable orphan, a PersistError means blob and translation
// handle are already consumed and only persistence should be retried.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindStorage
	KindTranslation
	KindPersist
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindTranslation:
		return "translation"
	case KindPersist:
		return "persist"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes two apperr values match on Kind, so
// errors.Is(err, apperr.NotFound("")) works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, msg string, cause ...error) *Error {
	e := &Error{Kind: kind, Msg: msg}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

func Validation(msg string, cause ...error) *Error {
	return newError(KindValidation, msg, cause...)
}

func NotFound(msg string, cause ...error) *Error {
	return newError(KindNotFound, msg, cause...)
}

func Storage(msg string, cause ...error) *Error {
	return newError(KindStorage, msg, cause...)
}

func Translation(msg string, cause ...error) *Error {
	return newError(KindTranslation, msg, cause...)
}

func Persist(msg string, cause ...error) *Error {
	return newError(KindPersist, msg, cause...)
}

func Internal(msg string, cause ...error) *Error {
	return newError(KindInternal, msg, cause...)
}

// KindOf extracts the failure kind from any error in the chain,
// defaulting to KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
