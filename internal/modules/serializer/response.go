package serializer

import (
	"errors"
	"net/http"

	"github.com/buildvault/bimlibrary/internal/modules/service"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

// Response is the uniform JSON envelope for every endpoint.
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg,omitempty"`
	Error string      `json:"error,omitempty"`
	// StashKey is set only for persist failures; it lets the caller retry
	// persistence without re-uploading or re-translating.
	StashKey string `json:"stash_key,omitempty"`
}

const (
	CodeParamErr       = 40001
	CodeNotFound       = 40401
	CodeStorageErr     = 50201
	CodeTranslationErr = 50202
	CodePersistErr     = 50001
	CodeInternalErr    = 50000
)

// ParamErr builds a validation error response.
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "invalid request parameters"
	}
	return buildErr(CodeParamErr, msg, err)
}

// Err maps a service error to its envelope and HTTP status. The failure
// kinds stay distinguishable end to end: storage and translation faults are
// upstream (502), a persist fault carries its stash key for a targeted
// retry.
func Err(err error) (int, Response) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest, buildErr(CodeParamErr, "invalid request", err)
	case apperr.KindNotFound:
		return http.StatusNotFound, buildErr(CodeNotFound, "not found", err)
	case apperr.KindStorage:
		return http.StatusBadGateway, buildErr(CodeStorageErr, "blob storage failure", err)
	case apperr.KindTranslation:
		return http.StatusBadGateway, buildErr(CodeTranslationErr, "translation failure", err)
	case apperr.KindPersist:
		resp := buildErr(CodePersistErr, "catalog write failure", err)
		var pf *service.PersistFailure
		if errors.As(err, &pf) {
			resp.StashKey = pf.StashKey
		}
		return http.StatusInternalServerError, resp
	default:
		return http.StatusInternalServerError, buildErr(CodeInternalErr, "internal error", err)
	}
}

func buildErr(code int, msg string, err error) Response {
	resp := Response{Code: code, Msg: msg}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
