package content

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"zkl/internal/apperr"
)

// ReadUpload returns the first file part of an add request, reading at
// most limit bytes.
func ReadUpload(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidInput, "add needs a multipart body", err)
	}
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, apperr.InvalidInput("add body has no file part")
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInvalidInput, "read add body", err)
		}
		if isDirectory(p) {
			continue
		}
		data, err := io.ReadAll(p)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInvalidInput, "read add body", err)
		}
		return data, nil
	}
}

func isDirectory(p *multipart.Part) bool {
	return p.Header.Get("Content-Type") == "application/x-directory"
}

// WriteError reports err as a node error body.
func WriteError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, ErrNormal
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound:
		code = ErrNotFound
	case apperr.CodeInvalidInput:
		status, code = http.StatusBadRequest, ErrClient
	}
	WriteJSON(w, status, NodeError{Message: err.Error(), Code: code, Type: "error"})
}

// WriteJSON writes v with the content type the node API uses.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
