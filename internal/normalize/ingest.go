package normalize

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/gm-tools/gmtools/internal/backend"
)

// ErrEmptyResult means the backend accepted the request but found nothing
// to work on.
var ErrEmptyResult = errors.New("no documents found")

// zeroFiles matches "0 files" as a whole count, so "10 files" does not match.
// The backend offers no structured status, so this text match is the contract.
var zeroFiles = regexp.MustCompile(`(?i)(^|[^0-9])0 (files|archivos|documents|documentos)\b`)

// IngestAck normalizes the ingestion submission response. It returns
// ErrEmptyResult when the backend reports that no files matched, either
// through files_found: 0 or through the message text. Unparseable bodies are
// accepted with an empty message.
func IngestAck(raw []byte) (backend.IngestAck, error) {
	var ack backend.IngestAck

	m := object(raw)
	if m == nil {
		return ack, nil
	}
	ack.Message = fieldStr(m, "message", "mensaje")
	if n, ok := fieldNum(m, "files_found", "archivos"); ok {
		count := int(math.Max(0, math.Min(n, math.MaxInt32)))
		ack.FilesFound = &count
		if count == 0 {
			return ack, ErrEmptyResult
		}
	}
	if IsEmptyMessage(ack.Message) {
		return ack, ErrEmptyResult
	}
	return ack, nil
}

// IsEmptyMessage reports whether msg announces a zero-file result.
func IsEmptyMessage(msg string) bool {
	return zeroFiles.MatchString(strings.TrimSpace(msg))
}

// Progress normalizes a progress response. Progress may arrive as a number or
// a numeric string; done as a bool, "true"/"false" or 0/1. A body that is not a
// JSON object is an error so the poller can skip the tick.
func Progress(raw []byte) (backend.ProgressStatus, error) {
	var st backend.ProgressStatus

	m := object(raw)
	if m == nil {
		return st, errors.New("progress response is not a JSON object")
	}
	if p, ok := fieldNum(m, "progress", "progreso"); ok {
		// Clamp before converting; out-of-range float to int conversion is undefined.
		st.Progress = int(math.Max(0, math.Min(100, p)))
	}
	if v, ok := lookup(m, "done", "listo"); ok {
		if b, ok := boolean(v); ok {
			st.Done = b
		}
	}
	st.Error = fieldStr(m, "error")
	return st, nil
}
