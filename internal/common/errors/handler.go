// internal/common/errors/handler.go
package errors

// Logger is the subset of the logger package the handler needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler logs swallowed errors with standardized fields.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err and logs it. Degraded errors are warnings, everything
// else is an error. The normalized error is returned for further use.
func (h *ErrorHandler) Handle(source string, err error) *StandardError {
	stdErr := Normalize(err)
	if stdErr == nil {
		return nil
	}

	fields := Fields(stdErr)
	fields["source"] = source

	if stdErr.Category() == CategoryDegraded {
		h.logger.Warn("Degraded state", fields)
	} else {
		h.logger.Error("Client error", fields)
	}
	return stdErr
}

// Fields flattens a StandardError into log fields.
func Fields(stdErr *StandardError) map[string]interface{} {
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": string(stdErr.Category()),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"timestamp":     stdErr.Timestamp,
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	return fields
}
