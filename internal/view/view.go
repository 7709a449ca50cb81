package view

// Response is the envelope every handler returns.
type Response[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorResponse documents the error shape for swagger.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func CreateResponse[T any](data T, err error, traceID, message string) Response[T] {
	resp := Response[T]{
		Data:    data,
		Message: message,
		TraceID: traceID,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
