package event

// Status is the response kind produced by the dispatch core.
type Status int

const (
	// StatusOK is a successful dispatch with a JSON body.
	StatusOK Status = iota
	// StatusBadRequest is a validation or security rejection with a
	// human-readable message.
	StatusBadRequest
	// StatusMethodNotAllowed rejects an unsupported HTTP verb.
	StatusMethodNotAllowed
)

// Response is the tagged result of dispatching one event. Success carries a
// JSON body; rejections carry a plain-text message.
type Response struct {
	status  Status
	body    map[string]any
	message string
}

// OK returns a Success response with an empty JSON body.
func OK() Response {
	return Response{status: StatusOK, body: map[string]any{}}
}

// OKBody returns a Success response carrying the given JSON body.
func OKBody(body map[string]any) Response {
	if body == nil {
		body = map[string]any{}
	}
	return Response{status: StatusOK, body: body}
}

// Reject returns a BadRequest response with the given message.
func Reject(message string) Response {
	return Response{status: StatusBadRequest, message: message}
}

// RejectMethod returns a MethodNotAllowed response with the given message.
func RejectMethod(message string) Response {
	return Response{status: StatusMethodNotAllowed, message: message}
}

// Status returns the response kind.
func (r Response) Status() Status { return r.status }

// Body returns the JSON body of a Success response, nil otherwise.
func (r Response) Body() map[string]any { return r.body }

// Message returns the rejection message, "" for Success.
func (r Response) Message() string { return r.message }

// IsSuccess reports whether the response is a Success.
func (r Response) IsSuccess() bool { return r.status == StatusOK }
