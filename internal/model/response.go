package model

// Response is a generic struct for API responses
type Response struct {
	Data    any     `json:"data,omitempty"`
	Error   *string `json:"error,omitempty"`
	Message string  `json:"message"`
}

func SuccessResponse(data any) Response {
	return Response{Data: data, Message: "Success"}
}

func ErrorResponse(errMsg, message string) Response {
	return Response{Error: &errMsg, Message: message}
}
