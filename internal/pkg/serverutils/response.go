package serverutils

type Response[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Code:    "OK",
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code, message string) Response[any] {
	return Response[any]{
		Code:    code,
		Message: message,
	}
}
