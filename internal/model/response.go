package model

// Response is the uniform envelope every service operation returns.
// Services never surface raw errors to their callers; failures of any
// kind become Success=false with a human-readable message.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Total      *int64      `json:"total,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func OK(message string, data interface{}) *Response {
	return &Response{Success: true, Message: message, Data: data}
}

func OKList(message string, data interface{}, total int64, pagination *Pagination) *Response {
	return &Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Total:      &total,
		Pagination: pagination,
	}
}

func Fail(message string) *Response {
	return &Response{Success: false, Message: message}
}
