package response

import "shopsphere/domain"

// Envelope is the uniform JSON body for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func OK(status int, data interface{}) Envelope {
	return Envelope{Success: true, Status: status, Data: data}
}

// Paginated wraps a list payload with its pagination metadata.
func Paginated(status int, items interface{}, meta domain.PageMeta) Envelope {
	return Envelope{Success: true, Status: status, Data: items, Meta: meta}
}

func Error(status int, code, message string, details interface{}) Envelope {
	return Envelope{
		Success: false,
		Status:  status,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	}
}
