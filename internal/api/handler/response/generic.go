package response

type APIError struct {
	Message string `json:"message"`
}

type Result struct {
	Message string `json:"message"`
}
