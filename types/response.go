package types

// ApiResponse is the envelope every endpoint answers with.
// Reason carries a machine-checkable code for failure outcomes so clients
// never have to parse the human-readable message.
type ApiResponse struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Reason  string      `json:"reason,omitempty"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
