package models

// ChatRequest is the payload coming from the frontend into POST /chat.
type ChatRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ChatResponse is what the chat handler returns to the frontend.
type ChatResponse struct {
	Reply string `json:"reply"`
}
