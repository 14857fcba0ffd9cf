package entity

// LLMGenerateRequest is the payload of the text generation service
type LLMGenerateRequest struct {
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Prompt       string  `json:"prompt"`
	Model        string  `json:"model,omitempty"`
	Temperature  float64 `json:"temperature"`
}

type LLMGenerateResponse struct {
	Text string `json:"text"`
}
