package types

// ProcessTextRequest is the JSON body accepted by POST /api/process-text.
type ProcessTextRequest struct {
	Text           string `json:"text"`
	Type           string `json:"type"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

// ProcessTextResponse is the JSON body returned by POST /api/process-text.
type ProcessTextResponse struct {
	Success       bool   `json:"success"`
	ProcessedText string `json:"processedText,omitempty"`
	Error         string `json:"error,omitempty"`
	Details       string `json:"details,omitempty"` // only populated in diagnostics mode
}

// UploadResponse is the JSON body returned by POST /api/upload-file.
type UploadResponse struct {
	Text     string `json:"text,omitempty"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
	Details  string `json:"details,omitempty"`
}

// PromptTestResponse is returned by the diagnostics prompt self-test.
type PromptTestResponse struct {
	Rewrite  string `json:"rewrite"`
	Response string `json:"response"`
}
