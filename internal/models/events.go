package models

// Message types exchanged with the designer UI
const (
	EventProcessUserInput = "PROCESS_USER_INPUT"
	EventDesignResponse   = "DESIGN_RESPONSE"
	EventDesignProgress   = "DESIGN_PROGRESS"
	EventAskApproval      = "ASK_APPROVAL"
	EventApprovalResponse = "APPROVAL_RESPONSE"
)

// InboundEvent is any message the UI sends; fields are populated per Type
type InboundEvent struct {
	Type      string              `json:"type"`
	Input     string              `json:"input,omitempty"`
	Context   ConversationContext `json:"context"`
	RequestID string              `json:"requestId,omitempty"`
	Approved  bool                `json:"approved,omitempty"`
}

// DesignResponseEvent carries either the finished response or an error message
type DesignResponseEvent struct {
	Type     string          `json:"type"`
	Response *DesignResponse `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// DesignProgressEvent is a fire-and-forget progress note; Seq increases per session
type DesignProgressEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Seq     uint64 `json:"seq"`
}

// AskApprovalEvent asks the UI to approve one improvement suggestion
type AskApprovalEvent struct {
	Type       string                `json:"type"`
	RequestID  string                `json:"requestId"`
	Suggestion ImprovementSuggestion `json:"suggestion"`
}
