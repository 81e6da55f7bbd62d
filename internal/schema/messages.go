package schema

// Messages is the ordered list of messages exchanged with the completion
// provider. It owns typed append methods so callers never construct raw maps.
type Messages struct {
	Messages []Message
}

// NewMessages returns a Messages initialised with the given messages.
// Called with no arguments it returns an empty Messages ready for use.
func NewMessages(msgs ...Message) Messages {
	if len(msgs) == 0 {
		return Messages{Messages: make([]Message, 0)}
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Messages{Messages: out}
}

// AddSystem appends a system message.
func (mh *Messages) AddSystem(content string) {
	mh.Messages = append(mh.Messages, NewSystemMessage(content))
}

// AddUser appends a user message.
func (mh *Messages) AddUser(content string) {
	mh.Messages = append(mh.Messages, NewUserMessage(content))
}

// AddAssistant appends an assistant message with optional tool calls.
func (mh *Messages) AddAssistant(content string, toolCalls []ToolCall) {
	mh.Messages = append(mh.Messages, NewAssistantMessage(content, toolCalls))
}

// AddToolResult appends a tool-result message linked to its originating call.
func (mh *Messages) AddToolResult(toolCallID, result string) {
	mh.Messages = append(mh.Messages, NewToolResultMessage(toolCallID, result))
}

// HasRole reports whether any message carries the given role.
func (mh *Messages) HasRole(role string) bool {
	for _, m := range mh.Messages {
		if m.Role == role {
			return true
		}
	}
	return false
}

// Prepend returns a copy of mh with msg inserted at the front.
func (mh *Messages) Prepend(msg Message) Messages {
	out := make([]Message, 0, len(mh.Messages)+1)
	out = append(out, msg)
	out = append(out, mh.Messages...)
	return Messages{Messages: out}
}

// Clone returns a deep copy of mh with an independent backing slice.
func (mh *Messages) Clone() Messages {
	cloned := make([]Message, len(mh.Messages))
	copy(cloned, mh.Messages)
	return Messages{Messages: cloned}
}
