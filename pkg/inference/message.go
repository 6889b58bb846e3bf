package inference

// Role is the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool" // the result of one ToolCall
)

// Message is one entry in the conversation history.
type Message struct {
	Role    Role
	Content string

	// Name is the function name on RoleTool messages.
	Name string

	// ToolCalls is set on assistant messages that request tools.
	ToolCalls []ToolCall

	// ToolCallID links a RoleTool message to the call it answers.
	ToolCallID string
}

// HasToolCalls reports whether m asks for at least one tool.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// ToolCall is a function invocation requested by the model. Arguments is
// the raw JSON object the model produced.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Tool advertises one function to the model.
type Tool struct {
	Type     string // always "function"
	Function ToolFunction
}

// ToolFunction is the name, description and JSON Schema of a tool.
type ToolFunction struct {
	Name        string
	Description string
	Parameters  map[string]any
}

func NewSystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }
func NewUserMessage(content string) Message { return Message{Role: RoleUser, Content: content} }
func NewAssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// NewToolCallMessage is an assistant turn that requests calls.
func NewToolCallMessage(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// NewToolMessage answers the call with id toolCallID.
func NewToolMessage(toolCallID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, Name: name, ToolCallID: toolCallID}
}

// NewTool declares a function tool.
func NewTool(name, description string, parameters map[string]any) Tool {
	return Tool{
		Type:     "function",
		Function: ToolFunction{Name: name, Description: description, Parameters: parameters},
	}
}
