package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// Request contains the parameters for a generation request.
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Response contains the result of a generation request.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// TrimTurns bounds a conversation to its last n turns, where one turn is a
// user message plus the assistant reply. n <= 0 leaves the history unbounded.
func TrimTurns(history []Message, n int) []Message {
	if n <= 0 || len(history) <= 2*n {
		return history
	}
	return history[len(history)-2*n:]
}
