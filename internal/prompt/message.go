// Package prompt linearizes a conversation into the single prompt string a
// text-completion inference endpoint consumes.
package prompt

// Role identifies the author of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one turn of a conversation.
type Message struct {
	Role         Role   `json:"role"`
	Content      string `json:"content"`
	IsStructured bool   `json:"is_structured"`
}
