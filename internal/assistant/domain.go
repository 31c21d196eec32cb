package assistant

import (
	"fmt"
	"time"

	"partselect-chat/internal/domain"
)

const (
	// DefaultConversation is the memory used when a request carries no conversation id.
	DefaultConversation = "default"

	// historyWindow is how many remembered turns go into each prompt: three exchanges.
	historyWindow = 6
	// memoryCap is how many turns a conversation remembers.
	memoryCap = 10
	// contextDocuments is how many product documents are retrieved per query.
	contextDocuments = 1
	// completionTimeout bounds a shared model call once no caller is waiting on it.
	completionTimeout = 2 * time.Minute
)

// OutOfScopeAnswer is what the model is told to say about anything but appliance parts.
const OutOfScopeAnswer = "I specialize in dishwasher and refrigerator parts. How can I assist you with these appliances today?"

// SystemPrompt sets up the model as a PartSelect sales representative.
const SystemPrompt = `You are an expert sales representative for PartSelect, specializing in dishwasher and refrigerator parts. Your role is to:

1. Provide knowledgeable, friendly assistance on products and installations.
2. Demonstrate expertise in dishwasher and refrigerator parts and their functions.
3. Offer clear, concise explanations and step-by-step installation instructions.
4. Maintain a professional tone and prioritize customer needs.

Be concise and respond in bullet points wherever possible. If a query is unrelated to dishwashers, refrigerators, or general appliance concerns, respond:

"` + OutOfScopeAnswer + `"

Always aim to provide excellent customer service while effectively representing PartSelect.`

// Prompt is everything sent to the model for one reply.
type Prompt struct {
	System  string
	History []domain.Turn
	User    string
}

// Document is a piece of scraped product text used as context.
type Document struct {
	PartNumber string `json:"part_number"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	URL        string `json:"url"`
}

// userPrompt wraps the query with the retrieved context.
func userPrompt(context, query string) string {
	return fmt.Sprintf("Given the following context, please provide a helpful response to the user's query. Context: %s\n\nUser query: %s", context, query)
}
