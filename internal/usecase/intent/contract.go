package intent

import "context"

// Interpreter is the language-understanding collaborator. It returns raw
// model output; the service never trusts it as already typed.
type Interpreter interface {
	Interpret(ctx context.Context, systemPrompt, userText string) (string, error)
}
