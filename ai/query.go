package ai

import (
	"context"
	"strconv"
	"strings"

	"github.com/DachengChen/paiData/data"
)

// Query is one question about a dataset.
type Query struct {
	Question string
	Dataset  *data.Dataset
	Prior    []Message // earlier turns, oldest first
	Prompt   PromptOptions
}

// Messages assembles the request: the dataset context as a leading user
// message, then the prior turns, then the question.
func (q Query) Messages() []Message {
	msgs := make([]Message, 0, len(q.Prior)+2)
	msgs = append(msgs, Message{Role: RoleUser, Content: BuildSystemPrompt(q.Dataset, q.Prompt)})
	msgs = append(msgs, q.Prior...)
	msgs = append(msgs, Message{Role: RoleUser, Content: q.Question})
	return msgs
}

// StreamQuery asks p about the dataset and streams the answer to onDelta.
// Errors are always *QueryError. The call has no timeout of its own;
// cancel ctx to bound it.
func StreamQuery(ctx context.Context, p Provider, q Query, onDelta func(string)) error {
	messages := q.Messages()
	LogAIRequest("StreamQuery", p.Name(), map[string]string{
		"Question": q.Question,
		"Dataset":  datasetName(q.Dataset),
		"Messages": strconv.Itoa(len(messages)),
	})

	var answer strings.Builder
	err := p.StreamChat(ctx, messages, func(delta string) {
		answer.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	})
	LogAIResponse("StreamQuery", answer.String(), err)

	if err != nil {
		return asQueryError(err)
	}
	return nil
}

func datasetName(ds *data.Dataset) string {
	if ds == nil {
		return "(none)"
	}
	return ds.Name
}
