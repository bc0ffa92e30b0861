package scope

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ClarifyDecision is the outcome of the clarification gate. Exactly one of
// Question or Verification is set: Question when more input is needed,
// Verification when the review can start.
type ClarifyDecision struct {
	NeedClarification bool   `json:"need_clarification"`
	Question          string `json:"question"`
	Verification      string `json:"verification"`
}

const clarifySystemPrompt = `You are the intake gate of a legal review workflow for Korean housing lease contracts. Your goal is to determine if you have sufficient information to proceed.

You must check for two pieces of information. BOTH must be present to proceed.

1. Role check: has the user clearly identified their role as lessor (임대인) or lessee (임차인) in the conversation?
2. Document check: does the documents block contain at least one entry?

If BOTH checks pass, set "need_clarification" to false. If EITHER fails, set "need_clarification" to true.

Respond with a single valid JSON object with exactly these keys: "need_clarification", "question", "verification".

When "need_clarification" is true:
- "question" asks the user, in Korean, to state their role (임차인 or 임대인) and to upload the documents under review (lease agreement, property registration).
- "verification" is "".

When "need_clarification" is false:
- "question" is "".
- "verification" confirms, in Korean, the user's extracted role and that the review of the submitted documents is starting.`

// Clarify decides whether the conversation and documents are sufficient to
// start the review. On malformed model output it fails closed: ask again.
func (s *Scoper) Clarify(ctx context.Context, conversation []string, documents []string) (*ClarifyDecision, error) {
	docs := "(no documents)"
	if len(documents) > 0 {
		docs = strings.Join(documents, "\n")
	}

	user := fmt.Sprintf(`<Messages>
%s
</Messages>

<Documents>
%s
</Documents>

Today's date is %s.`, renderConversation(conversation), docs, todayStr())

	response, err := s.llm.Complete(ctx, clarifySystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("clarification call: %w", err)
	}

	jsonStr, err := extractJSONObject(response)
	if err != nil {
		return nil, fmt.Errorf("clarification response: %w", err)
	}

	decision := &ClarifyDecision{}
	if err := json.Unmarshal([]byte(jsonStr), decision); err != nil {
		return nil, fmt.Errorf("unmarshal clarification: %w", err)
	}

	if decision.NeedClarification && decision.Question == "" {
		return nil, fmt.Errorf("clarification requested without a question")
	}
	if !decision.NeedClarification && decision.Verification == "" {
		return nil, fmt.Errorf("verification message missing")
	}

	return decision, nil
}
