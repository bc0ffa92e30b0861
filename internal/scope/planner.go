package scope

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const planSystemPrompt = `You are a meticulous preliminary legal analyst. Your job is to synthesize a user's conversation history and the facts parsed from their legal documents into a single, detailed, actionable research query. A subsequent research agent will use this query to perform a comprehensive risk analysis.

The user's role is the lessee (임차인), and the primary goal is to identify any potential risks related to their lease agreement and security deposit.

Guidelines for the research query:

1. Maximize specificity and detail. Phrase the query from the first-person perspective of the lessee. Incorporate all critical details extracted from the documents: names of the lessor and lessee, property address, security deposit amount, owner's name from the property registration, and the total secured debt (채권최고액).

2. Mandate critical cross-referencing. The query must explicitly instruct the next agent to compare information across the documents:
   - Ownership mismatch: compare the lessor in the lease agreement against the owner in the property registration.
   - Financial risk to the deposit: analyze the total secured debt relative to the security deposit.

3. Define a clear research scope. Instruct the researcher to scrutinize the special clauses (특약사항) for terms that are unusually restrictive or disadvantageous to the tenant.

4. Avoid unwarranted assumptions. Do not invent preferences or constraints the user never stated. If a critical fact is missing from the parsed data, instruct the next agent to proceed with caution and acknowledge the gap.

5. Structure the final query as a single coherent string: a main objective, then a bulleted list of the specific points to investigate.

Respond with a single valid JSON object with exactly one key, "research_brief", whose value is the query string.`

// PlanBrief synthesizes the conversation and parsed document facts into
// one standalone research brief. The brief must carry every detail the
// research stage needs: no other scope state travels with it.
func (s *Scoper) PlanBrief(ctx context.Context, conversation []string, facts []DocumentFact) (string, error) {
	user := fmt.Sprintf(`<Conversation_History>
%s
</Conversation_History>

<Parsed_Document_Data>
%s
</Parsed_Document_Data>

Today's date is %s.

Generate the single research query based on the provided data and the guidelines.`,
		renderConversation(conversation), renderDocuments(facts), todayStr())

	response, err := s.llm.Complete(ctx, planSystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("brief planning call: %w", err)
	}

	jsonStr, err := extractJSONObject(response)
	if err != nil {
		// The model answered in plain prose. The prose is the brief.
		brief := strings.TrimSpace(response)
		if brief == "" {
			return "", fmt.Errorf("empty brief response")
		}
		return brief, nil
	}

	var parsed struct {
		ResearchBrief string `json:"research_brief"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return "", fmt.Errorf("unmarshal brief: %w", err)
	}

	brief := strings.TrimSpace(parsed.ResearchBrief)
	if brief == "" {
		return "", fmt.Errorf("model returned an empty research brief")
	}

	return brief, nil
}
