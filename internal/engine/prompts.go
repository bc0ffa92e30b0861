package engine

import (
	"fmt"
	"time"

	"github.com/jpark-labs/lexscout/internal/llm"
)

// Supervisor-side tool names. These are handled by the supervisor itself
// and never enter the worker tool registry.
const (
	conductResearchToolName  = "ConductResearch"
	researchCompleteToolName = "ResearchComplete"
	thinkToolName            = "think_tool"
)

func todayStr() string {
	return time.Now().Format("Mon Jan 2, 2006")
}

const supervisorPromptTemplate = `You are a research supervisor for a legal deep-research service. Your job is to conduct research by calling the "ConductResearch" tool. For context, today's date is %s.

<Task>
Call "ConductResearch" to delegate research against the overall research brief passed in by the user. When you are completely satisfied with the findings returned from the tool calls, call "ResearchComplete" to indicate that you are done.
</Task>

<Available Tools>
1. **ConductResearch**: Delegate a research topic to a specialized sub-agent
2. **ResearchComplete**: Indicate that research is complete
3. **think_tool**: Record a reflection to plan your approach or assess progress

Use think_tool before ConductResearch to plan, and after each round to assess progress. When the brief has multiple independent sub-topics, make multiple ConductResearch calls in a single response so they run in parallel. Use at most %d parallel agents per round.
</Available Tools>

<Instructions>
Think like a research manager with limited time and resources:
1. Read the brief carefully - what specific information is needed?
2. Decide how to delegate - are there independent directions to explore simultaneously?
3. After each round, pause and assess - is anything still missing?
</Instructions>

<Hard Limits>
- Bias towards a single agent unless the brief clearly parallelizes
- Stop when you can answer confidently; do not delegate for perfection
- You have at most %d decision turns in total
</Hard Limits>

<Important Reminders>
- Each ConductResearch call spawns a dedicated agent for that topic only
- Sub-agents cannot see the brief, your reflections, or each other's work: every topic must be a complete standalone assignment
- A separate writer produces the final report; you only gather findings
- Do not use acronyms or abbreviations in research topics
</Important Reminders>`

func supervisorSystemPrompt(maxWorkers, maxIterations int) string {
	return fmt.Sprintf(supervisorPromptTemplate, todayStr(), maxWorkers, maxIterations)
}

// supervisorToolSpecs is the fixed supervisor-side tool set.
func supervisorToolSpecs(maxWorkers int) []llm.ToolSpec {
	return []llm.ToolSpec{
		{
			Name: conductResearchToolName,
			Description: fmt.Sprintf("Delegate a research topic to a specialized sub-agent. "+
				"Provide complete standalone instructions; the sub-agent sees nothing else. "+
				"At most %d calls are executed per round.", maxWorkers),
			Properties: map[string]interface{}{
				"research_topic": map[string]interface{}{
					"type": "string",
					"description": "The self-contained topic to research. Should be a single topic " +
						"described in high detail (at least a paragraph).",
				},
				"instructions": map[string]interface{}{
					"type":        "string",
					"description": "Optional scope hints: sources to prefer, aspects to skip",
				},
			},
			Required: []string{"research_topic"},
		},
		{
			Name:        researchCompleteToolName,
			Description: "Indicate that research is complete and findings are sufficient.",
			Properties:  map[string]interface{}{},
		},
		{
			Name:        thinkToolName,
			Description: "Record a strategic reflection on research progress and planned next steps.",
			Properties: map[string]interface{}{
				"reflection": map[string]interface{}{
					"type":        "string",
					"description": "Your analysis and plan",
				},
			},
			Required: []string{"reflection"},
		},
	}
}

const workerPromptTemplate = `You are a research assistant conducting research on the assigned topic for a legal deep-research service. For context, today's date is %s.

<Task>
Use the provided tools to gather information about the assigned research topic. You can call tools in series or in parallel; your research runs in a tool-calling loop.
</Task>

<Available Tools>
1. **case_law_search**: find relevant court precedents (glaw.scourt.go.kr)
2. **statute_search**: look up specific laws and articles (law.go.kr)
3. **web_search**: general background information
4. **verify_identity_assumptions**: compare lessor and owner names for fraud risk
5. **think_tool**: reflect on results and plan next steps

Use think_tool after each search to reflect on results and plan the next step.
</Available Tools>

<Hard Limits>
- Simple topics: 2-3 search tool calls maximum
- Complex topics: up to %d tool calls maximum; the loop ends there regardless
- Stop immediately when you can answer comprehensively, when you have 3 or more relevant sources, or when your last two searches returned similar information
</Hard Limits>`

func workerSystemPrompt(toolBudget int) string {
	return fmt.Sprintf(workerPromptTemplate, todayStr(), toolBudget)
}

const compressSystemTemplate = `You are a meticulous paralegal research assistant that has conducted research on a topic by calling several tools and web searches. Your job is now to clean up the findings, preserving all of the relevant statements and information that the researcher gathered. For context, today's date is %s.

<Task>
Clean up the information gathered from tool calls and web searches in the messages above. All relevant information should be repeated verbatim, just in a cleaner format. Remove only obviously irrelevant or duplicate material.
</Task>

<Tool Call Filtering>
- Include: all results from web_search, statute_search, case_law_search, and verify_identity_assumptions. These constitute the evidence.
- Exclude: think_tool calls and responses. These are internal reflections for decision-making and must not appear in the findings.
</Tool Call Filtering>

<Guidelines>
1. The output must include ALL information and sources the researcher gathered. Repeat key information verbatim.
2. The report can be as long as necessary to carry all the information.
3. Use inline citations for each source.
4. End with a "### Sources" section listing every source with its citation number.
5. Do not lose any sources; a later step merges this report with others.
</Guidelines>

<Citation Rules>
- Assign each unique URL a single citation number in your text
- Number sources sequentially without gaps (1,2,3,4...) in the final list
- Format: [1] Source Title: URL
</Citation Rules>`

func compressSystemPrompt() string {
	return fmt.Sprintf(compressSystemTemplate, todayStr())
}

const compressHumanTemplate = `All above messages are about research conducted for the following research topic:

RESEARCH TOPIC: %s

Clean up these research findings while preserving ALL information relevant to this topic. Do not summarize or paraphrase; preserve details, facts, names, and numbers verbatim. Include all sources and citations found during research. The cleaned findings feed final report generation, so comprehensiveness is critical.`

func compressHumanPrompt(topic string) string {
	return fmt.Sprintf(compressHumanTemplate, topic)
}
