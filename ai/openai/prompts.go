package openai

import "fmt"

const groundednessResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "score": {
      "type": "integer",
      "minimum": 0,
      "maximum": 10
    },
    "reasoning": {
      "type": "string"
    }
  },
  "required": ["score", "reasoning"],
  "additionalProperties": false
}`

const groundednessPromptTemplate = `You are a strict evaluator. Judge how well an answer is grounded in the
provided context passages, and return your judgment as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Score is an integer from 0 (entirely unsupported) to 10 (every claim traceable to the context).
- A claim counts as grounded only if the context states it or directly implies it. Do not credit the answer for facts that are true but absent from the context.
- Penalize fabricated citations, invented numbers, and statements that contradict the context.
- An answer that correctly says the context does not contain the information deserves a high score.
- Reasoning must be one or two sentences naming the specific supported or unsupported claims.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Context: "[1] report.pdf (page 2)\nRevenue grew 12%% in fiscal 2024."
Question: "How much did revenue grow?"
Answer: "Revenue grew 12%% in fiscal 2024."
Output:
{
  "score": 10,
  "reasoning": "The growth figure is stated verbatim in the context."
}

Example:
Context: "[1] report.pdf (page 2)\nRevenue grew 12%% in fiscal 2024."
Question: "How much did revenue grow?"
Answer: "Revenue grew 25%% thanks to the new product line."
Output:
{
  "score": 1,
  "reasoning": "The answer's growth figure contradicts the context and the product line is never mentioned."
}`

const answerPromptTemplate = `Answer the user's question using ONLY the context passages below. Each passage
is tagged with its source file and page. If the context does not contain the
information needed, say so plainly instead of guessing.

%s

Context:
%s`

// buildScoringPrompt creates the system prompt for the groundedness judge.
func buildScoringPrompt() string {
	return fmt.Sprintf(groundednessPromptTemplate, groundednessResponseSchema)
}

// buildScoringInput renders the judged triple as a single user message.
func buildScoringInput(query, answer, context string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer: %s", context, query, answer)
}

// buildAnswerPrompt creates the system prompt for answer generation,
// embedding the caller's query-shaping instructions and the serialized
// evidence.
func buildAnswerPrompt(instructions, context string) string {
	return fmt.Sprintf(answerPromptTemplate, instructions, context)
}
