package aigen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paperforge/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// GeneratedSourceRef marks AI-generated questions whose provenance is a
// web search rather than a concrete document.
const GeneratedSourceRef = "Google Search"

const topicPromptTemplate = `Role: Senior Professor at IIT/IISc setting the HARDEST section of the GATE/NET Exam for %s.
Topic: "%s"

Objective: Create 8-12 HIGH-COMPLEXITY, TIME-CONSUMING questions.

STRICT DIFFICULTY RULES (Non-negotiable):
1. **NO DIRECT RECALL**: If a question can be answered in 10 seconds, REJECT IT.
2. **MULTI-STEP LOGIC**: Every question must require at least 2 distinct logical steps or formulas to solve.
3. **NUMERICAL INTENSITY (NAT)**: Create problems involving integration, differential equations, or complex circuit/system analysis. Inputs should not be simple integers. Answer must require calculation, not guessing.
4. **CONCEPTUAL TRAPS**: For MCQs, options must represent common calculation errors or conceptual misunderstandings.
5. **LENGTH**: Problem statements should be detailed (3-5 sentences), setting up a specific scenario.

REQUIRED MIX:
- 40%% Numerical Answer Type (NAT) - Hardest difficulty.
- 30%% MSQ (Multiple Select) - Testing comprehensive theory depth.
- 30%% MCQ - Application/Analysis based (Match the following, Assertion-Reasoning).

FORMATTING (CRITICAL):
- Use LaTeX ($$...$$) for ALL mathematical notation.
- You are outputting JSON. Double-escape backslashes.
- If a question requires a diagram, provide a relevant generic URL or leave imageUrl blank.

DOMAIN ENFORCEMENT:
- Strictly adhere to the %s syllabus.
- If the topic is generic, frame the question in the context of %s.

Output strictly as a JSON array of objects with keys:
"type" ("MCQ"|"MSQ"|"NAT"), "question", "a", "b", "c", "d", "answer", "explanation", "imageUrl".`

const planPromptTemplate = `List the top 10 most complex, high-difficulty topics for the "%s" competitive exam (GATE/NET). Return ONLY a JSON array of strings.`

// llmTopicPlanner implements domain.TopicPlanner.
type llmTopicPlanner struct {
	llm    LLM
	logger *zap.Logger
}

func NewLLMTopicPlanner(llm LLM, logger *zap.Logger) domain.TopicPlanner {
	return &llmTopicPlanner{llm: llm, logger: logger}
}

func (p *llmTopicPlanner) PlanTopics(ctx context.Context, stream string) ([]string, error) {
	response, err := p.llm.Call(ctx, fmt.Sprintf(planPromptTemplate, stream), llms.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("topic planning call failed: %w", err)
	}

	jsonStr, err := extractJSONArray(response)
	if err != nil {
		return nil, fmt.Errorf("topic planning returned no list: %w", err)
	}

	var topics []string
	if err := json.Unmarshal([]byte(jsonStr), &topics); err != nil {
		return nil, fmt.Errorf("topic planning returned invalid JSON: %w", err)
	}

	out := topics[:0]
	for _, t := range topics {
		if strings.TrimSpace(t) != "" {
			out = append(out, strings.TrimSpace(t))
		}
	}
	p.logger.Info("Planned topics", zap.String("stream", stream), zap.Int("count", len(out)))
	return out, nil
}

// llmTopicGenerator implements domain.TopicGenerator.
type llmTopicGenerator struct {
	llm    LLM
	logger *zap.Logger
}

func NewLLMTopicGenerator(llm LLM, logger *zap.Logger) domain.TopicGenerator {
	return &llmTopicGenerator{llm: llm, logger: logger}
}

// GenerateForTopic synthesizes hard exam questions for one topic, tagging
// each with the stream, topic and generated provenance.
func (g *llmTopicGenerator) GenerateForTopic(ctx context.Context, topic, stream string) ([]domain.Question, error) {
	prompt := fmt.Sprintf(topicPromptTemplate, stream, topic, stream, stream)

	response, err := g.llm.Call(ctx, prompt, llms.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("generation call failed for topic %q: %w", topic, err)
	}

	jsonStr, err := extractJSONArray(response)
	if err != nil {
		return nil, fmt.Errorf("generation returned no questions for topic %q: %w", topic, err)
	}

	var items []rawQuestion
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		return nil, fmt.Errorf("generation returned invalid JSON for topic %q: %w", topic, err)
	}

	// Topic labels often arrive prefixed with the stream name; store the
	// bare topic.
	bareTopic := strings.TrimSpace(strings.ReplaceAll(topic, stream, ""))
	if bareTopic == "" {
		bareTopic = topic
	}

	questions := make([]domain.Question, 0, len(items))
	for _, item := range items {
		q := mapRawQuestion(item)
		q.Stream = stream
		q.Topic = bareTopic
		q.SourceType = domain.SourceWeb
		q.SourceName = "AI: " + topic
		q.SourceRef = GeneratedSourceRef
		questions = append(questions, q)
	}

	g.logger.Info("Generated questions for topic",
		zap.String("stream", stream),
		zap.String("topic", topic),
		zap.Int("count", len(questions)))
	return questions, nil
}
