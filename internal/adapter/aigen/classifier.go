package aigen

import (
	"context"
	"encoding/json"
	"fmt"

	"paperforge/internal/domain"
	"paperforge/internal/util"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const cleaningSystemInstruction = `You are a High-Performance Educational Content Extraction Engine.
Your goal is to extract MAXIMAL VALID QUESTIONS from the provided text.

INPUT: Raw, messy text from PDFs (exam papers, coaching material).
OUTPUT: A clean JSON array of questions.

CLASSIFICATION RULES:
1. **MCQ**: Standard Multiple Choice (4 options). One correct answer.
2. **MSQ**: Multiple Select Question (4 options). One OR MORE correct answers.
3. **NAT**: Numerical Answer Type. A question asking for a number/value. NO OPTIONS provided.

EXTRACTION RULES:
1. **AGGRESSIVE EXTRACTION**: Do not drop a question just because it has minor formatting issues. Fix grammar.
2. **NAT Handling**: If a question has NO options but asks for a value/calculation, classify as 'NAT'. Set options a,b,c,d to empty strings.
3. **Answers & Explanations**: actively search for the Answer Key or Explanations in the text (often marked with "Ans:", "Key:", "Sol:"). If found, fill 'answer' and 'explanation'. If NOT found, leave them empty. DO NOT HALLUCINATE ANSWERS.
4. **Junk Removal**: Remove "Join Telegram", headers, footers, watermarks.
5. **Option Cleaning**: Remove "a)", "A.", "1." prefixes from option text.
6. **QUALITY FILTER**: DROP questions that are trivial, incomplete, or elementary level. Keep only exam-relevant content.

FORMATTING RULES (CRITICAL):
1. Identify ALL mathematical expressions, formulas, and variables.
2. Convert all math into LaTeX syntax enclosed in double dollar signs $$...$$.
3. You are outputting a JSON string. YOU MUST DOUBLE-ESCAPE BACKSLASHES, e.g. "$$ \\frac{a}{b} $$".

JSON SCHEMA:
[
  {
    "type": "MCQ" | "MSQ" | "NAT",
    "question": "Question text with $$math$$...",
    "a": "Option A text",
    "b": "Option B",
    "c": "Option C",
    "d": "Option D",
    "answer": "Correct Option",
    "explanation": "Explanation with $$math$$...",
    "imageUrl": "URL of any relevant diagram/image found (optional)"
  }
]`

// rawQuestion mirrors the JSON shape the extraction prompt demands.
type rawQuestion struct {
	Type        string `json:"type"`
	Question    string `json:"question"`
	A           string `json:"a"`
	B           string `json:"b"`
	C           string `json:"c"`
	D           string `json:"d"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
	ImageURL    string `json:"imageUrl"`
}

// llmClassifier implements domain.Classifier on top of an LLM completion
// client.
type llmClassifier struct {
	llm    LLM
	logger *zap.Logger
}

func NewLLMClassifier(llm LLM, logger *zap.Logger) domain.Classifier {
	return &llmClassifier{llm: llm, logger: logger}
}

// Classify extracts structured questions from a raw chunk. An empty result
// means the chunk carried no usable content, which is not an error.
func (c *llmClassifier) Classify(ctx context.Context, chunk domain.RawChunk) ([]domain.Question, error) {
	prompt := fmt.Sprintf("%s\n\nEXTRACT ALL QUESTIONS (MCQ, MSQ, NAT) FROM THIS TEXT. RECONSTRUCT BROKEN MATH SYMBOLS INTO VALID LATEX ($$...$$). REMEMBER TO DOUBLE-ESCAPE BACKSLASHES:\n\n%s",
		cleaningSystemInstruction, chunk.Text)

	response, err := c.llm.Call(ctx, prompt, llms.WithTemperature(0.1))
	if err != nil {
		return nil, domain.NewClassificationError(fmt.Errorf("LLM call failed for chunk %s: %w", chunk.ID, err))
	}

	jsonStr, err := extractJSONArray(response)
	if err != nil {
		return nil, domain.NewClassificationError(fmt.Errorf("unparseable LLM response for chunk %s: %w", chunk.ID, err))
	}

	var items []rawQuestion
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		c.logger.Error("Failed to unmarshal extracted JSON from LLM response",
			zap.Error(err),
			zap.String("chunk_id", chunk.ID),
			zap.String("json_tried", truncateForLog(jsonStr)))
		return nil, domain.NewClassificationError(fmt.Errorf("invalid JSON from LLM for chunk %s: %w", chunk.ID, err))
	}

	questions := make([]domain.Question, 0, len(items))
	for _, item := range items {
		q := mapRawQuestion(item)
		q.SourceType = chunk.SourceType
		q.SourceName = chunk.SourceName
		q.SourceRef = chunk.SourceRef
		questions = append(questions, q)
	}

	c.logger.Info("Cleaned chunk",
		zap.String("chunk_id", chunk.ID),
		zap.Int("questions_found", len(questions)))
	return questions, nil
}

// mapRawQuestion converts the LLM shape into a domain question with a
// fresh id. Unknown kinds default to MCQ, matching how loosely models
// follow enums.
func mapRawQuestion(item rawQuestion) domain.Question {
	kind := domain.QuestionKind(item.Type)
	switch kind {
	case domain.KindMCQ, domain.KindMSQ, domain.KindNAT:
	default:
		kind = domain.KindMCQ
	}

	options := domain.Options{A: item.A, B: item.B, C: item.C, D: item.D}
	if kind == domain.KindNAT {
		options = domain.Options{}
	}

	return domain.Question{
		ID:          util.NewULID(),
		Kind:        kind,
		Prompt:      item.Question,
		Options:     options,
		Answer:      item.Answer,
		Explanation: item.Explanation,
		ImageURL:    item.ImageURL,
	}
}
