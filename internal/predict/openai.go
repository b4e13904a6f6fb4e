package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"faultwatch/internal/httputil"
	"faultwatch/internal/ingest"
)

const openaiSystemPrompt = `You are a telecom network fault-prediction engine.
You receive a merged alarm log as CSV. Analyze recurrence patterns and
respond with a JSON array only, no prose. Each element must have exactly
these keys: "Site", "Location", "Fault", "Probability (%)", "Risk Level",
"Possible Cause", "Recommendation", "Team". "Probability (%)" is a number
from 0 to 100 and "Risk Level" is one of "LOW", "MEDIUM" or "HIGH".
Return an empty array if no significant future fault risk exists.`

// maxPromptRows bounds the table sample sent to the model.
const maxPromptRows = 500

// OpenAIOracle asks an OpenAI chat model for fault predictions over the
// merged alarm table.
type OpenAIOracle struct {
	client openai.Client
	model  string
}

// NewOpenAIOracle creates an oracle backed by the given API key.
func NewOpenAIOracle(apiKey, model string) (*OpenAIOracle, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httputil.NewClient()),
	)
	return &OpenAIOracle{client: client, model: model}, nil
}

func (o *OpenAIOracle) Name() string { return "openai" }

// Predict makes a single chat completion call and parses the JSON array
// it returns. No retry: a failed call is surfaced to the adapter as-is.
func (o *OpenAIOracle) Predict(ctx context.Context, table *ingest.Table) ([]RawRecord, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openaiSystemPrompt),
			openai.UserMessage(tableCSV(table, maxPromptRows)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices returned")
	}

	return parseRecords(resp.Choices[0].Message.Content)
}

// parseRecords decodes a JSON array of raw records, tolerating markdown
// code fences around the payload.
func parseRecords(content string) ([]RawRecord, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	var records []RawRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("parse oracle response: %w", err)
	}
	return records, nil
}

// tableCSV renders the merged table as CSV for the prompt. Absent cells
// render empty; rows beyond the cap are dropped.
func tableCSV(table *ingest.Table, maxRows int) string {
	var b strings.Builder
	b.WriteString(strings.Join(table.Columns, ","))
	b.WriteByte('\n')
	for i, row := range table.Rows {
		if i >= maxRows {
			break
		}
		cells := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			cells[j] = csvEscape(row[col])
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
