package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dukaan-guru/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// Interpreter is the intent interpreter boundary: free text plus the
// current stock names in, a structured intent batch out.
type Interpreter interface {
	Interpret(ctx context.Context, req core.InterpretRequest) (*core.InterpretResult, error)
}

type Agent struct {
	client *openai.Client
	model  shared.ResponsesModel
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client, model: shared.ResponsesModel(shared.ChatModelGPT4o)}
}

func (a *Agent) Interpret(ctx context.Context, req core.InterpretRequest) (*core.InterpretResult, error) {
	shopName := req.ShopName
	if shopName == "" {
		shopName = "a shop"
	}
	stockNames := strings.Join(req.KnownStockNames, ", ")
	if stockNames == "" {
		stockNames = "No items in stock yet"
	}

	prompt := fmt.Sprintf(`You are Dukaan Guru, the bookkeeping assistant for %s.
The shopkeeper writes in a mix of Urdu and English; reply in their language.

Current Inventory in Stock: [%s]

User message: "%s"

CRITICAL INSTRUCTIONS:
1. REPORT REQUEST: If the user asks for a report, summary, "hisab kitab", "hisaab", analysis, or total, set 'generate_report' to true.
2. AVAILABILITY CHECK: If the user tries to SELL an item that is NOT in the Current Inventory list, DO NOT include it in 'items'; say so in the confirmation message and set 'has_error' to true.
3. DETECT INTENT per item: 'sale', 'stock', or 'credit' (udhaar).
4. CLEAN NAMES: Use raw product names only, without quantities or prices.`,
		shopName, stockNames, req.Utterance)

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: a.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "shop_chat_turn",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Extracted bookkeeping intents for one shopkeeper chat turn"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var result core.InterpretResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	result.Normalize()
	return &result, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.InterpretResult
	return reflector.Reflect(v)
}
