package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"procurement-tracker/internal/core"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// maxPromptOrders caps how many open orders are listed in the prompt.
const maxPromptOrders = 200

// NoteParser turns a free-text delivery note into a receipt draft.
type NoteParser interface {
	ParseReceiptNote(ctx context.Context, note string, openOrders []core.Order) (*ReceiptDraft, error)
}

// ReceiptDraft is the structured reading of a delivery note. Amounts and dates
// stay strings so the model never rounds them; they are parsed by ToNewReceipt.
type ReceiptDraft struct {
	IsClarification      bool    `json:"is_clarification" jsonschema_description:"true when the note lacks the supplier, NF or purchase order number"`
	ClarificationMessage string  `json:"clarification_message" jsonschema_description:"question for the user when is_clarification is true, else empty"`
	OrderNumber          string  `json:"order_number" jsonschema_description:"purchase order number (OC) exactly as written"`
	Supplier             string  `json:"supplier"`
	InvoiceNumber        string  `json:"invoice_number" jsonschema_description:"NF number"`
	InvoiceTotal         string  `json:"invoice_total" jsonschema_description:"NF total as a plain decimal string, e.g. 1234.56"`
	Volume               int     `json:"volume" jsonschema_description:"number of packages, 1 when not stated"`
	FreightTerms         string  `json:"freight_terms" jsonschema_description:"CIF, FOB or empty when not stated"`
	FreightValue         string  `json:"freight_value" jsonschema_description:"freight as a plain decimal string, 0 when CIF or not stated"`
	ReceiptDate          string  `json:"receipt_date" jsonschema_description:"DD/MM/YYYY, empty for today"`
	ReceiverName         string  `json:"receiver_name"`
	Notes                string  `json:"notes"`
	Confidence           float64 `json:"confidence" jsonschema_description:"0.0 to 1.0"`
	Reasoning            string  `json:"reasoning"`
}

// ToNewReceipt converts the draft into warehouse input. Validation happens
// when the receipt is registered.
func (d ReceiptDraft) ToNewReceipt() core.NewReceipt {
	return core.NewReceipt{
		ReceiptDate:   core.ParseDate(d.ReceiptDate),
		ReceiverName:  strings.TrimSpace(d.ReceiverName),
		Supplier:      strings.TrimSpace(d.Supplier),
		InvoiceNumber: strings.TrimSpace(d.InvoiceNumber),
		OrderNumber:   strings.TrimSpace(d.OrderNumber),
		Volume:        d.Volume,
		InvoiceTotal:  core.ParseMoney(d.InvoiceTotal),
		FreightTerms:  strings.TrimSpace(d.FreightTerms),
		FreightValue:  core.ParseMoney(d.FreightValue),
		Notes:         strings.TrimSpace(d.Notes),
	}
}

type Agent struct {
	client *openai.Client
	model  string
}

// NewAgent returns an OpenAI-backed NoteParser. An empty model selects DefaultModel.
func NewAgent(apiKey, model string, opts ...option.RequestOption) *Agent {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &Agent{client: &client, model: model}
}

func (a *Agent) ParseReceiptNote(ctx context.Context, note string, openOrders []core.Order) (*ReceiptDraft, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, errors.New("empty delivery note")
	}

	schemaMap, err := schemaMap()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(a.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(buildPrompt(note, openOrders, core.Today())),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "receipt_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A warehouse receipt read from a delivery note"),
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
	return decodeDraft(content)
}

func decodeDraft(content string) (*ReceiptDraft, error) {
	var draft ReceiptDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if draft.Volume <= 0 {
		draft.Volume = 1
	}
	draft.OrderNumber = core.NewOrderKey(draft.OrderNumber).String()
	draft.FreightTerms = strings.ToUpper(strings.TrimSpace(draft.FreightTerms))
	if !draft.IsClarification && (draft.OrderNumber == "" || strings.TrimSpace(draft.InvoiceNumber) == "") {
		draft.IsClarification = true
		if draft.ClarificationMessage == "" {
			draft.ClarificationMessage = "Informe o número da OC e da NF."
		}
	}
	return &draft, nil
}

func buildPrompt(note string, openOrders []core.Order, today core.Date) string {
	var b strings.Builder
	b.WriteString(`You are a warehouse clerk registering deliveries for a purchasing team in Brazil.
Read the delivery note and fill in the receipt.
Rules:
1. Copy the purchase order number (OC) and NF number exactly; never invent them.
2. If the OC or the NF is missing, set is_clarification and ask for it.
3. Amounts are plain decimal strings with a dot ("1234.56"); convert "1.234,56".
4. CIF means freight paid by the supplier: freight_value is "0".
5. Prefer an OC from the open orders list when the note matches its supplier.
6. Provide a confidence score (0.0-1.0) and explain your reasoning.
`)
	fmt.Fprintf(&b, "\nToday: %s\n", today)

	if len(openOrders) > 0 {
		b.WriteString("\nOpen orders (OC | supplier | material | quantity):\n")
		for i, o := range openOrders {
			if i == maxPromptOrders {
				fmt.Fprintf(&b, "... and %d more\n", len(openOrders)-maxPromptOrders)
				break
			}
			fmt.Fprintf(&b, "- %s | %s | %s | %s\n", o.Key(), o.Supplier, o.Material, o.Quantity)
		}
	}

	fmt.Fprintf(&b, "\nDelivery note: %s", note)
	return b.String()
}

func generateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v ReceiptDraft
	return reflector.Reflect(v)
}

// schemaMap renders the draft schema as the generic map the API expects.
func schemaMap() (map[string]any, error) {
	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(schemaJSON, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return m, nil
}
