package prompt

import (
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// SchemaName identifies the structured classification output.
const SchemaName = "ContractAnalysis"

// SchemaDescription documents the classification schema for the model.
const SchemaDescription = "Analysis of contract risks and dangerous clauses"

// ExtractionInstruction is the fixed instruction sent alongside the
// image bytes. The model's reply is used verbatim.
const ExtractionInstruction = "Extract all text from this contract/agreement image. Return the full text as accurately as possible."

// ClassificationPrompt embeds the extracted contract text into the
// fixed four-category consumer-protection instruction.
func ClassificationPrompt(contractText string) string {
	return fmt.Sprintf(`Analyze this contract text for consumer protection issues. Identify and categorize problems into the following categories:

CONTRACT TEXT:
%s

Please identify:
1. Hidden Risks: Unexpected terms, liability limitations, or fine print issues. Rate severity as low, medium, or high.
2. Money Traps: Hidden fees, charges, or pricing terms. Include estimated amounts if possible.
3. Auto-Renew Traps: Automatic renewal clauses, subscription traps, or difficult cancellation processes.
4. Dangerous Clauses: Unfair liability waivers, mandatory arbitration, non-compete clauses, or other predatory legal terms.

Focus on identifying predatory terms that harm consumers, automatic renewals, unfair liability limitations, and hidden fees.`, contractText)
}

// ResultSchema declares the structured output the classifier must
// emit: four typed category lists, all required, all possibly empty.
func ResultSchema() jsonschema.Definition {
	hiddenRisk := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title":       {Type: jsonschema.String},
			"description": {Type: jsonschema.String},
			"severity":    {Type: jsonschema.String, Enum: []string{"low", "medium", "high"}},
		},
		Required: []string{"title", "description", "severity"},
	}
	moneyTrap := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title":       {Type: jsonschema.String},
			"description": {Type: jsonschema.String},
			"amount":      {Type: jsonschema.String, Description: "Estimated amount as free text, e.g. \"$9.99/month\""},
		},
		Required: []string{"title", "description"},
	}
	autoRenewTrap := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title":                  {Type: jsonschema.String},
			"description":            {Type: jsonschema.String},
			"cancellationDifficulty": {Type: jsonschema.String},
		},
		Required: []string{"title", "description", "cancellationDifficulty"},
	}
	dangerousClause := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title":       {Type: jsonschema.String},
			"description": {Type: jsonschema.String},
			"legalImpact": {Type: jsonschema.String},
		},
		Required: []string{"title", "description", "legalImpact"},
	}

	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"hiddenRisks":      {Type: jsonschema.Array, Items: &hiddenRisk},
			"moneyTraps":       {Type: jsonschema.Array, Items: &moneyTrap},
			"autoRenewTraps":   {Type: jsonschema.Array, Items: &autoRenewTrap},
			"dangerousClauses": {Type: jsonschema.Array, Items: &dangerousClause},
		},
		Required: []string{"hiddenRisks", "moneyTraps", "autoRenewTraps", "dangerousClauses"},
	}
}
