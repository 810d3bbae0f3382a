package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/granahq/grana/internal/models"
)

// classifyPrompt instructs the model to emit a single JSON object describing
// the user's intent. The response schema mirrors models.Intent.
const classifyPrompt = `Você é o assistente financeiro do Grana, um app brasileiro de finanças pessoais.
Classifique a mensagem do usuário e responda APENAS com um objeto JSON, sem texto adicional.

Schema:
{
  "type": "action" | "query" | "clarification",
  "action": "add_transaction" | "add_budget" | "add_goal" | "add_bank",
  "amount": number,
  "description": string,
  "category": string,
  "transactionType": "income" | "expense",
  "name": string,
  "targetAmount": number,
  "limit": number,
  "question": string
}

Regras:
- "action": o usuário quer registrar algo (gasto, receita, orçamento, meta, banco). Preencha os campos do action correspondente.
- "query": o usuário quer saber algo sobre as próprias finanças. Preencha "question".
- "clarification": a mensagem é ambígua ou incompleta. Preencha "question" com o que falta.
- Valores em reais, use ponto como separador decimal no JSON.

Mensagem do usuário: %s`

// buildClassifyPrompt embeds the user message into the classification prompt.
func buildClassifyPrompt(message string) string {
	return fmt.Sprintf(classifyPrompt, strings.TrimSpace(message))
}

// parseIntent decodes the model's JSON reply into an Intent. Any decoding
// failure degrades to a clarification intent rather than an error, so a
// misbehaving model never breaks the conversation.
func parseIntent(raw string) *models.Intent {
	cleaned := stripCodeFence(raw)

	var intent models.Intent
	if err := json.Unmarshal([]byte(cleaned), &intent); err != nil {
		return &models.Intent{Type: models.IntentClarification}
	}

	switch intent.Type {
	case models.IntentAction, models.IntentQuery, models.IntentClarification:
		return &intent
	default:
		return &models.Intent{Type: models.IntentClarification}
	}
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// around its JSON despite the JSON response mode.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
