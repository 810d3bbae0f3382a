package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/interfaces"
	"github.com/granahq/grana/internal/models"
)

// Service implements AssistantService. The LLM client may be nil when no API
// key is configured; every message then gets a static configuration reply.
type Service struct {
	llm     interfaces.LLMClient
	finance interfaces.FinanceService
	logger  *common.Logger
}

// NewService creates a new assistant service
func NewService(llm interfaces.LLMClient, finance interfaces.FinanceService, logger *common.Logger) *Service {
	return &Service{
		llm:     llm,
		finance: finance,
		logger:  logger,
	}
}

// HandleMessage processes one free-text user message end to end: classify
// intent, fill gaps with the keyword categorizer, validate, dispatch the
// mutation or answer the query.
func (s *Service) HandleMessage(ctx context.Context, message string) (*models.Reply, error) {
	if strings.TrimSpace(message) == "" {
		return &models.Reply{Kind: models.ReplyValidation, Message: "Envie uma mensagem para o assistente."}, nil
	}

	if s.llm == nil {
		return &models.Reply{
			Kind:    models.ReplyConfigError,
			Message: "O assistente não está configurado. Defina a chave de API do Gemini para habilitá-lo.",
		}, nil
	}

	raw, err := s.llm.GenerateJSON(ctx, buildClassifyPrompt(message))
	if err != nil {
		s.logger.Error().Err(err).Msg("Intent classification failed")
		return &models.Reply{
			Kind:    models.ReplySystemError,
			Message: "Não consegui processar sua mensagem agora. Tente novamente em instantes.",
		}, nil
	}

	intent := parseIntent(raw)
	s.logger.Debug().Str("type", string(intent.Type)).Str("action", intent.Action).Msg("Intent classified")

	switch intent.Type {
	case models.IntentAction:
		return s.handleAction(ctx, intent, message)
	case models.IntentQuery:
		return s.handleQuery(ctx, intent, message)
	default:
		return s.clarificationReply(intent), nil
	}
}

func (s *Service) handleAction(ctx context.Context, intent *models.Intent, message string) (*models.Reply, error) {
	switch intent.Action {
	case models.ActionAddTransaction:
		return s.addTransaction(ctx, intent, message)
	case models.ActionAddBudget:
		return s.addBudget(ctx, intent)
	case models.ActionAddGoal:
		return s.addGoal(ctx, intent)
	case models.ActionAddBank:
		return s.addBank(ctx, intent)
	default:
		return &models.Reply{
			Kind:    models.ReplyClarify,
			Message: "Não entendi o que você quer registrar. Pode reformular?",
		}, nil
	}
}

func (s *Service) addTransaction(ctx context.Context, intent *models.Intent, message string) (*models.Reply, error) {
	if intent.Amount <= 0 {
		return &models.Reply{Kind: models.ReplyValidation, Message: "Preciso do valor da transação. Qual foi o valor?"}, nil
	}

	description := intent.Description
	if description == "" {
		description = strings.TrimSpace(message)
	}

	// The keyword guess fills whatever the model left out.
	category, guessedType := Categorize(description)
	if intent.Category == "" {
		intent.Category = category
	}
	txType := models.TransactionType(intent.TransactionType)
	if txType != models.TransactionIncome && txType != models.TransactionExpense {
		txType = guessedType
	}

	tx, err := s.finance.AddTransaction(ctx, &models.Transaction{
		Type:        txType,
		Description: description,
		Amount:      intent.Amount,
		Category:    intent.Category,
	})
	if err != nil {
		return s.actionFailure(err, "registrar a transação"), nil
	}

	verb := "Despesa registrada"
	if tx.Type == models.TransactionIncome {
		verb = "Receita registrada"
	}
	return &models.Reply{
		Kind:    models.ReplyConfirmation,
		Message: fmt.Sprintf("%s: %s de %s em %s.", verb, tx.Description, common.FormatBRL(tx.Amount), tx.Category),
	}, nil
}

func (s *Service) addBudget(ctx context.Context, intent *models.Intent) (*models.Reply, error) {
	if intent.Category == "" {
		return &models.Reply{Kind: models.ReplyValidation, Message: "Para qual categoria é o orçamento?"}, nil
	}
	if intent.Limit <= 0 {
		return &models.Reply{Kind: models.ReplyValidation, Message: "Qual o limite mensal do orçamento?"}, nil
	}

	budget, err := s.finance.AddBudget(ctx, &models.Budget{Category: intent.Category, Limit: intent.Limit})
	if err != nil {
		return s.actionFailure(err, "criar o orçamento"), nil
	}

	return &models.Reply{
		Kind:    models.ReplyConfirmation,
		Message: fmt.Sprintf("Orçamento criado: %s por mês para %s.", common.FormatBRL(budget.Limit), budget.Category),
	}, nil
}

func (s *Service) addGoal(ctx context.Context, intent *models.Intent) (*models.Reply, error) {
	if intent.Name == "" {
		return &models.Reply{Kind: models.ReplyValidation, Message: "Qual o nome da meta?"}, nil
	}
	if intent.TargetAmount <= 0 {
		return &models.Reply{Kind: models.ReplyValidation, Message: "Qual o valor alvo da meta?"}, nil
	}

	goal, err := s.finance.AddGoal(ctx, &models.Goal{Name: intent.Name, TargetAmount: intent.TargetAmount})
	if err != nil {
		return s.actionFailure(err, "criar a meta"), nil
	}

	return &models.Reply{
		Kind:    models.ReplyConfirmation,
		Message: fmt.Sprintf("Meta criada: %s com alvo de %s.", goal.Name, common.FormatBRL(goal.TargetAmount)),
	}, nil
}

func (s *Service) addBank(ctx context.Context, intent *models.Intent) (*models.Reply, error) {
	if intent.Name == "" {
		return &models.Reply{Kind: models.ReplyValidation, Message: "Qual o nome do banco ou conta?"}, nil
	}

	bank, err := s.finance.AddBank(ctx, &models.Bank{Name: intent.Name})
	if err != nil {
		return s.actionFailure(err, "cadastrar o banco"), nil
	}

	return &models.Reply{
		Kind:    models.ReplyConfirmation,
		Message: fmt.Sprintf("Banco cadastrado: %s.", bank.Name),
	}, nil
}

// handleQuery answers a finance question grounded on the user's own numbers.
// The summary is serialized into a context block so the model cannot invent
// balances.
func (s *Service) handleQuery(ctx context.Context, intent *models.Intent, message string) (*models.Reply, error) {
	summary, err := s.finance.Summary(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build finance summary for query")
		return &models.Reply{
			Kind:    models.ReplySystemError,
			Message: "Não consegui consultar seus dados agora. Tente novamente em instantes.",
		}, nil
	}

	question := intent.Question
	if question == "" {
		question = strings.TrimSpace(message)
	}

	answer, err := s.llm.GenerateContent(ctx, buildQueryPrompt(question, summary))
	if err != nil {
		s.logger.Error().Err(err).Msg("Query answer generation failed")
		return &models.Reply{
			Kind:    models.ReplySystemError,
			Message: "Não consegui responder agora. Tente novamente em instantes.",
		}, nil
	}

	return &models.Reply{Kind: models.ReplyAnswer, Message: strings.TrimSpace(answer)}, nil
}

func (s *Service) clarificationReply(intent *models.Intent) *models.Reply {
	message := intent.Question
	if message == "" {
		message = "Não entendi muito bem. Você quer registrar um gasto, criar uma meta ou consultar suas finanças?"
	}
	return &models.Reply{Kind: models.ReplyClarify, Message: message}
}

func (s *Service) actionFailure(err error, what string) *models.Reply {
	s.logger.Error().Err(err).Msg("Assistant action failed")
	return &models.Reply{
		Kind:    models.ReplySystemError,
		Message: fmt.Sprintf("Não consegui %s agora. Tente novamente em instantes.", what),
	}
}

// buildQueryPrompt renders the user's finance summary as the grounding block
// for a free-text answer.
func buildQueryPrompt(question string, summary *models.FinanceSummary) string {
	var b strings.Builder
	b.WriteString("Você é o assistente financeiro do Grana. Responda em português, de forma curta e direta, usando APENAS os dados abaixo.\n\n")
	b.WriteString("Dados do usuário:\n")
	fmt.Fprintf(&b, "- Saldo: %s\n", common.FormatBRL(summary.Balance))
	fmt.Fprintf(&b, "- Receitas: %s\n", common.FormatBRL(summary.TotalIncome))
	fmt.Fprintf(&b, "- Despesas: %s\n", common.FormatBRL(summary.TotalExpenses))
	fmt.Fprintf(&b, "- Transações: %d, Bancos: %d, Orçamentos: %d, Metas: %d\n",
		summary.TransactionCount, summary.BankCount, summary.BudgetCount, summary.GoalCount)

	if len(summary.ExpensesByCategory) > 0 {
		b.WriteString("- Despesas por categoria:\n")
		categories := make([]string, 0, len(summary.ExpensesByCategory))
		for c := range summary.ExpensesByCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			fmt.Fprintf(&b, "  - %s: %s\n", c, common.FormatBRL(summary.ExpensesByCategory[c]))
		}
	}

	fmt.Fprintf(&b, "\nPergunta: %s\n", question)
	return b.String()
}

// Ensure Service implements AssistantService
var _ interfaces.AssistantService = (*Service)(nil)
