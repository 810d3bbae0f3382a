// Package assistant implements the conversational finance assistant
package assistant

import (
	"strings"

	"github.com/granahq/grana/internal/models"
)

// categoryRule maps description keywords to a category. Rules are checked in
// order and the first keyword contained in the description wins, so more
// specific rules must come before broader ones.
type categoryRule struct {
	keywords []string
	category string
	txType   models.TransactionType
}

var categoryRules = []categoryRule{
	{
		keywords: []string{"salário", "salario", "pagamento recebido", "freela", "freelance", "rendimento", "dividendo"},
		category: "Renda",
		txType:   models.TransactionIncome,
	},
	{
		keywords: []string{"ifood", "restaurante", "lanche", "mercado", "supermercado", "padaria", "almoço", "almoco", "jantar", "café", "cafe", "pizza", "hamburguer"},
		category: "Alimentação",
		txType:   models.TransactionExpense,
	},
	{
		keywords: []string{"uber", "99", "taxi", "táxi", "ônibus", "onibus", "metrô", "metro", "gasolina", "combustível", "combustivel", "estacionamento", "pedágio", "pedagio"},
		category: "Transporte",
		txType:   models.TransactionExpense,
	},
	{
		keywords: []string{"aluguel", "condomínio", "condominio", "luz", "energia", "água", "agua", "gás", "gas", "internet", "iptu"},
		category: "Moradia",
		txType:   models.TransactionExpense,
	},
	{
		keywords: []string{"farmácia", "farmacia", "remédio", "remedio", "médico", "medico", "consulta", "dentista", "plano de saúde", "plano de saude", "academia"},
		category: "Saúde",
		txType:   models.TransactionExpense,
	},
	{
		keywords: []string{"curso", "faculdade", "escola", "livro", "mensalidade"},
		category: "Educação",
		txType:   models.TransactionExpense,
	},
	{
		keywords: []string{"netflix", "spotify", "cinema", "show", "jogo", "streaming", "assinatura"},
		category: "Lazer",
		txType:   models.TransactionExpense,
	},
	{
		keywords: []string{"roupa", "tênis", "tenis", "sapato", "shopping", "presente"},
		category: "Compras",
		txType:   models.TransactionExpense,
	},
}

// Categorize guesses a category and transaction direction for a free-text
// description. Matching is case-insensitive substring containment; when no
// rule matches it falls back to Outros / expense.
func Categorize(description string) (string, models.TransactionType) {
	normalized := strings.ToLower(description)

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.category, rule.txType
			}
		}
	}

	return "Outros", models.TransactionExpense
}
