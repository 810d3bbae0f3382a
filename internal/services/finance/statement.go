package finance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/granahq/grana/internal/models"
	"github.com/granahq/grana/internal/services/assistant"
)

// statementLine matches the common Brazilian bank statement row layout:
// date, free-text description, amount with comma decimals. A leading minus
// or a trailing D (débito) marks an expense.
var statementLine = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(-?\s?[\d.]+,\d{2})\s*([DC])?\s*$`)

const statementDateLayout = "02/01/2006"

// ImportStatement extracts transaction candidates from a PDF bank statement.
// Candidates are proposals only; nothing is persisted until the user confirms
// each entry through the normal transaction flow.
func (s *Service) ImportStatement(ctx context.Context, pdfData []byte) ([]models.StatementEntry, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract pdf text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf text: %w", err)
	}

	entries := ParseStatementText(string(text))
	s.logger.Info().Int("entries", len(entries)).Msg("Statement parsed")

	return entries, nil
}

// ParseStatementText scans extracted statement text for transaction rows.
// Unrecognized lines are skipped; a statement with no matches yields an
// empty candidate list, not an error.
func ParseStatementText(text string) []models.StatementEntry {
	entries := make([]models.StatementEntry, 0)

	for _, line := range strings.Split(text, "\n") {
		m := statementLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		date, err := time.Parse(statementDateLayout, m[1])
		if err != nil {
			continue
		}

		amount, negative, err := parseStatementAmount(m[3])
		if err != nil || amount == 0 {
			continue
		}

		description := strings.TrimSpace(m[2])
		txType := models.TransactionIncome
		if negative || m[4] == "D" {
			txType = models.TransactionExpense
		}

		category, guessedType := assistant.Categorize(description)
		// The keyword guess only decides direction when the statement row
		// itself is ambiguous about debit vs credit.
		if !negative && m[4] == "" {
			txType = guessedType
		}

		entries = append(entries, models.StatementEntry{
			Date:        date,
			Description: description,
			Amount:      amount,
			Type:        txType,
			Category:    category,
		})
	}

	return entries
}

// parseStatementAmount converts "1.234,56" / "-1.234,56" to a positive float
// plus a negative marker.
func parseStatementAmount(raw string) (amount float64, negative bool, err error) {
	raw = strings.ReplaceAll(raw, " ", "")
	if strings.HasPrefix(raw, "-") {
		negative = true
		raw = strings.TrimPrefix(raw, "-")
	}
	raw = strings.ReplaceAll(raw, ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")

	var v float64
	if _, err := fmt.Sscanf(raw, "%f", &v); err != nil {
		return 0, false, err
	}
	return v, negative, nil
}
