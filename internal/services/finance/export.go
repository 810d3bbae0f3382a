package finance

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/models"
)

var exportHeader = []string{"Data", "Tipo", "Descrição", "Categoria", "Valor", "Forma de Pagamento", "Tags"}

const exportDateLayout = "02/01/2006"

// ExportTransactionsCSV renders the user's transactions as a CSV document.
func (s *Service) ExportTransactionsCSV(ctx context.Context) ([]byte, error) {
	transactions, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, tx := range transactions {
		if err := w.Write(exportRow(tx)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportTransactionsXLSX renders the user's transactions as an Excel workbook.
func (s *Service) ExportTransactionsXLSX(ctx context.Context) ([]byte, error) {
	transactions, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transações"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i, tx := range transactions {
		for col, value := range exportRow(tx) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRow(tx *models.Transaction) []string {
	return []string{
		tx.Date.Format(exportDateLayout),
		transactionLabel(tx.Type),
		tx.Description,
		tx.Category,
		common.FormatBRL(tx.Amount),
		tx.PaymentMethod,
		strings.Join(tx.Tags, ", "),
	}
}
