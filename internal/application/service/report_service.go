package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
)

const reportSheetName = "Fila de Trabalho"

var reportHeaders = []string{
	"Processo",
	"Beneficiário",
	"Tipo",
	"Status",
	"Valor (R$)",
	"Espera (h)",
	"Pontuação",
	"Prioridade",
	"Parado",
}

// ReportService exports module work queues as spreadsheets for the weekly
// coordination meetings.
type ReportService interface {
	// ExportQueue renders the scored queue of a module as an xlsx workbook.
	ExportQueue(ctx context.Context, module entity.Module, userID string) ([]byte, error)
}

type reportServiceImpl struct {
	inbox  InboxService
	logger *zap.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(inbox InboxService, logger *zap.Logger) ReportService {
	return &reportServiceImpl{inbox: inbox, logger: logger}
}

func (s *reportServiceImpl) ExportQueue(ctx context.Context, module entity.Module, userID string) ([]byte, error) {
	scored, err := s.inbox.Queue(ctx, module, userID)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer file.Close()

	sheetIndex, err := file.NewSheet(reportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	file.SetActiveSheet(sheetIndex)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := file.SetCellValue(reportSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header %q: %w", header, err)
		}
	}

	for i, item := range scored {
		row := i + 2
		values := []interface{}{
			item.Item.ProcessNumber,
			item.Item.Beneficiary,
			string(item.Item.Kind),
			item.Item.Status.Label(),
			item.Item.Value,
			item.WaitingHours,
			item.Score,
			string(item.Level),
			boolLabel(item.Stale),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell at row %d: %w", row, err)
			}
			if err := file.SetCellValue(reportSheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to set cell at row %d: %w", row, err)
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Queue report exported",
		zap.String("module", string(module)),
		zap.Int("rows", len(scored)),
		zap.Time("generated_at", time.Now()))
	return buf.Bytes(), nil
}

func boolLabel(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
