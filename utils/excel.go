package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"study-abroad-backend/config"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportDir is where generated spreadsheets and letters are written. It is
// served statically under /public.
var ExportDir = "./public/files"

// EnsureDirectoryExists ensures the specified directory exists before file saving
func EnsureDirectoryExists(filePath string) error {
	dir := filepath.Dir(filePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %v", err)
		}
	}
	return nil
}

// GenerateExcel writes headers and rows to a single-sheet workbook in
// ExportDir and returns its public path.
func GenerateExcel(taskName string, headers []string, rows [][]interface{}) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	index, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return "", fmt.Errorf("error locating sheet: %v", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("error setting header %s: %v", header, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil && len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return "", fmt.Errorf("error setting value at %s: %v", cell, err)
			}
		}
	}

	f.SetActiveSheet(index)

	fileName := fmt.Sprintf("%s_%s.xlsx", CleanStringForFilename(taskName), time.Now().Format("20060102_150405"))
	fullPath := filepath.Join(ExportDir, fileName)
	if err := EnsureDirectoryExists(fullPath); err != nil {
		return "", err
	}

	if err := f.SaveAs(fullPath); err != nil {
		config.Logger.Error("Error saving Excel file", zap.String("path", fullPath), zap.Error(err))
		return "", err
	}

	config.Logger.Info("Excel export written", zap.String("path", fullPath), zap.Int("rows", len(rows)))
	return "/public/files/" + fileName, nil
}
