// Package sarif persists gate reports in SARIF 2.1.0 form for CI
// code-scanning upload.
package sarif

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bkyoung/lint-scout/internal/domain"
)

// Writer implements the scout.ReportWriter interface.
type Writer struct {
	now func() string
}

// NewWriter creates a new SARIF writer.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Write persists a report to disk as a SARIF file.
func (w *Writer) Write(ctx context.Context, artifact domain.ReportArtifact) (string, error) {
	outputDir := filepath.Join(artifact.OutputDir, fmt.Sprintf("%s_%s", artifact.Repository, artifact.TargetRef), w.now())
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(outputDir, "report.sarif")

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create sarif file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(convert(artifact.Report)); err != nil {
		return "", fmt.Errorf("failed to encode report to sarif: %w", err)
	}

	return filePath, nil
}

// convert maps a gate report to a SARIF document.
func convert(report domain.Report) map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(report.Findings))

	for _, finding := range report.Findings {
		// SARIF requires non-empty message text
		messageText := finding.Message
		if messageText == "" {
			messageText = "No message provided"
		}

		ruleID := finding.Tool
		if ruleID == "" {
			ruleID = "lint"
		}

		result := map[string]interface{}{
			"ruleId": ruleID,
			"level":  "warning",
			"message": map[string]interface{}{
				"text": messageText,
			},
		}

		if finding.File != "" && finding.LineStart >= 1 {
			endLine := finding.LineEnd
			if endLine < finding.LineStart {
				endLine = finding.LineStart
			}
			result["locations"] = []map[string]interface{}{
				{
					"physicalLocation": map[string]interface{}{
						"artifactLocation": map[string]interface{}{
							"uri": finding.File,
						},
						"region": map[string]interface{}{
							"startLine": finding.LineStart,
							"endLine":   endLine,
						},
					},
				},
			}
		}

		results = append(results, result)
	}

	return map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"runs": []map[string]interface{}{
			{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":           "lint-scout",
						"informationUri": "https://github.com/bkyoung/lint-scout",
					},
				},
				"results": results,
				"properties": map[string]interface{}{
					"baseRef":       report.BaseRef,
					"targetRef":     report.TargetRef,
					"mergeBase":     report.MergeBase,
					"totalFindings": report.Total,
				},
			},
		},
	}
}
