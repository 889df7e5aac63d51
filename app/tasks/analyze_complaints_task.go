package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ouvidorlabs/ouvidor/app/ai"
	"github.com/ouvidorlabs/ouvidor/app/database"
)

const analyzeBatchSize = 10

type AnalyzeComplaintsTask struct {
	Task
	analyzer      *ai.Analyzer
	complaintRepo database.ComplaintRepository
}

func NewAnalyzeComplaintsTask(analyzer *ai.Analyzer, complaintRepo database.ComplaintRepository) *AnalyzeComplaintsTask {
	return &AnalyzeComplaintsTask{
		Task:          NewTask(TaskTypeAnalyzeComplaints, ""),
		analyzer:      analyzer,
		complaintRepo: complaintRepo,
	}
}

func (t *AnalyzeComplaintsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	complaints, err := t.complaintRepo.GetUnanalyzed(analyzeBatchSize)
	if err != nil {
		return fmt.Errorf("failed to load unanalyzed complaints: %w", err)
	}
	if len(complaints) == 0 {
		slog.Debug("No complaints awaiting analysis")
		return nil
	}

	analyzed, failed := 0, 0
	for _, complaint := range complaints {
		if ctx.Err() != nil {
			break
		}

		analysis, err := t.analyzer.Analyze(ctx, complaint.Title, complaint.Text)
		if err != nil {
			slog.Warn("Analysis failed for complaint",
				"complaint_id", complaint.ID,
				"error", err)
			failed++
			continue
		}

		err = t.complaintRepo.UpdateAnalysis(complaint.ID, database.AnalysisUpdate{
			Sentiment:      analysis.Sentiment,
			SentimentScore: analysis.SentimentScore,
			Classification: ai.MarshalClassification(analysis),
			UrgencyScore:   analysis.Urgency,
		})
		if err != nil {
			return fmt.Errorf("failed to store analysis: %w", err)
		}
		analyzed++
	}

	slog.Info("Task completed",
		"type", "AnalyzeComplaints",
		"analyzed", analyzed,
		"failed", failed,
		"duration", t.GetDuration())

	return nil
}
