package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/storage"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	standingsSheet   = "Standings"
	pairingsSheet    = "Pairings"
	exportKeyPrefix  = "exports"
	exportTimeLayout = "20060102T150405Z"
)

type ExportResult struct {
	Key         string    `json:"key"`
	URL         string    `json:"url,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Players     int       `json:"players"`
	Pairs       int       `json:"pairs"`
}

type ExportService interface {
	ExportStandings(ctx context.Context) (*ExportResult, error)
}

type exportService struct {
	tournament     TournamentService
	uploader       storage.FileUploader
	tournamentName string
	logger         *slog.Logger
	now            func() time.Time
}

// NewExportService returns a service that uploads standings workbooks.
// A nil uploader makes every export fail with ErrExportDisabled.
func NewExportService(tournament TournamentService, uploader storage.FileUploader, tournamentName string, logger *slog.Logger) ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &exportService{
		tournament:     tournament,
		uploader:       uploader,
		tournamentName: tournamentName,
		logger:         logger.With(slog.String("service", "export")),
		now:            time.Now,
	}
}

func (s *exportService) ExportStandings(ctx context.Context) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportDisabled
	}

	// Обе вкладки строятся из одного снимка.
	standings, round, err := s.tournament.CurrentRound(ctx)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now().UTC()
	buf, err := BuildStandingsWorkbook(s.tournamentName, generatedAt, standings, round)
	if err != nil {
		return nil, err
	}

	key := exportObjectKey(s.tournamentName, generatedAt)
	uploaded, err := s.uploader.Upload(ctx, key, xlsxContentType, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to upload standings export: %w", err)
	}

	s.logger.Info("standings exported", slog.String("key", uploaded.Key), slog.Int("players", len(standings)))
	return &ExportResult{
		Key:         uploaded.Key,
		URL:         uploaded.Location,
		GeneratedAt: generatedAt,
		Players:     len(standings),
		Pairs:       len(round.Pairs),
	}, nil
}

func exportObjectKey(tournamentName string, at time.Time) string {
	name := slug.Make(tournamentName)
	if name == "" {
		name = "tournament"
	}
	return fmt.Sprintf("%s/%s/%s-%s.xlsx", exportKeyPrefix, name, at.Format(exportTimeLayout), uuid.NewString())
}

// BuildStandingsWorkbook renders standings and the next round into an xlsx file.
func BuildStandingsWorkbook(title string, generatedAt time.Time, standings []models.StandingRow, round *models.RoundPairings) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", standingsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []interface{}{"Rank", "Player ID", "Name", "Wins", "Losses", "Ties", "Matches"}
	if err := f.SetSheetRow(standingsSheet, "A1", &[]interface{}{title, generatedAt.Format(time.RFC3339)}); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(standingsSheet, "A3", &header); err != nil {
		return nil, err
	}
	for i, row := range standings {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		values := []interface{}{i + 1, row.PlayerID, row.Name, row.Wins, row.Losses, row.Ties, row.Matches}
		if err := f.SetSheetRow(standingsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write standings row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(pairingsSheet); err != nil {
		return nil, fmt.Errorf("failed to create pairings sheet: %w", err)
	}
	pairHeader := []interface{}{"Table", "Player 1 ID", "Player 1", "Player 2 ID", "Player 2"}
	if err := f.SetSheetRow(pairingsSheet, "A1", &pairHeader); err != nil {
		return nil, err
	}
	if round != nil {
		for i, p := range round.Pairs {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return nil, err
			}
			values := []interface{}{p.Table, p.Player1ID, p.Player1Name, p.Player2ID, p.Player2Name}
			if err := f.SetSheetRow(pairingsSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write pairing row %d: %w", i+1, err)
			}
		}
		if round.Unpaired != nil {
			cell, err := excelize.CoordinatesToCellName(1, len(round.Pairs)+3)
			if err != nil {
				return nil, err
			}
			note := []interface{}{"Unpaired", round.Unpaired.ID, round.Unpaired.Name}
			if err := f.SetSheetRow(pairingsSheet, cell, &note); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}
