// Package app builds the services shared by the API server and timecardctl.
package app

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timecard-backend-go/internal/config"
	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timecard-backend-go/internal/repository/postgresql"
	reportService "github.com/cmlabs-hris/timecard-backend-go/internal/service/report"
	timecardService "github.com/cmlabs-hris/timecard-backend-go/internal/service/timecard"
)

type App struct {
	DB           *database.DB
	Timecards    timecard.TimecardService
	Reports      report.ReportService
	AutoApproval *cron.AutoApprovalJobs
}

// Rules converts the configured thresholds.
func Rules(cfg config.TimecardConfig) timecardService.Rules {
	return timecardService.Rules{
		LongShiftThreshold:  cfg.LongShiftThreshold,
		InferredBreak:       cfg.InferredBreak,
		MandatoryBreakAfter: cfg.MandatoryBreakAfter,
		MaxShift:            cfg.MaxShift,
		MinShift:            cfg.MinShift,
		MaxBreak:            cfg.MaxBreak,
		StandardDayMinutes:  cfg.StandardDayMinutes,
		Location:            cfg.Location,
	}
}

// New connects to the database and wires repositories into services.
// Callers own the returned DB and must Close it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	entryRepo := postgresql.NewTimeEntryRepository(db)
	historyRepo := postgresql.NewApprovalHistoryRepository(db)
	scheduleRepo := postgresql.NewWorkScheduleRepository(db)
	settingsRepo := postgresql.NewApprovalSettingsRepository(db)
	groupRepo := postgresql.NewApprovalGroupRepository(db)
	transactor := postgresql.NewTransactor(db)

	rules := Rules(cfg.Timecard)

	timecards := timecardService.NewTimecardService(
		entryRepo,
		historyRepo,
		scheduleRepo,
		settingsRepo,
		groupRepo,
		transactor,
		rules,
	)
	reports := reportService.NewReportService(
		entryRepo,
		scheduleRepo,
		rules,
		reportService.WithDefaultLocale(cfg.Report.Locale),
		reportService.WithDefaultTimeout(cfg.Report.Timeout),
	)

	return &App{
		DB:           db,
		Timecards:    timecards,
		Reports:      reports,
		AutoApproval: cron.NewAutoApprovalJobs(settingsRepo, timecards),
	}, nil
}

func (a *App) Close() {
	a.DB.Close()
}
