package main

import (
	"context"
	"io"
	"os"

	"github.com/cmlabs-hris/timecard-backend-go/internal/app"
	"github.com/cmlabs-hris/timecard-backend-go/internal/config"
	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

// Sweeper runs one auto-approval pass over all tenants.
type Sweeper interface {
	Sweep(ctx context.Context) ([]timecard.AutoApprovalResult, error)
}

// Backend is what the commands need from a configured application.
type Backend struct {
	Reports report.ReportService
	Sweeper Sweeper
	Close   func()
}

// Deps holds the command's external dependencies so tests can swap them.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Open   func(ctx context.Context) (*Backend, error)
}

func defaultDeps() *Deps {
	return &Deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Open:   openBackend,
	}
}

func openBackend(ctx context.Context) (*Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Reports: application.Reports,
		Sweeper: application.AutoApproval,
		Close:   application.Close,
	}, nil
}
