package main

import (
	"context"
	"errors"
	"os"

	"saldo/internal/amqp"
	"saldo/internal/cli"
	"saldo/internal/config"
	applog "saldo/internal/log"
	gsheet "saldo/internal/sheets/google"
	"saldo/internal/worker"
)

func main() {
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentWorker)

	logger.InfoContext(context.Background(), "Starting saldo-worker", applog.FieldOperation, applog.OpStartup)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	sheetsClient, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	if err := sheetsClient.EnsureHeader(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to prepare sheet", applog.FieldError, err, "sheet", cfg.GoogleSheetName)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ledgerWorker := worker.NewLedgerWorker(sheetsClient)

	logger.InfoContext(ctx, "Consuming ledger events", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeWithRetry(ctx, ledgerWorker.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Message consumption failed", applog.FieldError, err)
		return
	}

	logger.InfoContext(context.Background(), "Worker stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
