package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/spf13/cobra"
	"github.com/uma-arai/sbcntr-roombook/internal/common/config"
	"github.com/uma-arai/sbcntr-roombook/internal/common/database"
	"github.com/uma-arai/sbcntr-roombook/internal/repository"
	"github.com/uma-arai/sbcntr-roombook/internal/service/reservation"
)

// app はコマンド1回分の接続とサービスをまとめたものです
type app struct {
	ctx  context.Context
	cfg  *config.Config
	db   *database.DB
	repo *repository.ReservationRepositoryImpl
	svc  *reservation.Service
	seg  *xray.Segment
}

func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.DB.Driver = database.DriverSQLite
		cfg.DB.Path = opts.dbPath
	}

	db, err := database.NewDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	ctx, seg := xray.BeginSegment(cmd.Context(), "roomctl "+cmd.Name())
	repo := repository.NewReservationRepository(repository.NewDB(db))

	return &app{
		ctx:  ctx,
		cfg:  cfg,
		db:   db,
		repo: repo,
		svc:  reservation.NewService(repo),
		seg:  seg,
	}, nil
}

func (a *app) Close() {
	a.seg.Close(nil)
	if err := a.db.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
