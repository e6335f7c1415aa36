package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/kpiwowar/ofertomat/internal/config"
	"github.com/kpiwowar/ofertomat/internal/db"
	"github.com/kpiwowar/ofertomat/internal/logs"
	"github.com/kpiwowar/ofertomat/internal/models"
	"github.com/kpiwowar/ofertomat/internal/pdfgen"
	"github.com/kpiwowar/ofertomat/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logs.New(cfg.LogFile, cfg.LogConsole)

	// MIGRATE_ONLY=1 runs migrations and exits.
	if config.ParseBool("MIGRATE_ONLY", false) {
		if _, err := db.ConnectAndMigrate(cfg.DatabasePath); err != nil {
			logger.Fatal().Err(err).Msg("migrate-only failed")
		}
		logger.Info().Msg("migrations completed; exiting as requested")
		return
	}

	dbConn, err := db.ConnectAndMigrate(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("błąd połączenia z bazą")
	}
	s := store.New(dbConn, logger)

	// RENDER_OFFER_ID selects a stored offer to render to RENDER_OUT.
	if raw := os.Getenv("RENDER_OFFER_ID"); raw != "" {
		if err := renderStoredOffer(cfg, logger, s, raw); err != nil {
			logger.Error().Err(err).Msg("renderowanie oferty nie powiodło się")
			os.Exit(1)
		}
		return
	}

	offers, err := s.Offers()
	if err != nil {
		logger.Fatal().Err(err).Msg("odczyt ofert")
	}
	logger.Info().
		Str("database", cfg.DatabasePath).
		Int("offers", len(offers)).
		Msg("baza gotowa")
}

func renderStoredOffer(cfg config.Config, logger zerolog.Logger, s *store.Store, rawID string) error {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		return fmt.Errorf("RENDER_OFFER_ID: %w", err)
	}
	offer, err := s.OfferByID(uint(id))
	if err != nil {
		return fmt.Errorf("oferta %d: %w", id, err)
	}
	card, err := s.BusinessCard()
	if err != nil {
		return fmt.Errorf("wizytówka: %w", err)
	}

	items := make([]*models.OfferItem, len(offer.Items))
	for i := range offer.Items {
		items[i] = &offer.Items[i]
	}

	out := os.Getenv("RENDER_OUT")
	if out == "" {
		out = fmt.Sprintf("oferta-%d.pdf", offer.ID)
	}

	gen := pdfgen.New(pdfgen.Options{
		LogoPath:          cfg.LogoPath,
		WatermarkPath:     cfg.WatermarkPath,
		Fonts:             pdfgen.ResolverFor(cfg.FontRegular, cfg.FontBold),
		ProgressThreshold: cfg.ProgressThreshold,
	}, logger)

	summary, err := gen.RenderOffer(pdfgen.OfferData{
		Title:         offer.Title,
		Date:          time.Now().Format("02.01.2006"),
		Items:         items,
		BusinessCard:  card,
		CategoryOrder: offer.RankMap(),
	}, out, func(processed, total int) {
		logger.Info().Int("processed", processed).Int("total", total).Msg("postęp renderowania")
	})
	if err != nil {
		return err
	}
	logger.Info().
		Str("path", out).
		Int("items", summary.Items).
		Float64("netto", summary.GrandNet).
		Float64("brutto", summary.GrandGross).
		Msg("oferta zapisana")
	return nil
}
