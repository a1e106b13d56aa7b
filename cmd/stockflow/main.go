package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/savegress/stockflow/internal/allocation"
	"github.com/savegress/stockflow/internal/api"
	"github.com/savegress/stockflow/internal/config"
	"github.com/savegress/stockflow/internal/ingest"
)

func main() {
	stockPath := flag.String("stock", "", "stock table CSV (one-shot mode)")
	poPath := flag.String("po", "", "purchase-order table CSV (one-shot mode)")
	planPath := flag.String("plan", "", "pickup-plan table CSV (optional)")
	demandPath := flag.String("demand", "", "demand table CSV (one-shot mode)")
	pickupDemandPath := flag.String("pickup-demand", "", "pickup-plan demand CSV (optional)")
	outPath := flag.String("out", "", "write the report JSON here instead of stdout")
	flag.Parse()

	cfg := loadConfig()

	if *demandPath != "" {
		if err := runOnce(cfg, *stockPath, *poPath, *planPath, *demandPath, *pickupDemandPath, *outPath); err != nil {
			log.Fatalf("Allocation failed: %v", err)
		}
		return
	}

	log.Println("Starting StockFlow...")

	server := api.NewServer(cfg)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("StockFlow API listening on port %d", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down StockFlow...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("StockFlow stopped")
}

// runOnce loads the CSV tables, runs a single allocation and writes the
// report as JSON.
func runOnce(cfg *config.Config, stockPath, poPath, planPath, demandPath, pickupDemandPath, outPath string) error {
	if stockPath == "" || poPath == "" {
		return fmt.Errorf("one-shot mode needs -stock and -po")
	}

	var in allocation.Input
	var err error

	if in.Stock, err = ingest.LoadStockCSV(stockPath); err != nil {
		return err
	}
	if in.PurchaseOrders, err = ingest.LoadOrderCSV(poPath); err != nil {
		return err
	}
	if planPath != "" {
		if in.PickupPlans, err = ingest.LoadOrderCSV(planPath); err != nil {
			return err
		}
	}
	if in.Demand, err = ingest.LoadDemandCSV(demandPath); err != nil {
		return err
	}
	if pickupDemandPath != "" {
		if in.PickupDemand, err = ingest.LoadDemandCSV(pickupDemandPath); err != nil {
			return err
		}
	}

	report := allocation.Run(cfg, in)

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	log.Printf("Run %s: %d lines, %d filled, %d short, %d rejected rows",
		report.RunID, report.Summary.DemandLines, report.Summary.FilledLines,
		report.Summary.ShortLines, report.Summary.RejectedRows)
	return nil
}

func loadConfig() *config.Config {
	configPath := os.Getenv("STOCKFLOW_CONFIG")
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Printf("Failed to load config from %s: %v, using defaults", configPath, err)
			return config.LoadFromEnv()
		}
		return cfg
	}
	return config.LoadFromEnv()
}
