package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/obinna-dev/drivesage/internal/config"
	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/core/analyzer"
	"github.com/obinna-dev/drivesage/internal/core/batch"
	"github.com/obinna-dev/drivesage/internal/core/chatctx"
	"github.com/obinna-dev/drivesage/internal/core/credentials"
	db "github.com/obinna-dev/drivesage/internal/core/database"
	gdrive "github.com/obinna-dev/drivesage/internal/core/drive"
	"github.com/obinna-dev/drivesage/internal/core/extract"
	"github.com/obinna-dev/drivesage/internal/core/llm"
	"github.com/obinna-dev/drivesage/internal/services"
)

type App struct {
	DBClient core.DbClient
	LLM      *llm.GeminiLLM
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider: %w", err)
	}

	driveStore := gdrive.NewStore()
	credProvider := credentials.NewGoogleProvider(dbClient, cfg.GoogleClientID, cfg.GoogleClientSecret)
	extractor := extract.NewExtractor(driveStore)

	docAnalyzer := analyzer.NewAnalyzer(dbClient, extractor, llmProvider, credProvider, int32(cfg.AnalyzeMaxTokens))
	assembler := chatctx.NewAssembler(dbClient, extractor, credProvider, cfg.FreshnessHorizon)
	scheduler := batch.NewScheduler(docAnalyzer, cfg.FreshnessHorizon, cfg.AnalyzeRatePerSec)

	conversations := services.NewConversationService(dbClient, assembler, llmProvider)
	documents := services.NewDocumentService(dbClient, driveStore, credProvider, scheduler)

	server := NewServer(cfg, dbClient, conversations, documents, docAnalyzer)

	return &App{DBClient: dbClient, LLM: llmProvider, Server: server}, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
