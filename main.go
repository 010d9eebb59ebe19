package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"secassist/internal/api"
	"secassist/internal/config"
	"secassist/internal/document"
	"secassist/internal/service/ai"
	"secassist/internal/service/assistant"
	"secassist/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("SECASSIST_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	provCfg := cfg.Active()

	ctx := context.Background()
	chatModel, err := ai.NewChatModel(ctx, cfg.Provider, provCfg)
	if err != nil {
		log.Fatalf("init chat model: %v", err)
	}
	readers, err := document.NewRegistry(ctx)
	if err != nil {
		log.Fatalf("init document readers: %v", err)
	}

	assistantService := assistant.NewService(
		session.NewStore(),
		ai.NewService(chatModel, provCfg.MaxTokens),
		readers,
		assistant.Options{
			UploadDir:      cfg.BasicConfig.UploadDir,
			MaxUploadBytes: cfg.BasicConfig.MaxUploadBytes,
		},
	)
	if err := os.MkdirAll(cfg.BasicConfig.UploadDir, 0o755); err != nil {
		log.Fatalf("create upload dir: %v", err)
	}
	handlers := api.NewHandler(assistantService)

	router := gin.New()
	router.Use(gin.Logger())
	router.MaxMultipartMemory = cfg.BasicConfig.MaxUploadBytes
	handlers.RegisterRoutes(router)

	uploadDir, err := filepath.Abs(cfg.BasicConfig.UploadDir)
	if err != nil {
		log.Printf("resolve upload dir: %v", err)
		uploadDir = cfg.BasicConfig.UploadDir
	}
	log.Printf("upload folder: %s", uploadDir)
	log.Printf("provider: %s, model: %s, max tokens: %d", cfg.Provider, provCfg.Model, provCfg.MaxTokens)
	log.Printf("allowed extensions: %v", readers.Extensions())
	log.Printf("listening on %s", cfg.BasicConfig.ServerAddress)

	if err := router.Run(cfg.BasicConfig.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
