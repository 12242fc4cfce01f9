package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hmpsicoterapia/prontuario-api/internal/adapter/database"
	"github.com/hmpsicoterapia/prontuario-api/pkg/config"
	"github.com/hmpsicoterapia/prontuario-api/pkg/security"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Emite um token para um administrador existente, útil em scripts e testes manuais
func main() {
	var (
		configPath string
		email      string
		duration   time.Duration
	)

	flag.StringVar(&configPath, "config", "./config", "Diretório do config.yaml")
	flag.StringVar(&email, "email", "", "Email do administrador")
	flag.DurationVar(&duration, "duration", 0, "Validade do token (padrão: auth.tokenExpiration)")
	flag.Parse()

	if email == "" {
		fmt.Println("Erro: email é obrigatório.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Erro ao carregar configuração: %v\n", err)
		os.Exit(1)
	}
	if duration <= 0 {
		duration = cfg.Auth.TokenExpiration
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	logCfg.OutputPaths = []string{"stderr"}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Printf("Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewDatabase(ctx, database.Config{
		Driver:         cfg.Database.Driver,
		DSN:            cfg.Database.DSN,
		MaxIdleConns:   1,
		MaxOpenConns:   1,
		LogLevel:       database.ParseLogLevel("error"),
		SkipMigrations: true,
	}, logger)
	if err != nil {
		fmt.Printf("Erro ao conectar ao banco de dados: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// o token só é aceito pela API se o administrador existir
	if _, err := database.NewAdminRepository(db.DB(), logger).FindByEmail(ctx, email); err != nil {
		fmt.Printf("Erro: administrador %s não encontrado: %v\n", email, err)
		os.Exit(1)
	}

	keyManager, err := security.NewKeyManager(cfg.Auth.JWTSecret, logger)
	if err != nil {
		fmt.Printf("Erro ao inicializar gerenciador de chaves: %v\n", err)
		os.Exit(1)
	}

	token, err := keyManager.GenerateToken(email, duration)
	if err != nil {
		fmt.Printf("Erro ao gerar token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
