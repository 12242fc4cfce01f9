package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hmpsicoterapia/prontuario-api/internal/adapter/database"
	"github.com/hmpsicoterapia/prontuario-api/pkg/config"
	"github.com/hmpsicoterapia/prontuario-api/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	defaults := config.Default().Database

	var (
		action       string
		name         string
		driver       string
		dsn          string
		migrationDir string
		logLevel     string
	)

	flag.StringVar(&action, "action", "migrate", "Ação (migrate, create, status)")
	flag.StringVar(&name, "name", "", "Nome da migração (apenas para action=create)")
	flag.StringVar(&driver, "driver", defaults.Driver, "Driver de banco de dados (sqlite, mysql, postgres)")
	flag.StringVar(&dsn, "dsn", defaults.DSN, "DSN do banco de dados")
	flag.StringVar(&migrationDir, "dir", defaults.MigrationDir, "Diretório de migrações")
	flag.StringVar(&logLevel, "log-level", "info", "Nível de log do GORM (silent, error, warn, info)")
	flag.Parse()

	logger, err := logging.NewLogger()
	if err != nil {
		fmt.Printf("Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dbConfig := database.Config{
		Driver:          driver,
		DSN:             dsn,
		MaxIdleConns:    5,
		MaxOpenConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		LogLevel:        database.ParseLogLevel(logLevel),
		SlowThreshold:   200 * time.Millisecond,
		MigrationDir:    migrationDir,
		// status e create não devem alterar o esquema
		SkipMigrations: action != "migrate",
	}

	ctx := context.Background()

	switch action {
	case "migrate":
		db, err := database.NewDatabase(ctx, dbConfig, logger)
		if err != nil {
			logger.Fatal("Falha ao inicializar banco de dados", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Migrações aplicadas com sucesso")

	case "status":
		db, err := database.NewDatabase(ctx, dbConfig, logger)
		if err != nil {
			logger.Fatal("Falha ao inicializar banco de dados", zap.Error(err))
		}
		defer db.Close()

		pending, err := database.NewMigrationManager(db.DB(), logger, migrationDir).Pending(ctx)
		if err != nil {
			logger.Fatal("Falha ao listar migrações pendentes", zap.Error(err))
		}
		if len(pending) == 0 {
			fmt.Println("Nenhuma migração pendente")
		}
		for _, m := range pending {
			fmt.Printf("pendente: %d_%s\n", m.Version, m.Name)
		}

	case "create":
		if name == "" {
			logger.Fatal("Nome da migração é obrigatório para action=create")
		}

		path, err := database.NewMigrationManager(nil, logger, migrationDir).CreateMigration(name)
		if err != nil {
			logger.Fatal("Falha ao criar migração", zap.Error(err))
		}

		logger.Info("Migração criada", zap.String("path", path))

	default:
		logger.Fatal("Ação desconhecida", zap.String("action", action))
	}
}
