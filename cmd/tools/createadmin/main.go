package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hmpsicoterapia/prontuario-api/internal/adapter/database"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	"github.com/hmpsicoterapia/prontuario-api/pkg/config"
	"github.com/hmpsicoterapia/prontuario-api/pkg/security"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Cria o primeiro administrador direto no banco, sem passar pela API
func main() {
	defaults := config.Default()

	var (
		cpf      string
		nome     string
		email    string
		senha    string
		dbDriver string
		dbDSN    string
		verbose  bool
	)

	flag.StringVar(&cpf, "cpf", "", "CPF do admin (11 dígitos)")
	flag.StringVar(&nome, "nome", "", "Nome do admin")
	flag.StringVar(&email, "email", "", "Email do admin")
	flag.StringVar(&senha, "senha", "", "Senha do admin")
	flag.StringVar(&dbDriver, "driver", defaults.Database.Driver, "Driver do banco de dados (sqlite, mysql, postgres)")
	flag.StringVar(&dbDSN, "dsn", defaults.Database.DSN, "DSN do banco de dados")
	flag.BoolVar(&verbose, "verbose", false, "Mostrar logs detalhados")
	flag.Parse()

	if cpf == "" || nome == "" || email == "" || senha == "" {
		fmt.Println("Erro: cpf, nome, email e senha são obrigatórios.")
		flag.Usage()
		os.Exit(1)
	}
	if len(senha) < defaults.Auth.PasswordMinLen {
		fmt.Printf("Erro: a senha deve ter pelo menos %d caracteres.\n", defaults.Auth.PasswordMinLen)
		os.Exit(1)
	}

	logCfg := zap.NewProductionConfig()
	if !verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		logCfg.OutputPaths = []string{"stderr"}
	}
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Printf("Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewDatabase(ctx, database.Config{
		Driver:          dbDriver,
		DSN:             dbDSN,
		MaxIdleConns:    1,
		MaxOpenConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		LogLevel:        database.ParseLogLevel("error"),
		SlowThreshold:   200 * time.Millisecond,
	}, logger)
	if err != nil {
		fmt.Printf("Erro ao conectar ao banco de dados: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	hash, err := security.NewPasswordHasher(defaults.Auth.BcryptCost).Hash(senha)
	if err != nil {
		fmt.Printf("Erro ao processar senha: %v\n", err)
		os.Exit(1)
	}

	admin := &model.Admin{CPF: cpf, Nome: nome, Email: email, SenhaHash: hash}
	if err := database.NewAdminRepository(db.DB(), logger).Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			fmt.Println("Erro: já existe um administrador com este CPF ou email.")
			os.Exit(1)
		}
		fmt.Printf("Erro ao salvar administrador: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Administrador criado. ID: %d, email: %s\n", admin.ID, admin.Email)
	fmt.Printf("Gere um token com: go run ./cmd/tools/gentoken -email=%s\n", admin.Email)
}
