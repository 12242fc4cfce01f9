package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchemaMigration registra uma migração SQL aplicada
type SchemaMigration struct {
	Version   int64 `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	AppliedAt time.Time
}

// TableName define o nome da tabela
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// MigrationFile representa um arquivo YYYYMMDDHHMMSS_nome.sql
type MigrationFile struct {
	Version int64
	Name    string
	Path    string
}

// MigrationManager aplica os scripts SQL que complementam o AutoMigrate
// (índices de busca, ajustes de coluna específicos de cada banco)
type MigrationManager struct {
	db        *gorm.DB
	logger    *zap.Logger
	directory string
}

// NewMigrationManager cria um novo gerenciador de migrações
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, directory string) *MigrationManager {
	return &MigrationManager{
		db:        db,
		logger:    logger,
		directory: directory,
	}
}

// Pending lista as migrações ainda não aplicadas, em ordem de versão
func (m *MigrationManager) Pending(ctx context.Context) ([]MigrationFile, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("falha ao criar tabela de migrações: %w", err)
	}

	var applied []SchemaMigration
	if err := m.db.WithContext(ctx).Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("falha ao buscar migrações aplicadas: %w", err)
	}
	done := make(map[int64]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	files, err := m.findMigrationFiles()
	if err != nil {
		return nil, err
	}

	pending := files[:0]
	for _, f := range files {
		if !done[f.Version] {
			pending = append(pending, f)
		}
	}
	return pending, nil
}

// ApplyMigrations aplica as migrações pendentes, cada uma em sua própria transação
func (m *MigrationManager) ApplyMigrations(ctx context.Context) error {
	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}

	for _, file := range pending {
		m.logger.Info("Aplicando migração", zap.Int64("version", file.Version), zap.String("name", file.Name))

		content, err := os.ReadFile(file.Path)
		if err != nil {
			return fmt.Errorf("falha ao ler arquivo de migração: %w", err)
		}

		err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, stmt := range splitSQLCommands(string(content)) {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("falha ao executar migração %d: %w", file.Version, err)
				}
			}
			return tx.Create(&SchemaMigration{
				Version:   file.Version,
				Name:      file.Name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return err
		}

		m.logger.Info("Migração aplicada com sucesso", zap.Int64("version", file.Version), zap.String("name", file.Name))
	}

	return nil
}

// splitSQLCommands separa comandos por ponto e vírgula, ignorando os que
// aparecem dentro de strings e comentários
func splitSQLCommands(sql string) []string {
	var commands []string
	var current strings.Builder
	inString, inLineComment, inBlockComment := false, false, false
	hasCode := false

	// comandos só com comentários são descartados
	flush := func() {
		if hasCode {
			commands = append(commands, strings.TrimSpace(current.String()))
		}
		current.Reset()
		hasCode = false
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		next := byte(0)
		if i+1 < len(sql) {
			next = sql[i+1]
		}

		switch {
		case inLineComment:
			if ch == '\n' {
				inLineComment = false
			}
		case inBlockComment:
			if ch == '*' && next == '/' {
				inBlockComment = false
				current.WriteString("*/")
				i++
				continue
			}
		case inString:
			if ch == '\'' {
				inString = false
			}
		case ch == '-' && next == '-':
			inLineComment = true
		case ch == '/' && next == '*':
			inBlockComment = true
		case ch == '\'':
			inString = true
		case ch == ';':
			flush()
			continue
		}

		if !inLineComment && !inBlockComment && ch != ' ' && ch != '\n' && ch != '\t' && ch != '\r' {
			hasCode = true
		}

		current.WriteByte(ch)
	}
	flush()

	return commands
}

// findMigrationFiles encontra os arquivos .sql do diretório; diretório ausente não é erro
func (m *MigrationManager) findMigrationFiles() ([]MigrationFile, error) {
	if m.directory == "" {
		return nil, nil
	}

	entries, err := fs.ReadDir(os.DirFS(m.directory), ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("Diretório de migrações não encontrado", zap.String("dir", m.directory))
			return nil, nil
		}
		return nil, fmt.Errorf("falha ao listar arquivos de migração: %w", err)
	}

	var files []MigrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, ok := strings.Cut(strings.TrimSuffix(entry.Name(), ".sql"), "_")
		v, err := strconv.ParseInt(version, 10, 64)
		if !ok || err != nil {
			m.logger.Warn("Formato de arquivo de migração inválido", zap.String("file", entry.Name()))
			continue
		}

		files = append(files, MigrationFile{
			Version: v,
			Name:    name,
			Path:    filepath.Join(m.directory, entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// CreateMigration cria um novo arquivo de migração vazio e retorna seu caminho
func (m *MigrationManager) CreateMigration(name string) (string, error) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if name == "" {
		return "", errors.New("nome da migração é obrigatório")
	}

	if err := os.MkdirAll(m.directory, 0o755); err != nil {
		return "", fmt.Errorf("falha ao criar diretório: %w", err)
	}

	path := filepath.Join(m.directory, fmt.Sprintf("%s_%s.sql", time.Now().Format("20060102150405"), name))
	header := fmt.Sprintf("-- %s\n-- Comandos separados por ponto e vírgula; cada arquivo roda em uma transação.\n", name)

	if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
		return "", fmt.Errorf("falha ao criar arquivo: %w", err)
	}

	return path, nil
}
