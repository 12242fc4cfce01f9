package app_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hmpsicoterapia/prontuario-api/internal/app"
	"github.com/hmpsicoterapia/prontuario-api/internal/testutils"
	"github.com/hmpsicoterapia/prontuario-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg.Database.MaxIdleConns = 1
	cfg.Database.MaxOpenConns = 1
	cfg.Database.LogLevel = "silent"
	cfg.Database.MigrationDir = ""
	cfg.Auth.JWTSecret = strings.Repeat("k", 64)
	cfg.Auth.BcryptCost = 4
	return cfg
}

func setupApp(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	application, err := app.NewApp(context.Background(), testConfig(), zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	router := testutils.SetupTestRouter(t)
	application.RegisterRoutes(router)
	return router, logs
}

func login(t *testing.T, router *gin.Engine, email, senha string) string {
	t.Helper()

	resp := testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/login",
		map[string]string{"email": email, "senha": senha}, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	var body struct {
		Token string `json:"token"`
	}
	testutils.ParseResponse(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestApp_AdminAndRecordFlow(t *testing.T) {
	router, _ := setupApp(t)

	resp := testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/register", map[string]string{
		"cpf": "12345678901", "nome": "Ana", "email": "ana@hm.com", "senha": "segredo1",
	}, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	resp = testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/register", map[string]string{
		"cpf": "12345678901", "nome": "Outra", "email": "outra@hm.com", "senha": "segredo1",
	}, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
	assert.Contains(t, resp.Body.String(), "CPF já cadastrado.")

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/api/prontuarios", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)

	token := login(t, router, "ana@hm.com", "segredo1")

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/api/admin/me", nil, bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	assert.NotContains(t, resp.Body.String(), "senha")

	resp = testutils.MakeRequest(t, router, http.MethodPost, "/api/prontuarios", map[string]interface{}{
		"paciente": map[string]string{
			"nome": "João Silva", "dataNascimento": "1980-05-10", "cpf": "98765432100", "genero": "M",
			"email": "joao@mail.com", "logradouro": "Rua A", "numero": "10", "bairro": "Centro",
			"cidade": "Recife", "estado": "PE", "cep": "50000000",
		},
		"historicoMedico":  "Inicial",
		"tipoTratamento":   "Psicoterapia",
		"numeroProntuario": "P-001",
	}, bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	var created struct {
		ID                 uint   `json:"id"`
		NomePaciente       string `json:"nomePaciente"`
		StatusTratamento   string `json:"statusTratamento"`
		UltimaAlteracaoPor string `json:"ultimaAlteracaoPor"`
	}
	testutils.ParseResponse(t, resp, &created)
	assert.Equal(t, "João Silva", created.NomePaciente)
	assert.Equal(t, "EM_TRATAMENTO", created.StatusTratamento)
	assert.Equal(t, "ana@hm.com", created.UltimaAlteracaoPor)

	path := fmt.Sprintf("/api/prontuarios/%d", created.ID)

	resp = testutils.MakeRequest(t, router, http.MethodPost, path+"/anotacoes",
		map[string]string{"texto": "Paciente estável"}, bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	assert.Contains(t, resp.Body.String(), "Paciente estável")

	resp = testutils.MakeRequest(t, router, http.MethodPatch, path+"/status-tratamento",
		map[string]string{"status": "ALTA_MEDICA"}, bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	assert.Contains(t, resp.Body.String(), "Não informado")

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/api/prontuarios?filtro=silva", nil, bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	var list []map[string]interface{}
	testutils.ParseResponse(t, resp, &list)
	assert.Len(t, list, 1)

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/api/prontuarios/999", nil, bearer(token))
	testutils.RequireHTTPStatus(t, resp, http.StatusNotFound)
}

func TestApp_PasswordResetFlow(t *testing.T) {
	router, logs := setupApp(t)

	resp := testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/register", map[string]string{
		"cpf": "12345678901", "nome": "Ana", "email": "ana@hm.com", "senha": "segredo1",
	}, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	known := testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/password-reset-request",
		map[string]string{"email": "ana@hm.com"}, nil)
	unknown := testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/password-reset-request",
		map[string]string{"email": "ninguem@hm.com"}, nil)
	testutils.RequireHTTPStatus(t, known, http.StatusOK)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	issued := logs.FilterMessage("Token de redefinição de senha gerado").All()
	require.Len(t, issued, 1)
	resetToken, _ := issued[0].ContextMap()["token"].(string)
	require.NotEmpty(t, resetToken)

	body := map[string]string{"token": resetToken, "senha": "novaSenha", "confirmarSenha": "novaSenha"}
	resp = testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/reset-password", body, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	// o token é de uso único
	resp = testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/reset-password", body, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)

	login(t, router, "ana@hm.com", "novaSenha")

	resp = testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/login",
		map[string]string{"email": "ana@hm.com", "senha": "segredo1"}, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)
}

func TestApp_OperationalEndpoints(t *testing.T) {
	router, _ := setupApp(t)

	resp := testutils.MakeRequest(t, router, http.MethodGet, "/health/readiness", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	testutils.RequireJSONContentType(t, resp)

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/health/detailed", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)

	resp = testutils.MakeRequest(t, router, http.MethodPost, "/api/admin/login",
		map[string]string{"email": "x@hm.com", "senha": "errada"}, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/metrics", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	assert.Contains(t, resp.Body.String(), `prontuario_api_auth_attempts_total{result="invalid_credentials"} 1`)

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/nao-existe", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusNotFound)
}
