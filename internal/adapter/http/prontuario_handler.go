package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hmpsicoterapia/prontuario-api/internal/app/prontuario"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/infra/middleware"
	"go.uber.org/zap"
)

// ProntuarioService define as operações de prontuário usadas pelos handlers
type ProntuarioService interface {
	Create(ctx context.Context, in prontuario.ProntuarioInput, editor string) (*model.Prontuario, error)
	Update(ctx context.Context, id uint, in prontuario.ProntuarioInput, editor string) (*model.Prontuario, error)
	Search(ctx context.Context, filtro string) ([]*model.Prontuario, error)
	GetByID(ctx context.Context, id uint) (*model.Prontuario, error)
	AppendHistorico(ctx context.Context, id uint, descricao, editor string) (*model.Prontuario, error)
	AppendMedicacao(ctx context.Context, id uint, in prontuario.MedicacaoInput, editor string) (*model.Prontuario, error)
	AppendExame(ctx context.Context, id uint, in prontuario.ExameInput, editor string) (*model.Prontuario, error)
	AppendAnotacao(ctx context.Context, id uint, texto, editor string) (*model.Prontuario, error)
	UpdateStatus(ctx context.Context, id uint, status, motivo, editor string) (*model.Prontuario, error)
}

// ProntuarioHandler implementa os endpoints de /api/prontuarios.
// Todas as rotas exigem autenticação; o email do token é o editor.
type ProntuarioHandler struct {
	service ProntuarioService
	logger  *zap.Logger
}

// NewProntuarioHandler cria um novo handler de prontuários
func NewProntuarioHandler(service ProntuarioService, logger *zap.Logger) *ProntuarioHandler {
	return &ProntuarioHandler{
		service: service,
		logger:  logger,
	}
}

// Create cria um prontuário
func (h *ProntuarioHandler) Create(c *gin.Context) {
	var req ProntuarioRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		respondValidation(c, errs)
		return
	}

	h.respond(c)(h.service.Create(c.Request.Context(), req.ToInput(), editor(c)))
}

// Search lista prontuários filtrados por ?filtro=
func (h *ProntuarioHandler) Search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), c.Query("filtro"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get busca um prontuário por ID
func (h *ProntuarioHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.respond(c)(h.service.GetByID(c.Request.Context(), id))
}

// Update sobrescreve um prontuário
func (h *ProntuarioHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ProntuarioRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		respondValidation(c, errs)
		return
	}

	h.respond(c)(h.service.Update(c.Request.Context(), id, req.ToInput(), editor(c)))
}

// AppendHistorico anexa um registro ao histórico médico
func (h *ProntuarioHandler) AppendHistorico(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req HistoricoRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		respondValidation(c, errs)
		return
	}

	h.respond(c)(h.service.AppendHistorico(c.Request.Context(), id, req.Descricao, editor(c)))
}

// AppendMedicacao anexa uma medicação
func (h *ProntuarioHandler) AppendMedicacao(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req MedicacaoRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		respondValidation(c, errs)
		return
	}

	h.respond(c)(h.service.AppendMedicacao(c.Request.Context(), id, prontuario.MedicacaoInput{
		Nome:        req.Nome,
		Dosagem:     req.Dosagem,
		Frequencia:  req.Frequencia,
		Observacoes: req.Observacoes,
	}, editor(c)))
}

// AppendExame anexa um exame
func (h *ProntuarioHandler) AppendExame(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ExameRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		respondValidation(c, errs)
		return
	}

	h.respond(c)(h.service.AppendExame(c.Request.Context(), id, prontuario.ExameInput{
		Nome:        req.Nome,
		Data:        req.Data,
		Resultado:   req.Resultado,
		Observacoes: req.Observacoes,
	}, editor(c)))
}

// AppendAnotacao anexa uma anotação
func (h *ProntuarioHandler) AppendAnotacao(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req AnotacaoRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		respondValidation(c, errs)
		return
	}

	h.respond(c)(h.service.AppendAnotacao(c.Request.Context(), id, req.Texto, editor(c)))
}

// UpdateStatus altera o status do tratamento
func (h *ProntuarioHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		respondValidation(c, errs)
		return
	}

	h.respond(c)(h.service.UpdateStatus(c.Request.Context(), id, req.Status, req.MotivoAlta, editor(c)))
}

// respond escreve o prontuário retornado pelo serviço ou o erro traduzido
func (h *ProntuarioHandler) respond(c *gin.Context) func(*model.Prontuario, error) {
	return func(p *model.Prontuario, err error) {
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// editor é o email do token; as rotas de prontuário exigem autenticação
func editor(c *gin.Context) string {
	email, _ := middleware.EmailFromContext(c.Request.Context())
	return email
}
