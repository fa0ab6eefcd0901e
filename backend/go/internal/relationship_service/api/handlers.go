package api

import (
	"RelationshipManager/backend/go/internal/models"
	"RelationshipManager/backend/go/internal/relationship_service/service"
	"RelationshipManager/backend/go/internal/relationship_service/store"
	"RelationshipManager/backend/go/pkg/logger"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// 客户端可见的错误消息。
const (
	msgPessoaNaoEncontrada    = "Pessoa não encontrada"
	msgCaminhoNaoEncontrado   = "Caminho não encontrado entre as pessoas"
	msgRelacionamentoInvalido = "Não foi possível criar o relacionamento"
	msgRelacionamentoCriado   = "Relacionamento criado com sucesso"
	msgErroInterno            = "Erro interno do servidor"
)

// 自定义查询的默认参数。
const (
	defaultCidade    = "São Paulo"
	defaultInteresse = "música"
)

// Handler 提供人员与关系相关的 HTTP 处理函数。
type Handler struct {
	service *service.RelationshipService
	logger  *logger.Logger
}

// NewHandler creates a new Handler.
func NewHandler(service *service.RelationshipService, logger *logger.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// parseID 读取整数路径参数，失败时直接写入 400。
func (h *Handler) parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("parâmetro '%s' inválido: %q não é um inteiro", name, raw)})
		return 0, false
	}
	return id, true
}

// internalError 记录未预期的存储错误并返回 500。
func (h *Handler) internalError(c *gin.Context, err error, msg string) {
	requestLogger(c, h.logger).WithError(models.ErrorInfo{
		Message:    err.Error(),
		Type:       fmt.Sprintf("%T", err),
		StatusCode: http.StatusInternalServerError,
	}).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": msgErroInterno})
}

// CreatePessoaHandler handles POST /pessoas/.
func (h *Handler) CreatePessoaHandler(c *gin.Context) {
	var in models.PessoaCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "corpo da requisição inválido: " + err.Error()})
		return
	}

	pessoa, err := h.service.CreatePessoa(c.Request.Context(), in)
	if err != nil {
		h.internalError(c, err, "Failed to create pessoa")
		return
	}
	c.JSON(http.StatusOK, pessoa)
}

// ListPessoasHandler handles GET /pessoas/.
func (h *Handler) ListPessoasHandler(c *gin.Context) {
	pessoas, err := h.service.ListPessoas(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "Failed to list pessoas")
		return
	}
	c.JSON(http.StatusOK, pessoas)
}

// GetPessoaHandler handles GET /pessoas/:id.
func (h *Handler) GetPessoaHandler(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	pessoa, err := h.service.GetPessoa(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgPessoaNaoEncontrada})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to get pessoa")
		return
	}
	c.JSON(http.StatusOK, pessoa)
}

// CreateRelacionamentoHandler handles POST /pessoas/:id/conhece/:id2.
func (h *Handler) CreateRelacionamentoHandler(c *gin.Context) {
	id1, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	id2, ok := h.parseID(c, "id2")
	if !ok {
		return
	}

	err := h.service.CreateRelacionamento(c.Request.Context(), id1, id2)
	if errors.Is(err, store.ErrRelacionamentoInvalido) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgRelacionamentoInvalido})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to create relacionamento")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgRelacionamentoCriado})
}

// ListAmigosHandler handles GET /pessoas/:id/amigos.
func (h *Handler) ListAmigosHandler(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	amigos, err := h.service.ListAmigos(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err, "Failed to list amigos")
		return
	}
	c.JSON(http.StatusOK, amigos)
}

// RecomendacoesHandler handles GET /recomendacoes/:id.
func (h *Handler) RecomendacoesHandler(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	recomendacoes, err := h.service.RecomendarAmigos(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err, "Failed to recommend amigos")
		return
	}
	c.JSON(http.StatusOK, recomendacoes)
}

// RedeSocialHandler handles GET /pessoas/:id/rede/:profundidade.
func (h *Handler) RedeSocialHandler(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	profundidade, err := strconv.Atoi(c.Param("profundidade"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("profundidade inválida: %q não é um inteiro", c.Param("profundidade"))})
		return
	}

	rede, err := h.service.RedeSocial(c.Request.Context(), id, profundidade)
	if errors.Is(err, service.ErrProfundidadeInvalida) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to traverse rede social")
		return
	}
	c.JSON(http.StatusOK, rede)
}

// PessoasPorInteresseHandler handles GET /pessoas/interesse/:interesse.
func (h *Handler) PessoasPorInteresseHandler(c *gin.Context) {
	pessoas, err := h.service.PessoasPorInteresse(c.Request.Context(), c.Param("interesse"))
	if err != nil {
		h.internalError(c, err, "Failed to search pessoas by interesse")
		return
	}
	c.JSON(http.StatusOK, pessoas)
}

// CaminhoHandler handles GET /caminho/:id1/:id2.
func (h *Handler) CaminhoHandler(c *gin.Context) {
	id1, ok := h.parseID(c, "id1")
	if !ok {
		return
	}
	id2, ok := h.parseID(c, "id2")
	if !ok {
		return
	}

	caminho, err := h.service.Caminho(c.Request.Context(), id1, id2)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgCaminhoNaoEncontrado})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to find caminho")
		return
	}
	c.JSON(http.StatusOK, caminho)
}

// EstatisticasHandler handles GET /estatisticas/.
func (h *Handler) EstatisticasHandler(c *gin.Context) {
	est, err := h.service.Estatisticas(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "Failed to compute estatisticas")
		return
	}
	c.JSON(http.StatusOK, est)
}

// PessoasSimilaresHandler handles GET /pessoas/:id/similares.
func (h *Handler) PessoasSimilaresHandler(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	similares, err := h.service.PessoasSimilares(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err, "Failed to find pessoas similares")
		return
	}
	c.JSON(http.StatusOK, similares)
}

// ConsultaPersonalizadaHandler handles GET /query-personalizada/?cidade=&interesse=.
func (h *Handler) ConsultaPersonalizadaHandler(c *gin.Context) {
	cidade := c.DefaultQuery("cidade", defaultCidade)
	interesse := c.DefaultQuery("interesse", defaultInteresse)

	linhas, err := h.service.ConsultaPersonalizada(c.Request.Context(), cidade, interesse)
	if err != nil {
		h.internalError(c, err, "Failed to run consulta personalizada")
		return
	}
	c.JSON(http.StatusOK, linhas)
}

// HealthHandler handles GET /healthz.
func (h *Handler) HealthHandler(c *gin.Context) {
	status, healthy := h.service.Health(c.Request.Context())
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"healthy": healthy, "checks": status})
}
