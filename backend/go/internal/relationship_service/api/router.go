package api

import (
	"RelationshipManager/backend/go/internal/config"
	"RelationshipManager/backend/go/pkg/logger"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const msgBemVindo = "Bem-vindo à API de Gestão de Relacionamentos"

// SetupRouter 注册全部路由和全局中间件。
func SetupRouter(h *Handler, cfg config.ServerConfig, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(log), AccessLog(log), Metrics(), CORS(cfg.CorsAllowOrigins))

	pessoas := r.Group("/pessoas")
	{
		pessoas.POST("/", h.CreatePessoaHandler)
		pessoas.GET("/", h.ListPessoasHandler)
		pessoas.GET("/interesse/:interesse", h.PessoasPorInteresseHandler)
		pessoas.GET("/:id", h.GetPessoaHandler)
		pessoas.POST("/:id/conhece/:id2", h.CreateRelacionamentoHandler)
		pessoas.GET("/:id/amigos", h.ListAmigosHandler)
		pessoas.GET("/:id/rede/:profundidade", h.RedeSocialHandler)
		pessoas.GET("/:id/similares", h.PessoasSimilaresHandler)
	}

	r.GET("/recomendacoes/:id", h.RecomendacoesHandler)
	r.GET("/caminho/:id1/:id2", h.CaminhoHandler)
	r.GET("/estatisticas/", h.EstatisticasHandler)
	r.GET("/query-personalizada/", h.ConsultaPersonalizadaHandler)

	r.GET("/healthz", h.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/eventos", h.EventosWebSocketHandler(newUpgrader(cfg.CorsAllowOrigins)))

	registerFrontend(r, cfg.FrontendDir)
	return r
}

// registerFrontend 在前端目录存在时提供静态文件，否则 GET / 返回欢迎消息。
func registerFrontend(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	hasDir := isDir(dir)
	if hasDir {
		r.Static("/static", dir)
	}

	r.GET("/", func(c *gin.Context) {
		if hasDir && isFile(index) {
			c.File(index)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": msgBemVindo})
	})
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
