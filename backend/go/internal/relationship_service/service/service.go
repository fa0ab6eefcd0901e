package service

import (
	"RelationshipManager/backend/go/internal/models"
	"RelationshipManager/backend/go/internal/relationship_service/store"
	"RelationshipManager/backend/go/pkg/logger"
	"RelationshipManager/backend/go/pkg/metrics"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// ErrProfundidadeInvalida 表示网络遍历的深度超出允许范围。
var ErrProfundidadeInvalida = errors.New("profundidade inválida")

// Publisher 发布领域事件。
type Publisher interface {
	Publish(ctx context.Context, evento *models.Evento) error
}

// NopPublisher 在未配置 Kafka 时使用。
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.Evento) error { return nil }

// HealthCheck 检查某个外部依赖是否可用。
type HealthCheck func(ctx context.Context) error

// RelationshipService 在 GraphStore 之上提供业务逻辑：参数校验、统计缓存、
// 领域事件发布以及向 WebSocket 订阅者广播。
type RelationshipService struct {
	store           store.GraphStore
	cache           Cache
	publisher       Publisher
	connManager     *ConnectionManager
	logger          *logger.Logger
	maxProfundidade int
	checks          map[string]HealthCheck
	// relay 为 true 时事件经 Kafka 消费者回到本实例后才广播
	relay bool

	newID func() string
	now   func() time.Time
}

// NewRelationshipService creates a new RelationshipService.
// cache 和 publisher 可以为 nil，此时分别退化为不缓存和不发布。
func NewRelationshipService(store store.GraphStore, cache Cache, publisher Publisher, connManager *ConnectionManager, logger *logger.Logger, maxProfundidade int) *RelationshipService {
	if cache == nil {
		cache = NopCache{}
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if connManager == nil {
		connManager = NewConnectionManager()
	}
	return &RelationshipService{
		store:           store,
		cache:           cache,
		publisher:       publisher,
		connManager:     connManager,
		logger:          logger,
		maxProfundidade: maxProfundidade,
		checks:          make(map[string]HealthCheck),
		newID:           func() string { return uuid.New().String() },
		now:             time.Now,
	}
}

// EnableEventRelay 让 WebSocket 广播改由 HandleEvento 驱动，
// 这样多个实例的订阅者都能收到任一实例产生的事件。
func (s *RelationshipService) EnableEventRelay() {
	s.relay = true
}

// HandleEvento 处理从事件主题消费到的消息，并广播给本实例的订阅者。
func (s *RelationshipService) HandleEvento(msg kafka.Message) error {
	var evento models.Evento
	if err := json.Unmarshal(msg.Value, &evento); err != nil {
		return fmt.Errorf("invalid evento payload: %w", err)
	}
	if evento.Tipo == "" {
		return errors.New("invalid evento payload: missing tipo")
	}
	s.connManager.Broadcast(msg.Value)
	return nil
}

// RegisterHealthCheck 注册一个在 Health 中执行的依赖检查。
func (s *RelationshipService) RegisterHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

// Health 执行所有已注册的检查，返回每个依赖的状态以及是否全部健康。
func (s *RelationshipService) Health(ctx context.Context) (map[string]string, bool) {
	status := make(map[string]string, len(s.checks))
	healthy := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}

// AddConnection registers a WebSocket subscriber.
func (s *RelationshipService) AddConnection(id string, conn Conn) {
	s.connManager.Add(id, conn)
	metrics.WebSocketConnections.Set(float64(s.connManager.Count()))
	s.logger.WithPayload(map[string]interface{}{"conn_id": id}).Info("WebSocket connection added")
}

// RemoveConnection removes a WebSocket subscriber.
func (s *RelationshipService) RemoveConnection(id string) {
	s.connManager.Remove(id)
	metrics.WebSocketConnections.Set(float64(s.connManager.Count()))
	s.logger.WithPayload(map[string]interface{}{"conn_id": id}).Info("WebSocket connection removed")
}

func track[T any](operation string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.ObserveQuery(operation, time.Since(start), err)
	return v, err
}

// CreatePessoa 创建人员，随后使统计缓存失效并发布 pessoa_criada 事件。
func (s *RelationshipService) CreatePessoa(ctx context.Context, in models.PessoaCreate) (*models.Pessoa, error) {
	pessoa, err := track("create_pessoa", func() (*models.Pessoa, error) {
		return s.store.CreatePessoa(ctx, in)
	})
	if err != nil {
		s.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to create pessoa in store")
		return nil, err
	}

	s.afterWrite(ctx, &models.Evento{Tipo: models.EventoPessoaCriada, Pessoa: pessoa})
	return pessoa, nil
}

func (s *RelationshipService) ListPessoas(ctx context.Context) ([]models.Pessoa, error) {
	return track("list_pessoas", func() ([]models.Pessoa, error) {
		return s.store.ListPessoas(ctx)
	})
}

func (s *RelationshipService) GetPessoa(ctx context.Context, id int64) (*models.Pessoa, error) {
	return track("get_pessoa", func() (*models.Pessoa, error) {
		return s.store.GetPessoa(ctx, id)
	})
}

// CreateRelacionamento 创建 id1 -> id2 的 CONHECE 关系并发布 relacionamento_criado 事件。
func (s *RelationshipService) CreateRelacionamento(ctx context.Context, id1, id2 int64) error {
	_, err := track("create_relacionamento", func() (struct{}, error) {
		return struct{}{}, s.store.CreateRelacionamento(ctx, id1, id2)
	})
	if err != nil {
		if !errors.Is(err, store.ErrRelacionamentoInvalido) {
			s.logger.WithError(models.ErrorInfo{Message: err.Error()}).WithPayload(map[string]interface{}{"id1": id1, "id2": id2}).Error("Failed to create relacionamento in store")
		}
		return err
	}

	s.afterWrite(ctx, &models.Evento{Tipo: models.EventoRelacionamentoCriado, Origem: &id1, Destino: &id2})
	return nil
}

func (s *RelationshipService) ListAmigos(ctx context.Context, id int64) ([]models.Pessoa, error) {
	return track("list_amigos", func() ([]models.Pessoa, error) {
		return s.store.ListAmigos(ctx, id)
	})
}

func (s *RelationshipService) RecomendarAmigos(ctx context.Context, id int64) ([]models.Pessoa, error) {
	return track("recomendar_amigos", func() ([]models.Pessoa, error) {
		return s.store.RecomendarAmigos(ctx, id)
	})
}

// RedeSocial 校验深度在 1..maxProfundidade 之间后执行网络遍历。
func (s *RelationshipService) RedeSocial(ctx context.Context, id int64, profundidade int) ([]models.Pessoa, error) {
	if profundidade < 1 || profundidade > s.maxProfundidade {
		return nil, fmt.Errorf("%w: deve estar entre 1 e %d", ErrProfundidadeInvalida, s.maxProfundidade)
	}
	return track("rede_social", func() ([]models.Pessoa, error) {
		return s.store.RedeSocial(ctx, id, profundidade)
	})
}

func (s *RelationshipService) PessoasPorInteresse(ctx context.Context, interesse string) ([]models.Pessoa, error) {
	return track("pessoas_por_interesse", func() ([]models.Pessoa, error) {
		return s.store.PessoasPorInteresse(ctx, interesse)
	})
}

func (s *RelationshipService) Caminho(ctx context.Context, id1, id2 int64) (*models.Caminho, error) {
	return track("caminho", func() (*models.Caminho, error) {
		return s.store.Caminho(ctx, id1, id2)
	})
}

// Estatisticas 优先读取缓存；缓存不可用时直接查询数据库，缓存错误只记录日志。
func (s *RelationshipService) Estatisticas(ctx context.Context) (*models.Estatisticas, error) {
	cached, ok, err := s.cache.GetEstatisticas(ctx)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Failed to read estatisticas from cache")
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	est, err := track("estatisticas", func() (*models.Estatisticas, error) {
		return s.store.Estatisticas(ctx)
	})
	if err != nil {
		s.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to compute estatisticas")
		return nil, err
	}

	if err := s.cache.SetEstatisticas(ctx, est); err != nil {
		s.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Failed to write estatisticas to cache")
	}
	return est, nil
}

func (s *RelationshipService) PessoasSimilares(ctx context.Context, id int64) ([]models.PessoaSimilar, error) {
	return track("pessoas_similares", func() ([]models.PessoaSimilar, error) {
		return s.store.PessoasSimilares(ctx, id)
	})
}

func (s *RelationshipService) ConsultaPersonalizada(ctx context.Context, cidade, interesse string) ([]models.ResultadoPersonalizado, error) {
	return track("consulta_personalizada", func() ([]models.ResultadoPersonalizado, error) {
		return s.store.ConsultaPersonalizada(ctx, cidade, interesse)
	})
}

// afterWrite 使统计缓存失效，发布事件并广播给 WebSocket 订阅者。
// 这些步骤都不会让已经成功的写操作失败。relay 模式下发布失败时退回本地广播。
func (s *RelationshipService) afterWrite(ctx context.Context, evento *models.Evento) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Failed to invalidate estatisticas cache")
	}

	evento.ID = s.newID()
	evento.Timestamp = s.now().UTC()

	err := s.publisher.Publish(ctx, evento)
	metrics.EventsPublished.WithLabelValues(evento.Tipo, metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.WithError(models.ErrorInfo{Message: err.Error()}).WithPayload(map[string]interface{}{"evento_id": evento.ID, "tipo": evento.Tipo}).Warn("Failed to publish evento")
	}
	if s.relay && err == nil {
		return
	}

	msg, err := json.Marshal(evento)
	if err != nil {
		s.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Failed to marshal evento for broadcast")
		return
	}
	s.connManager.Broadcast(msg)
}
