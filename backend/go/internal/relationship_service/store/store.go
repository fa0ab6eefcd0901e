package store

import (
	"RelationshipManager/backend/go/internal/models"
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	// ErrNotFound 表示请求的人员或路径不存在。
	ErrNotFound = errors.New("registro não encontrado")
	// ErrRelacionamentoInvalido 表示创建关系时至少有一个 id 不存在。
	ErrRelacionamentoInvalido = errors.New("não foi possível criar o relacionamento")
)

// TransactionWork 是在托管事务中执行的工作函数。
type TransactionWork = func(tx neo4j.ManagedTransaction) (interface{}, error)

// Executor 抽象了图数据库适配器提供的托管事务能力。
type Executor interface {
	ExecuteRead(ctx context.Context, work TransactionWork) (interface{}, error)
	ExecuteWrite(ctx context.Context, work TransactionWork) (interface{}, error)
}

// GraphStore 定义了人员与 CONHECE 关系的全部查询。
type GraphStore interface {
	CreatePessoa(ctx context.Context, in models.PessoaCreate) (*models.Pessoa, error)
	ListPessoas(ctx context.Context) ([]models.Pessoa, error)
	GetPessoa(ctx context.Context, id int64) (*models.Pessoa, error)
	CreateRelacionamento(ctx context.Context, id1, id2 int64) error
	ListAmigos(ctx context.Context, id int64) ([]models.Pessoa, error)
	RecomendarAmigos(ctx context.Context, id int64) ([]models.Pessoa, error)
	RedeSocial(ctx context.Context, id int64, profundidade int) ([]models.Pessoa, error)
	PessoasPorInteresse(ctx context.Context, interesse string) ([]models.Pessoa, error)
	Caminho(ctx context.Context, id1, id2 int64) (*models.Caminho, error)
	Estatisticas(ctx context.Context) (*models.Estatisticas, error)
	PessoasSimilares(ctx context.Context, id int64) ([]models.PessoaSimilar, error)
	ConsultaPersonalizada(ctx context.Context, cidade, interesse string) ([]models.ResultadoPersonalizado, error)
}

// Neo4jStore 是 GraphStore 基于 Neo4j 的实现。
type Neo4jStore struct {
	db Executor
}

// NewNeo4jStore creates a new Neo4jStore.
func NewNeo4jStore(db Executor) *Neo4jStore {
	return &Neo4jStore{db: db}
}
