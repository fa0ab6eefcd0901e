//go:build integration
// +build integration

package store

import (
	"RelationshipManager/backend/go/internal/config"
	neo4jdb "RelationshipManager/backend/go/internal/database/neo4j"
	"RelationshipManager/backend/go/internal/models"
	"RelationshipManager/backend/go/pkg/logger"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupNeo4jStore 启动一个 Neo4j 容器并返回连接到它的 Neo4jStore。
// 没有 Docker 时跳过测试。
func setupNeo4jStore(t *testing.T, ctx context.Context) *Neo4jStore {
	t.Helper()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker not available, skipping integration test")
	}
	if err := provider.Health(ctx); err != nil {
		t.Skip("Docker not running, skipping integration test")
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "neo4j:5",
			ExposedPorts: []string{"7687/tcp"},
			Env:          map[string]string{"NEO4J_AUTH": "none"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("7687/tcp"),
				wait.ForLog("Started."),
			).WithDeadline(120 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Neo4j container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	logger.InitWithOutput(logrus.InfoLevel, io.Discard)
	// NEO4J_AUTH=none 时服务端忽略凭据
	client := neo4jdb.NewClient(&config.Neo4jConfig{
		Uri:         fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		Username:    "neo4j",
		Password:    "ignored",
		MaxAttempts: 3,
	}, logger.New("store-integration", "", ""))
	require.NoError(t, client.Connect(ctx))
	t.Cleanup(func() { client.Close(context.Background()) })
	require.NoError(t, client.HealthCheck(ctx))

	s := NewNeo4jStore(client)
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

// reset 重新写入演示数据，并返回 名字 -> id 的映射。
func reset(t *testing.T, ctx context.Context, s *Neo4jStore) map[string]int64 {
	t.Helper()
	require.NoError(t, s.LimparBase(ctx))
	require.NoError(t, s.PopularExemplo(ctx))

	todas, err := s.ListPessoas(ctx)
	require.NoError(t, err)
	ids := make(map[string]int64, len(todas))
	for _, p := range todas {
		ids[p.Nome] = p.ID
	}
	require.Len(t, ids, len(PessoasExemplo))
	return ids
}

func criar(t *testing.T, ctx context.Context, s *Neo4jStore, nome string, interesses ...string) int64 {
	t.Helper()
	idade := int64(30)
	if interesses == nil {
		interesses = []string{}
	}
	p, err := s.CreatePessoa(ctx, models.PessoaCreate{Nome: &nome, Idade: &idade, Interesses: interesses})
	require.NoError(t, err)
	return p.ID
}

func nomes(pessoas []models.Pessoa) []string {
	out := make([]string, 0, len(pessoas))
	for _, p := range pessoas {
		out = append(out, p.Nome)
	}
	return out
}

func TestNeo4jStore_Integration(t *testing.T) {
	ctx := context.Background()
	s := setupNeo4jStore(t, ctx)

	t.Run("seed counts", func(t *testing.T) {
		reset(t, ctx, s)
		pessoas, relacionamentos, err := s.Contagens(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), pessoas)
		assert.Equal(t, int64(10), relacionamentos)
	})

	t.Run("create and get", func(t *testing.T) {
		reset(t, ctx, s)
		id := criar(t, ctx, s, "", "música")

		p, err := s.GetPessoa(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "", p.Nome)
		assert.Equal(t, []string{"música"}, p.Interesses)
		assert.Empty(t, p.Cidade)

		_, err = s.GetPessoa(ctx, id+1000)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("relacionamento requires both ids", func(t *testing.T) {
		ids := reset(t, ctx, s)
		err := s.CreateRelacionamento(ctx, ids["Alice Silva"], 987654)
		assert.ErrorIs(t, err, ErrRelacionamentoInvalido)

		_, total, err := s.Contagens(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10), total)
	})

	t.Run("amigos follow outgoing edges", func(t *testing.T) {
		ids := reset(t, ctx, s)
		amigos, err := s.ListAmigos(ctx, ids["Alice Silva"])
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Bob Santos", "Carol Oliveira"}, nomes(amigos))

		amigos, err = s.ListAmigos(ctx, ids["Gina Rodrigues"])
		require.NoError(t, err)
		assert.Empty(t, amigos)
	})

	t.Run("recomendacoes exclude self and direct friends", func(t *testing.T) {
		ids := reset(t, ctx, s)
		recs, err := s.RecomendarAmigos(ctx, ids["Alice Silva"])
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"David Costa", "Felipe Lima"}, nomes(recs))

		recs, err = s.RecomendarAmigos(ctx, ids["Bob Santos"])
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Carol Oliveira", "Eva Pereira", "Gina Rodrigues"}, nomes(recs))
	})

	t.Run("recomendacoes capped at five", func(t *testing.T) {
		reset(t, ctx, s)
		hub := criar(t, ctx, s, "Hub")
		ponte := criar(t, ctx, s, "Ponte")
		require.NoError(t, s.CreateRelacionamento(ctx, hub, ponte))
		for i := 0; i < 7; i++ {
			require.NoError(t, s.CreateRelacionamento(ctx, ponte, criar(t, ctx, s, fmt.Sprintf("Amigo %d", i))))
		}

		recs, err := s.RecomendarAmigos(ctx, hub)
		require.NoError(t, err)
		assert.Len(t, recs, 5)
		assert.NotContains(t, nomes(recs), "Ponte")
		assert.NotContains(t, nomes(recs), "Hub")
	})

	t.Run("rede social by depth", func(t *testing.T) {
		ids := reset(t, ctx, s)
		alice := ids["Alice Silva"]

		rede1, err := s.RedeSocial(ctx, alice, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob Santos", "Carol Oliveira"}, nomes(rede1))
		for _, p := range rede1 {
			assert.NotEmpty(t, p.Cidade)
		}

		rede2, err := s.RedeSocial(ctx, alice, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob Santos", "Carol Oliveira", "David Costa", "Felipe Lima"}, nomes(rede2))
		assert.Subset(t, nomes(rede2), nomes(rede1))
		assert.NotContains(t, nomes(rede2), "Alice Silva")

		_, err = s.RedeSocial(ctx, alice, 0)
		assert.Error(t, err)
	})

	t.Run("cidade defaults when missing", func(t *testing.T) {
		reset(t, ctx, s)
		criar(t, ctx, s, "Sem Cidade", "música")

		pessoas, err := s.PessoasPorInteresse(ctx, "música")
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice Silva", "Carol Oliveira", "Felipe Lima", "Sem Cidade"}, nomes(pessoas))
		assert.Equal(t, models.CidadeNaoInformada, pessoas[3].Cidade)
		assert.Equal(t, "São Paulo", pessoas[0].Cidade)

		pessoas, err = s.PessoasPorInteresse(ctx, "Música")
		require.NoError(t, err)
		assert.Empty(t, pessoas)
	})

	t.Run("caminho", func(t *testing.T) {
		ids := reset(t, ctx, s)

		c, err := s.Caminho(ctx, ids["Alice Silva"], ids["Gina Rodrigues"])
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice Silva", "Bob Santos", "Felipe Lima", "Gina Rodrigues"}, c.Caminho)
		assert.Equal(t, int64(3), c.GrausSeparacao)

		// 路径不区分方向
		c, err = s.Caminho(ctx, ids["Gina Rodrigues"], ids["Eva Pereira"])
		require.NoError(t, err)
		assert.Equal(t, int64(2), c.GrausSeparacao)

		c, err = s.Caminho(ctx, ids["Alice Silva"], ids["Alice Silva"])
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice Silva"}, c.Caminho)
		assert.Equal(t, int64(0), c.GrausSeparacao)

		isolada := criar(t, ctx, s, "Isolada")
		_, err = s.Caminho(ctx, ids["Alice Silva"], isolada)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.Caminho(ctx, ids["Alice Silva"], isolada+1000)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("estatisticas", func(t *testing.T) {
		reset(t, ctx, s)
		est, err := s.Estatisticas(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(7), est.TotalPessoas)
		assert.Equal(t, int64(10), est.TotalRelacionamentos)
		assert.InDelta(t, 1.43, est.DensidadeRede, 1e-9)

		require.Len(t, est.TopCidades, 4)
		assert.Equal(t, models.CidadeContagem{Cidade: "São Paulo", Quantidade: 3}, est.TopCidades[0])

		require.Len(t, est.TopInteresses, 5)
		assert.Equal(t, models.InteresseContagem{Interesse: "música", Quantidade: 3}, est.TopInteresses[0])
		assert.Equal(t, models.InteresseContagem{Interesse: "tecnologia", Quantidade: 3}, est.TopInteresses[1])
	})

	t.Run("similares need two shared interesses and no edge", func(t *testing.T) {
		ids := reset(t, ctx, s)
		alice := ids["Alice Silva"]

		sims, err := s.PessoasSimilares(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, sims)

		criar(t, ctx, s, "Helena", "programação", "música", "viagens")
		criar(t, ctx, s, "Igor", "música", "viagens")
		criar(t, ctx, s, "Júlia", "música")
		kaio := criar(t, ctx, s, "Kaio", "programação", "música")
		require.NoError(t, s.CreateRelacionamento(ctx, alice, kaio))
		lia := criar(t, ctx, s, "Lia", "programação", "viagens")
		require.NoError(t, s.CreateRelacionamento(ctx, lia, alice))

		sims, err = s.PessoasSimilares(ctx, alice)
		require.NoError(t, err)
		require.Len(t, sims, 2)
		assert.Equal(t, "Helena", sims[0].Nome)
		assert.Equal(t, int64(3), sims[0].ScoreSimilaridade)
		assert.ElementsMatch(t, []string{"programação", "música", "viagens"}, sims[0].InteressesComuns)
		assert.Equal(t, "Igor", sims[1].Nome)
		assert.Equal(t, int64(2), sims[1].ScoreSimilaridade)
	})

	t.Run("similares capped at five", func(t *testing.T) {
		ids := reset(t, ctx, s)
		for i := 0; i < 7; i++ {
			criar(t, ctx, s, fmt.Sprintf("Gêmeo %d", i), "programação", "música")
		}

		sims, err := s.PessoasSimilares(ctx, ids["Alice Silva"])
		require.NoError(t, err)
		assert.Len(t, sims, 5)
	})

	t.Run("consulta personalizada", func(t *testing.T) {
		reset(t, ctx, s)
		linhas, err := s.ConsultaPersonalizada(ctx, "São Paulo", "música")
		require.NoError(t, err)
		require.Len(t, linhas, 3)

		assert.ElementsMatch(t, []string{"Alice Silva", "Carol Oliveira"}, []string{linhas[0].Pessoa, linhas[1].Pessoa})
		assert.Len(t, linhas[0].Amigos, 2)
		assert.Equal(t, "Felipe Lima", linhas[2].Pessoa)
		assert.Equal(t, []string{"Gina Rodrigues"}, linhas[2].Amigos)
	})
}
