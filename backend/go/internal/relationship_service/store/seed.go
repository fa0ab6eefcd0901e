package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	queryLimparBase = `MATCH (n) DETACH DELETE n`

	querySeedPessoas = `
	UNWIND $pessoas AS dados
	CREATE (:Pessoa {nome: dados.nome, idade: dados.idade, interesses: dados.interesses, cidade: dados.cidade})`

	querySeedRelacionamentos = `
	UNWIND $relacionamentos AS rel
	MATCH (origem:Pessoa {nome: rel.origem})
	MATCH (destino:Pessoa {nome: rel.destino})
	CREATE (origem)-[:CONHECE {desde: rel.desde, tipo: rel.tipo}]->(destino)`
)

type pessoaExemplo struct {
	Nome       string
	Idade      int64
	Interesses []string
	Cidade     string
}

type relacionamentoExemplo struct {
	Origem, Destino string
	Desde, Tipo     string
}

// PessoasExemplo 是演示数据集中的人员。
var PessoasExemplo = []pessoaExemplo{
	{"Alice Silva", 28, []string{"programação", "música", "viagens"}, "São Paulo"},
	{"Bob Santos", 32, []string{"esportes", "tecnologia", "cerveja"}, "Rio de Janeiro"},
	{"Carol Oliveira", 25, []string{"leitura", "cinema", "música"}, "São Paulo"},
	{"David Costa", 35, []string{"tecnologia", "gastronomia", "viagens"}, "Belo Horizonte"},
	{"Eva Pereira", 29, []string{"yoga", "natureza", "culinária"}, "Rio de Janeiro"},
	{"Felipe Lima", 31, []string{"esportes", "música", "festas"}, "São Paulo"},
	{"Gina Rodrigues", 27, []string{"arte", "cinema", "tecnologia"}, "Porto Alegre"},
}

// RelacionamentosExemplo 是演示数据集中的 CONHECE 关系，包含两条反向边。
var RelacionamentosExemplo = []relacionamentoExemplo{
	{"Alice Silva", "Bob Santos", "2022-01-15", "amigo"},
	{"Alice Silva", "Carol Oliveira", "2021-03-20", "colega"},
	{"Bob Santos", "David Costa", "2020-08-10", "amigo"},
	{"Carol Oliveira", "David Costa", "2023-02-14", "amigo"},
	{"David Costa", "Eva Pereira", "2022-11-05", "colega"},
	{"Eva Pereira", "Felipe Lima", "2021-07-30", "amigo"},
	{"Felipe Lima", "Gina Rodrigues", "2020-12-25", "familia"},
	{"Bob Santos", "Felipe Lima", "2023-01-08", "colega"},
	{"Bob Santos", "Alice Silva", "2022-01-15", "amigo"},
	{"Carol Oliveira", "Alice Silva", "2021-03-20", "colega"},
}

// EnsureSchema 创建 Pessoa.nome 索引，已存在时为空操作。
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, queryEnsureIndex, nil)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// LimparBase 删除数据库中的所有节点和关系。
func (s *Neo4jStore) LimparBase(ctx context.Context) error {
	_, err := s.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, queryLimparBase, nil)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	return nil
}

// PopularExemplo 在同一个写事务中写入演示人员和关系。调用方应先执行 LimparBase。
func (s *Neo4jStore) PopularExemplo(ctx context.Context) error {
	pessoas := make([]map[string]interface{}, 0, len(PessoasExemplo))
	for _, p := range PessoasExemplo {
		pessoas = append(pessoas, map[string]interface{}{
			"nome":       p.Nome,
			"idade":      p.Idade,
			"interesses": p.Interesses,
			"cidade":     p.Cidade,
		})
	}
	relacionamentos := make([]map[string]interface{}, 0, len(RelacionamentosExemplo))
	for _, r := range RelacionamentosExemplo {
		relacionamentos = append(relacionamentos, map[string]interface{}{
			"origem":  r.Origem,
			"destino": r.Destino,
			"desde":   r.Desde,
			"tipo":    r.Tipo,
		})
	}

	_, err := s.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, querySeedPessoas, map[string]interface{}{"pessoas": pessoas})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		res, err = tx.Run(ctx, querySeedRelacionamentos, map[string]interface{}{"relacionamentos": relacionamentos})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to populate sample data: %w", err)
	}
	return nil
}

// Contagens 返回当前的人员数量和关系数量。
func (s *Neo4jStore) Contagens(ctx context.Context) (pessoas, relacionamentos int64, err error) {
	result, err := s.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		p, err := count(ctx, tx, queryTotalPessoas)
		if err != nil {
			return nil, err
		}
		r, err := count(ctx, tx, queryTotalRelacionamentos)
		if err != nil {
			return nil, err
		}
		return [2]int64{p, r}, nil
	})
	if err != nil {
		return 0, 0, err
	}
	totais := result.([2]int64)
	return totais[0], totais[1], nil
}
