package store

import (
	"RelationshipManager/backend/go/internal/models"
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// collect 执行查询并读取全部记录。
func collect(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// readPessoas 在读事务中执行返回 pessoa/id 列的查询。
func (s *Neo4jStore) readPessoas(ctx context.Context, query string, params map[string]interface{}, comCidade bool) ([]models.Pessoa, error) {
	result, err := s.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		records, err := collect(ctx, tx, query, params)
		if err != nil {
			return nil, err
		}
		return pessoasFromRecords(records, comCidade)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Pessoa), nil
}

// CreatePessoa 创建一个新的 Pessoa 节点。每次调用都会创建新节点，不做去重。
func (s *Neo4jStore) CreatePessoa(ctx context.Context, in models.PessoaCreate) (*models.Pessoa, error) {
	interesses := in.Interesses
	if interesses == nil {
		interesses = []string{}
	}
	var nome string
	if in.Nome != nil {
		nome = *in.Nome
	}
	var idade int64
	if in.Idade != nil {
		idade = *in.Idade
	}
	params := map[string]interface{}{
		"nome":       nome,
		"idade":      idade,
		"interesses": interesses,
	}

	result, err := s.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, queryCreatePessoa, params)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return pessoaFromRecord(record, false)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pessoa: %w", err)
	}
	p := result.(models.Pessoa)
	return &p, nil
}

// ListPessoas 返回所有人员，顺序不保证。
func (s *Neo4jStore) ListPessoas(ctx context.Context) ([]models.Pessoa, error) {
	return s.readPessoas(ctx, queryListPessoas, nil, false)
}

// GetPessoa 按 Neo4j 分配的 id 查找人员，不存在时返回 ErrNotFound。
func (s *Neo4jStore) GetPessoa(ctx context.Context, id int64) (*models.Pessoa, error) {
	pessoas, err := s.readPessoas(ctx, queryGetPessoa, map[string]interface{}{"id": id}, false)
	if err != nil {
		return nil, err
	}
	if len(pessoas) == 0 {
		return nil, ErrNotFound
	}
	return &pessoas[0], nil
}

// CreateRelacionamento 创建 id1 -> id2 的 CONHECE 关系。
// 任一 id 不存在时不会创建任何边，并返回 ErrRelacionamentoInvalido。
func (s *Neo4jStore) CreateRelacionamento(ctx context.Context, id1, id2 int64) error {
	params := map[string]interface{}{"id1": id1, "id2": id2}
	result, err := s.db.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		records, err := collect(ctx, tx, queryCreateRelacionamento, params)
		if err != nil {
			return nil, err
		}
		return len(records), nil
	})
	if err != nil {
		return fmt.Errorf("failed to create relacionamento: %w", err)
	}
	if result.(int) == 0 {
		return ErrRelacionamentoInvalido
	}
	return nil
}

// ListAmigos 返回 id 的所有出边目标。
func (s *Neo4jStore) ListAmigos(ctx context.Context, id int64) ([]models.Pessoa, error) {
	return s.readPessoas(ctx, queryListAmigos, map[string]interface{}{"id": id}, false)
}

// RecomendarAmigos 返回朋友的朋友，排除自己和已直接认识的人，最多 5 个。
func (s *Neo4jStore) RecomendarAmigos(ctx context.Context, id int64) ([]models.Pessoa, error) {
	return s.readPessoas(ctx, queryRecomendarAmigos, map[string]interface{}{"id": id}, false)
}

// RedeSocial 返回 1..profundidade 跳内（不分方向）可达的所有人员，按名字排序。
// profundidade 必须已由调用方校验为正数。
func (s *Neo4jStore) RedeSocial(ctx context.Context, id int64, profundidade int) ([]models.Pessoa, error) {
	if profundidade < 1 {
		return nil, fmt.Errorf("profundidade inválida: %d", profundidade)
	}
	return s.readPessoas(ctx, queryRedeSocial(profundidade), map[string]interface{}{"id": id}, true)
}

// PessoasPorInteresse 返回 interesses 中包含给定兴趣（精确匹配，区分大小写）的人员。
func (s *Neo4jStore) PessoasPorInteresse(ctx context.Context, interesse string) ([]models.Pessoa, error) {
	return s.readPessoas(ctx, queryPessoasPorInteresse, map[string]interface{}{"interesse": interesse}, true)
}

// Caminho 计算两人之间不分方向的最短路径。
// 同一个人返回只含其名字、长度为 0 的路径；不可达时返回 ErrNotFound。
func (s *Neo4jStore) Caminho(ctx context.Context, id1, id2 int64) (*models.Caminho, error) {
	if id1 == id2 {
		p, err := s.GetPessoa(ctx, id1)
		if err != nil {
			return nil, err
		}
		return &models.Caminho{Caminho: []string{p.Nome}, GrausSeparacao: 0}, nil
	}

	params := map[string]interface{}{"id1": id1, "id2": id2}
	result, err := s.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		records, err := collect(ctx, tx, queryCaminho, params)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return (*models.Caminho)(nil), nil
		}
		return caminhoFromRecord(records[0]), nil
	})
	if err != nil {
		return nil, err
	}
	caminho := result.(*models.Caminho)
	if caminho == nil || len(caminho.Caminho) == 0 {
		return nil, ErrNotFound
	}
	return caminho, nil
}

// Estatisticas 在同一个读事务中计算总数、密度和前 5 的城市与兴趣。
func (s *Neo4jStore) Estatisticas(ctx context.Context) (*models.Estatisticas, error) {
	result, err := s.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		totalPessoas, err := count(ctx, tx, queryTotalPessoas)
		if err != nil {
			return nil, err
		}
		totalRelacionamentos, err := count(ctx, tx, queryTotalRelacionamentos)
		if err != nil {
			return nil, err
		}

		cidades, err := collect(ctx, tx, queryTopCidades, nil)
		if err != nil {
			return nil, err
		}
		topCidades := make([]models.CidadeContagem, 0, len(cidades))
		for _, r := range cidades {
			cidade, _ := r.Get("cidade")
			quantidade, _ := r.Get("quantidade")
			topCidades = append(topCidades, models.CidadeContagem{Cidade: asString(cidade), Quantidade: asInt64(quantidade)})
		}

		interesses, err := collect(ctx, tx, queryTopInteresses, nil)
		if err != nil {
			return nil, err
		}
		topInteresses := make([]models.InteresseContagem, 0, len(interesses))
		for _, r := range interesses {
			interesse, _ := r.Get("interesse")
			quantidade, _ := r.Get("quantidade")
			topInteresses = append(topInteresses, models.InteresseContagem{Interesse: asString(interesse), Quantidade: asInt64(quantidade)})
		}

		return &models.Estatisticas{
			TotalPessoas:         totalPessoas,
			TotalRelacionamentos: totalRelacionamentos,
			DensidadeRede:        densidade(totalPessoas, totalRelacionamentos),
			TopCidades:           topCidades,
			TopInteresses:        topInteresses,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute estatisticas: %w", err)
	}
	return result.(*models.Estatisticas), nil
}

// PessoasSimilares 返回与 id 至少有 2 个共同兴趣、且与其没有直接关系的人，
// 按共同兴趣数量降序，最多 5 个。
func (s *Neo4jStore) PessoasSimilares(ctx context.Context, id int64) ([]models.PessoaSimilar, error) {
	result, err := s.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		records, err := collect(ctx, tx, queryPessoasSimilares, map[string]interface{}{"id": id})
		if err != nil {
			return nil, err
		}
		similares := make([]models.PessoaSimilar, 0, len(records))
		for _, r := range records {
			sim, err := similarFromRecord(r)
			if err != nil {
				return nil, err
			}
			similares = append(similares, sim)
		}
		return similares, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.PessoaSimilar), nil
}

// ConsultaPersonalizada 返回某城市中拥有某兴趣的人以及他们认识的人的名字。
func (s *Neo4jStore) ConsultaPersonalizada(ctx context.Context, cidade, interesse string) ([]models.ResultadoPersonalizado, error) {
	params := map[string]interface{}{"cidade": cidade, "interesse": interesse}
	result, err := s.db.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		records, err := collect(ctx, tx, queryPersonalizada, params)
		if err != nil {
			return nil, err
		}
		linhas := make([]models.ResultadoPersonalizado, 0, len(records))
		for _, r := range records {
			pessoa, _ := r.Get("pessoa")
			interesses, _ := r.Get("interesses")
			amigos, _ := r.Get("amigos")
			linhas = append(linhas, models.ResultadoPersonalizado{
				Pessoa:     asString(pessoa),
				Interesses: asStrings(interesses),
				Amigos:     asStrings(amigos),
			})
		}
		return linhas, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.ResultadoPersonalizado), nil
}

func count(ctx context.Context, tx neo4j.ManagedTransaction, query string) (int64, error) {
	res, err := tx.Run(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	record, err := res.Single(ctx)
	if err != nil {
		return 0, err
	}
	total, _ := record.Get("total")
	return asInt64(total), nil
}
