package store

import (
	"RelationshipManager/backend/go/internal/models"
	"fmt"
	"math"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// pessoaFromRecord 按字段名从记录中读取 pessoa 节点和 id 列。
// comCidade 为 true 时，缺少 cidade 属性的节点使用默认值。
func pessoaFromRecord(record *neo4j.Record, comCidade bool) (models.Pessoa, error) {
	raw, ok := record.Get("pessoa")
	if !ok {
		return models.Pessoa{}, fmt.Errorf("无法从结果中获取 'pessoa'")
	}
	node, ok := raw.(neo4j.Node)
	if !ok {
		return models.Pessoa{}, fmt.Errorf("'pessoa' 不是节点: %T", raw)
	}
	rawID, ok := record.Get("id")
	if !ok {
		return models.Pessoa{}, fmt.Errorf("无法从结果中获取 'id'")
	}
	id, ok := rawID.(int64)
	if !ok {
		return models.Pessoa{}, fmt.Errorf("'id' 不是整数: %T", rawID)
	}

	p := models.Pessoa{
		ID:         id,
		Nome:       asString(node.Props["nome"]),
		Idade:      asInt64(node.Props["idade"]),
		Interesses: asStrings(node.Props["interesses"]),
	}
	if comCidade {
		p.Cidade = asString(node.Props["cidade"])
		if p.Cidade == "" {
			p.Cidade = models.CidadeNaoInformada
		}
	}
	return p, nil
}

func pessoasFromRecords(records []*neo4j.Record, comCidade bool) ([]models.Pessoa, error) {
	pessoas := make([]models.Pessoa, 0, len(records))
	for _, record := range records {
		p, err := pessoaFromRecord(record, comCidade)
		if err != nil {
			return nil, err
		}
		pessoas = append(pessoas, p)
	}
	return pessoas, nil
}

func similarFromRecord(record *neo4j.Record) (models.PessoaSimilar, error) {
	p, err := pessoaFromRecord(record, true)
	if err != nil {
		return models.PessoaSimilar{}, err
	}
	comuns, _ := record.Get("interesses_comuns")
	score, _ := record.Get("score")
	return models.PessoaSimilar{
		Pessoa:            p,
		InteressesComuns:  asStrings(comuns),
		ScoreSimilaridade: asInt64(score),
	}, nil
}

func caminhoFromRecord(record *neo4j.Record) *models.Caminho {
	nomes, _ := record.Get("caminho")
	graus, _ := record.Get("graus_separacao")
	return &models.Caminho{
		Caminho:        asStrings(nomes),
		GrausSeparacao: asInt64(graus),
	}
}

// densidade 计算 关系数/人数，保留两位小数；没有人员时为 0。
func densidade(totalPessoas, totalRelacionamentos int64) float64 {
	if totalPessoas == 0 {
		return 0
	}
	return math.Round(float64(totalRelacionamentos)/float64(totalPessoas)*100) / 100
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// asStrings 把驱动返回的 []any 列表转换为 []string，nil 时返回空切片。
func asStrings(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
