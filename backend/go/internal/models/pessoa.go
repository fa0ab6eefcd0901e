package models

// CidadeNaoInformada 是节点缺少 cidade 属性时返回的默认值。
const CidadeNaoInformada = "Não informada"

// PessoaCreate 定义了创建 Pessoa 的请求体。
// 三个字段都必须出现；空字符串和空列表是合法值。
type PessoaCreate struct {
	Nome       *string  `json:"nome" binding:"required"`
	Idade      *int64   `json:"idade" binding:"required"`
	Interesses []string `json:"interesses" binding:"required"`
}

// Pessoa 是图中的一个人员节点，ID 由 Neo4j 分配且不可变。
type Pessoa struct {
	ID         int64    `json:"id"`
	Nome       string   `json:"nome"`
	Idade      int64    `json:"idade"`
	Interesses []string `json:"interesses"`
	Cidade     string   `json:"cidade,omitempty"`
}

// PessoaSimilar 是相似度搜索的结果，附带共同兴趣及其数量。
type PessoaSimilar struct {
	Pessoa
	InteressesComuns  []string `json:"interesses_comuns"`
	ScoreSimilaridade int64    `json:"score_similaridade"`
}

// Caminho 描述两个人之间的最短路径。
type Caminho struct {
	Caminho        []string `json:"caminho"`
	GrausSeparacao int64    `json:"graus_separacao"`
}

// ResultadoPersonalizado 是自定义查询返回的一行：某人、其兴趣以及其认识的人的名字。
type ResultadoPersonalizado struct {
	Pessoa     string   `json:"pessoa"`
	Interesses []string `json:"interesses"`
	Amigos     []string `json:"amigos"`
}
