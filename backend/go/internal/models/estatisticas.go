package models

// CidadeContagem 是按城市统计的人数。
type CidadeContagem struct {
	Cidade     string `json:"cidade"`
	Quantidade int64  `json:"quantidade"`
}

// InteresseContagem 是按兴趣统计的出现次数。
type InteresseContagem struct {
	Interesse  string `json:"interesse"`
	Quantidade int64  `json:"quantidade"`
}

// Estatisticas 汇总了整个社交网络的统计信息。
type Estatisticas struct {
	TotalPessoas         int64               `json:"total_pessoas"`
	TotalRelacionamentos int64               `json:"total_relacionamentos"`
	DensidadeRede        float64             `json:"densidade_rede"`
	TopCidades           []CidadeContagem    `json:"top_cidades"`
	TopInteresses        []InteresseContagem `json:"top_interesses"`
}
