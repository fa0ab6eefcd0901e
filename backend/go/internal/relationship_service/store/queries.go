package store

import "fmt"

// 所有查询都以 pessoa / id 两列返回人员，便于统一映射。
const (
	queryEnsureIndex = `CREATE INDEX pessoa_nome IF NOT EXISTS FOR (p:Pessoa) ON (p.nome)`

	queryCreatePessoa = `
	CREATE (p:Pessoa {nome: $nome, idade: $idade, interesses: $interesses})
	RETURN p AS pessoa, id(p) AS id`

	queryListPessoas = `MATCH (p:Pessoa) RETURN p AS pessoa, id(p) AS id`

	queryGetPessoa = `
	MATCH (p:Pessoa)
	WHERE id(p) = $id
	RETURN p AS pessoa, id(p) AS id`

	queryCreateRelacionamento = `
	MATCH (p1:Pessoa), (p2:Pessoa)
	WHERE id(p1) = $id1 AND id(p2) = $id2
	CREATE (p1)-[:CONHECE]->(p2)
	RETURN id(p1) AS origem, id(p2) AS destino`

	queryListAmigos = `
	MATCH (p:Pessoa)-[:CONHECE]->(amigo:Pessoa)
	WHERE id(p) = $id
	RETURN amigo AS pessoa, id(amigo) AS id`

	queryRecomendarAmigos = `
	MATCH (p:Pessoa)-[:CONHECE]->(:Pessoa)-[:CONHECE]->(rec:Pessoa)
	WHERE id(p) = $id AND p <> rec AND NOT (p)-[:CONHECE]->(rec)
	RETURN DISTINCT rec AS pessoa, id(rec) AS id
	LIMIT 5`

	queryPessoasPorInteresse = `
	MATCH (p:Pessoa)
	WHERE $interesse IN p.interesses
	RETURN p AS pessoa, id(p) AS id
	ORDER BY p.nome`

	queryCaminho = `
	MATCH (p1:Pessoa), (p2:Pessoa)
	WHERE id(p1) = $id1 AND id(p2) = $id2
	MATCH path = shortestPath((p1)-[:CONHECE*]-(p2))
	RETURN [n IN nodes(path) | n.nome] AS caminho, length(path) AS graus_separacao`

	queryTotalPessoas = `MATCH (p:Pessoa) RETURN count(p) AS total`

	queryTotalRelacionamentos = `MATCH ()-[r:CONHECE]->() RETURN count(r) AS total`

	queryTopCidades = `
	MATCH (p:Pessoa)
	WHERE p.cidade IS NOT NULL
	RETURN p.cidade AS cidade, count(p) AS quantidade
	ORDER BY quantidade DESC, cidade
	LIMIT 5`

	queryTopInteresses = `
	MATCH (p:Pessoa)
	UNWIND p.interesses AS interesse
	RETURN interesse, count(*) AS quantidade
	ORDER BY quantidade DESC, interesse
	LIMIT 5`

	queryPessoasSimilares = `
	MATCH (p:Pessoa)
	WHERE id(p) = $id
	MATCH (similar:Pessoa)
	WHERE similar <> p AND NOT (p)-[:CONHECE]-(similar)
	WITH similar, [i IN p.interesses WHERE i IN similar.interesses] AS comuns
	WHERE size(comuns) >= 2
	RETURN similar AS pessoa, id(similar) AS id, comuns AS interesses_comuns, size(comuns) AS score
	ORDER BY score DESC
	LIMIT 5`

	queryPersonalizada = `
	MATCH (p:Pessoa)
	WHERE p.cidade = $cidade AND $interesse IN p.interesses
	OPTIONAL MATCH (p)-[:CONHECE]->(amigo:Pessoa)
	WITH p, collect(amigo.nome) AS amigos
	RETURN p.nome AS pessoa, p.interesses AS interesses, amigos
	ORDER BY size(amigos) DESC`
)

// queryRedeSocial 生成可变长度遍历查询。Cypher 不允许在关系长度上使用参数，
// 因此深度必须是已校验的整数并直接写入模式中。
func queryRedeSocial(profundidade int) string {
	return fmt.Sprintf(`
	MATCH (p:Pessoa)-[:CONHECE*1..%d]-(conexao:Pessoa)
	WHERE id(p) = $id AND p <> conexao
	RETURN DISTINCT conexao AS pessoa, id(conexao) AS id
	ORDER BY pessoa.nome`, profundidade)
}
