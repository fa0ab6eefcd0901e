package models

import "time"

// 领域事件类型。
const (
	EventoPessoaCriada         = "pessoa_criada"
	EventoRelacionamentoCriado = "relacionamento_criado"
)

// Evento 是写操作成功后发布到 Kafka 和 WebSocket 订阅者的领域事件。
type Evento struct {
	ID        string    `json:"id"`
	Tipo      string    `json:"tipo"`
	Timestamp time.Time `json:"timestamp"`
	Pessoa    *Pessoa   `json:"pessoa,omitempty"`  // 仅 pessoa_criada
	Origem    *int64    `json:"origem,omitempty"`  // 仅 relacionamento_criado
	Destino   *int64    `json:"destino,omitempty"` // 仅 relacionamento_criado
}
