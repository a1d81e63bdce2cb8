package ws

const (
	TopicCatalog = "catalog"
	TopicBoard   = "board"
)

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// Topic: obrigatório para subscribe/unsubscribe ("catalog" ou "board")
type ClientMsg struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

// Update é o snapshot completo enviado aos inscritos de um tópico
type Update struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}
