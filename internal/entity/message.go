package entity

// Message is an inbound message exactly as received from the messaging channel.
// It is never mutated after ingestion.
type Message struct {
	Text   string `json:"text"`
	Sender string `json:"sender"`
}
