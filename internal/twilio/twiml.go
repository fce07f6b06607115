package twilio

import (
	"encoding/xml"
)

// MessagingResponse is the TwiML document returned to Twilio's webhook. Each
// Message element becomes one outbound WhatsApp message.
type MessagingResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// NewMessagingResponse builds a response carrying the given message bodies.
func NewMessagingResponse(bodies ...string) *MessagingResponse {
	return &MessagingResponse{Messages: bodies}
}

// Render serializes the response as a TwiML XML document.
func (r *MessagingResponse) Render() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
