package relay

// Embed colors, as 24-bit integers.
const (
	ColorGrowth  = 570888   // #08b608, content added
	ColorNeutral = 6647148  // #656d6c, no length delta
	ColorShrink  = 15802400 // #f12020, content removed
)

// Embed is one notification card in the webhook payload.
type Embed struct {
	Color       int          `json:"color"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Author      EmbedAuthor  `json:"author"`
	Description string       `json:"description"`
	Footer      EmbedFooter  `json:"footer"`
	Timestamp   string       `json:"timestamp"`
	Image       *EmbedImage  `json:"image,omitempty"`
}

type EmbedAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

// WebhookPayload is the wire envelope posted to the chat webhook.
// Created fresh per event, never persisted.
type WebhookPayload struct {
	Embeds []Embed `json:"embeds"`
}
