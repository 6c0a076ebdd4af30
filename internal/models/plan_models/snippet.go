package plan_models

// Topic tags a retrieved snippet with the aspect of the trip it informs.
type Topic string

const (
	TopicTransport  Topic = "transport"
	TopicFood       Topic = "food"
	TopicStay       Topic = "stay"
	TopicAttraction Topic = "attraction"
	TopicPacking    Topic = "packing"
)

// AllTopics in deterministic prompt order.
func AllTopics() []Topic {
	return []Topic{TopicTransport, TopicStay, TopicAttraction, TopicFood, TopicPacking}
}

// FactSnippet is a retrieved text fragment with provenance and a relevance
// score. Snippets live for one pipeline run only.
type FactSnippet struct {
	Topic       Topic   `json:"topic"`
	Destination string  `json:"destination"`
	SourceURL   string  `json:"source_url"`
	Title       string  `json:"title"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
}
