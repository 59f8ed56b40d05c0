package model

// Chat is the resolved handle for a conversation the client can reach.
type Chat struct {
	ID    int64
	Title string
}

// Message is the minimal view of a source message the engine needs:
// its id and, for forum groups, the topic it belongs to.
type Message struct {
	ID      int
	TopicID *int
}

// InTopic reports whether the message belongs to the given topic.
func (m *Message) InTopic(topicID int) bool {
	return m.TopicID != nil && *m.TopicID == topicID
}
