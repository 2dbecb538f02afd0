package mapper

import (
	"encoding/json"

	"ai-assistant-be/internal/entity"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// SessionToDoc converts a session into a plain document map. The round trip
// through JSON keeps the stored shape identical to the entity's wire shape
// and detaches the result from the caller's slices.
func (m *ChatMapper) SessionToDoc(s *entity.ChatSession) (map[string]interface{}, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *ChatMapper) DocToSession(id string, data map[string]interface{}) (*entity.ChatSession, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var s entity.ChatSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s.Id == "" {
		s.Id = id
	}
	return &s, nil
}
