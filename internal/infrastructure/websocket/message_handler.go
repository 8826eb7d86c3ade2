package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"taskcommadmin/internal/domain/entity"
)

// Frame types sent by the server.
const (
	MessageTypeMessages = "messages"
	MessageTypeError    = "error"
	MessageTypeAck      = "ack"
	MessageTypePong     = "pong"
)

// Command types sent by the client.
const (
	CommandSend   = "send"
	CommandEdit   = "edit"
	CommandDelete = "delete"
	CommandRead   = "read"
	CommandPing   = "ping"
)

// ServerMessage is a reply frame written to the client.
type ServerMessage struct {
	Type      string              `json:"type"`
	Ref       string              `json:"ref,omitempty"`
	Message   *entity.ChatMessage `json:"message,omitempty"`
	Error     string              `json:"error,omitempty"`
	Code      string              `json:"code,omitempty"`
	Timestamp string              `json:"timestamp"`
}

// Command is a frame read from the client. Ref is echoed on the reply.
type Command struct {
	Type      string  `json:"type"`
	Ref       string  `json:"ref,omitempty"`
	MessageID string  `json:"message_id,omitempty"`
	Text      string  `json:"text,omitempty"`
	MediaURL  *string `json:"media_url,omitempty"`
	FileType  *string `json:"file_type,omitempty"`
	FileName  *string `json:"file_name,omitempty"`
	FileSize  *int64  `json:"file_size,omitempty"`
}

func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("malformed command: %w", err)
	}

	switch cmd.Type {
	case CommandSend, CommandPing:
	case CommandEdit:
		if cmd.MessageID == "" {
			return cmd, fmt.Errorf("edit requires message_id")
		}
	case CommandDelete, CommandRead:
		if cmd.MessageID == "" {
			return cmd, fmt.Errorf("%s requires message_id", cmd.Type)
		}
	default:
		return cmd, fmt.Errorf("unknown command type %q", cmd.Type)
	}
	return cmd, nil
}

func Encode(msg ServerMessage) []byte {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		data, _ = json.Marshal(ServerMessage{Type: MessageTypeError, Error: "encoding failed", Timestamp: msg.Timestamp})
	}
	return data
}

// MessagesFrame always carries the messages key, also for an empty chat.
func MessagesFrame(taskID string, messages []entity.ChatMessage, lastErr string) []byte {
	if messages == nil {
		messages = []entity.ChatMessage{}
	}
	data, _ := json.Marshal(struct {
		Type      string               `json:"type"`
		TaskID    string               `json:"task_id"`
		Messages  []entity.ChatMessage `json:"messages"`
		Error     string               `json:"error"`
		Timestamp string               `json:"timestamp"`
	}{
		Type:      MessageTypeMessages,
		TaskID:    taskID,
		Messages:  messages,
		Error:     lastErr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return data
}

func ErrorFrame(ref, code, message string) []byte {
	return Encode(ServerMessage{Type: MessageTypeError, Ref: ref, Code: code, Error: message})
}

func AckFrame(ref string, message *entity.ChatMessage) []byte {
	return Encode(ServerMessage{Type: MessageTypeAck, Ref: ref, Message: message})
}
