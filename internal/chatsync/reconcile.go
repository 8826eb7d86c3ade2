// Package chatsync keeps a task's chat view in step with the remote message
// store: a poller re-fetches the task's messages, Reconcile merges each fetch
// with local optimistic state, and a Mutator applies sends, edits and deletes
// optimistically with verification and rollback.
package chatsync

import (
	"sort"

	"taskcommadmin/internal/domain/entity"
)

// Reconcile merges a fresh server fetch with local optimistic messages.
//
// Messages are matched by id only, never by content. When both sides hold
// the same id the server copy wins. Local messages without a server
// counterpart are kept (in-flight sends). The result is ordered by timestamp
// ascending with ties broken by id. Neither input is modified.
func Reconcile(server, local []entity.ChatMessage) []entity.ChatMessage {
	merged := make([]entity.ChatMessage, 0, len(server)+len(local))
	seen := make(map[string]struct{}, len(server)+len(local))

	for _, msg := range server {
		if msg.ID != "" {
			if _, dup := seen[msg.ID]; dup {
				continue
			}
			seen[msg.ID] = struct{}{}
		}
		merged = append(merged, msg)
	}

	for _, msg := range local {
		if msg.ID != "" {
			if _, ok := seen[msg.ID]; ok {
				continue
			}
			seen[msg.ID] = struct{}{}
		}
		merged = append(merged, msg)
	}

	sortMessages(merged)
	return merged
}

func sortMessages(msgs []entity.ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

func cloneMessages(msgs []entity.ChatMessage) []entity.ChatMessage {
	if msgs == nil {
		return []entity.ChatMessage{}
	}
	out := make([]entity.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
