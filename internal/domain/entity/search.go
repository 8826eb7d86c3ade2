package entity

type SearchType string

const (
	SearchAll          SearchType = "all"
	SearchUsers        SearchType = "users"
	SearchTasks        SearchType = "tasks"
	SearchInstructions SearchType = "instructions"
	SearchMessages     SearchType = "messages"
)

func (t SearchType) Valid() bool {
	switch t {
	case SearchAll, SearchUsers, SearchTasks, SearchInstructions, SearchMessages:
		return true
	}
	return false
}

type SearchResults struct {
	Users        []*User        `json:"users"`
	Tasks        []*Task        `json:"tasks"`
	Instructions []*Instruction `json:"instructions"`
	Messages     []ChatMessage  `json:"messages"`
}

// PermissionReport summarises what the current identity can do against the message store.
type PermissionReport struct {
	Backend  string            `json:"backend"`
	Identity *Identity         `json:"identity,omitempty"`
	Message  *ChatMessage      `json:"message,omitempty"`
	Checks   []PermissionCheck `json:"checks"`
}

type PermissionCheck struct {
	Name    string `json:"name"`
	Allowed bool   `json:"allowed"`
	Detail  string `json:"detail,omitempty"`
}
