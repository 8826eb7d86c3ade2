package repository

// Set groups the adapters of one backend.
type Set struct {
	Backend      string
	Messages     MessageRepository
	Users        UserRepository
	Profiles     ProfileRepository
	Instructions InstructionRepository
	Tasks        TaskRepository
}
