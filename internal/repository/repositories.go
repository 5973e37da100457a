package repository

import (
	"github.com/deppfellow/newsletter/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Subscriptions *SubscriptionRepository
	Users         *UserRepository
}

// NewRepositories constructs every repository on the server's pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Subscriptions: NewSubscriptionRepository(s.DB.Pool),
		Users:         NewUserRepository(s.DB.Pool),
	}
}
