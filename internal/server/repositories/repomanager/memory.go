package repomanager

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/server/repositories/prescriptions"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. Data is lost
// on restart.
type InMemoryRepositoryManager struct {
	users         *users.InMemoryRepository
	prescriptions *prescriptions.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:         users.NewInMemoryRepository(),
		prescriptions: prescriptions.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Prescriptions() prescriptions.Repository {
	return m.prescriptions
}

func (m *InMemoryRepositoryManager) Ping(context.Context) error  { return nil }
func (m *InMemoryRepositoryManager) Close(context.Context) error { return nil }
