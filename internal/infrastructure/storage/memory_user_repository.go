package storage

import (
	"context"
	"maps"
	"sync"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей и их профилей риска.
// Наружу отдаются копии, поэтому обработчики разных чатов не делят состояние.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]entity.User),
	}
}

// Get возвращает копию пользователя, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.RLock()
	user, exists := r.users[userID]
	r.mu.RUnlock()

	if exists {
		return clone(user), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Повторная проверка: пользователя мог создать параллельный запрос
	if user, exists = r.users[userID]; !exists {
		user = *entity.NewUser(userID, chatID)
		r.users[userID] = user
	}

	return clone(user), nil
}

// Save сохраняет состояние и профиль пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = *clone(*user)
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние пользователя
func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		user.SetState(state)
		r.users[userID] = user
	}

	return nil
}

func clone(u entity.User) *entity.User {
	p := u.Patient
	if p.Age != nil {
		age := *p.Age
		p.Age = &age
	}
	if p.Gender != nil {
		gender := *p.Gender
		p.Gender = &gender
	}
	if p.SkinType != nil {
		skin := *p.SkinType
		p.SkinType = &skin
	}
	p.FamilyHistory = maps.Clone(p.FamilyHistory)
	p.MedicalHistory = maps.Clone(p.MedicalHistory)
	u.Patient = p
	return &u
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
