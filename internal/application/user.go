package app

import (
	"context"

	"lesion-bot/internal/domain/entity"
	"lesion-bot/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateProfile применяет изменения к профилю риска и сохраняет пользователя.
func (s *UserService) UpdateProfile(ctx context.Context, userID, chatID int64, apply func(*entity.PatientRiskFactors)) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	patient := user.Patient
	apply(&patient)
	user.SetPatient(patient)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ResetProfile очищает профиль риска.
func (s *UserService) ResetProfile(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.UpdateProfile(ctx, userID, chatID, func(p *entity.PatientRiskFactors) {
		*p = entity.PatientRiskFactors{}
	})
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}
