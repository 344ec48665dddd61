package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото поражения
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// User представляет пользователя бота
type User struct {
	ID      int64              // Telegram User ID
	ChatID  int64              // Telegram Chat ID
	State   UserState          // Текущее состояние пользователя
	Patient PatientRiskFactors // Факторы риска, заполненные через /profile
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// SetPatient заменяет факторы риска пользователя
func (u *User) SetPatient(p PatientRiskFactors) {
	u.Patient = p
}

// RiskFactors возвращает факторы риска или nil, если профиль пуст
func (u *User) RiskFactors() *PatientRiskFactors {
	p := u.Patient
	if p.Age == nil && p.Gender == nil && p.SkinType == nil && len(p.FamilyHistory) == 0 && len(p.MedicalHistory) == 0 {
		return nil
	}
	return &p
}
