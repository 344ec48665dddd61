package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lesion-bot/internal/container"
	"lesion-bot/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для предварительной оценки родинок и новообразований кожи.

📸 Отправьте фото образования крупным планом, и я оценю его по правилу ABCDE, определю тип кожи и уровень риска.

📋 Команды:
/check — начать проверку
/profile — факторы риска (возраст, тип кожи, анамнез)
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Заполните профиль: /profile age=45 skin=II family=melanoma smoking=no checks=yes
2️⃣ Отправьте фото образования
3️⃣ Вы получите результат: диагноз модели, ABCDE, риск и тепловую карту

💡 Рекомендации:
• Снимайте при дневном свете без вспышки
• Образование должно быть в центре кадра
• Фото должно быть чётким

📋 Поля профиля:
age — возраст
gender — пол
skin — тип кожи по Фитцпатрику (I–VI)
family — семейный анамнез через запятую (melanoma, skin_cancer) или none
smoking, checks — yes/no
/profile reset — очистить профиль`

	msgAwaitingPhoto   = "📸 Отправьте фото образования кожи."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото образования кожи."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Анализирую изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается."
	msgInvalidImage    = "⚠️ Не удалось прочитать изображение. Нужен JPEG или PNG от 100 до 4000 пикселей по стороне, до 10 МБ."
	msgModelError      = "⚠️ Сервис анализа временно недоступен. Попробуйте позже."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgProfileSaved    = "✅ Профиль обновлён."
	msgProfileReset    = "🗑 Профиль очищен."
	msgProfileEmpty    = "👤 Профиль пуст. Пример: /profile age=45 skin=II family=melanoma"
	msgProfileInvalid  = "⚠️ Не удалось разобрать профиль: %v\nПодробнее: /help"
)

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	services   *container.Container
	downloader *http.Client
	logger     *slog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, services *container.Container, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("authorized on account", "username", api.Self.UserName)

	return &Bot{
		api:        api,
		services:   services,
		downloader: &http.Client{Timeout: time.Minute},
		logger:     logger,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	user, err := b.services.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("get user", "user_id", msg.From.ID, "error", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handlePhoto(ctx, msg, user, photo.FileID)
		return
	}

	// Фото, отправленное файлом без сжатия
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		b.handlePhoto(ctx, msg, user, msg.Document.FileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	users := b.services.UserService

	switch msg.Command() {
	case "start":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		if _, err := b.services.AnalysisService.BeginCheck(ctx, user.ID, user.ChatID); err != nil {
			b.logger.Error("begin check", "user_id", user.ID, "error", err)
		}
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "profile":
		b.handleProfile(ctx, msg, user)

	case "cancel":
		if _, err := users.Cancel(ctx, user.ID, user.ChatID); err != nil {
			b.logger.Error("cancel", "user_id", user.ID, "error", err)
		}
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handleProfile показывает или изменяет факторы риска
func (b *Bot) handleProfile(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	users := b.services.UserService
	args := strings.TrimSpace(msg.CommandArguments())

	switch {
	case args == "":
		b.sendMessage(msg.Chat.ID, FormatProfile(user.RiskFactors()))

	case strings.EqualFold(args, "reset"):
		if _, err := users.ResetProfile(ctx, user.ID, user.ChatID); err != nil {
			b.logger.Error("reset profile", "user_id", user.ID, "error", err)
			return
		}
		b.sendMessage(msg.Chat.ID, msgProfileReset)

	default:
		apply, err := ParseProfile(args)
		if err != nil {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgProfileInvalid, err))
			return
		}
		updated, err := users.UpdateProfile(ctx, user.ID, user.ChatID, apply)
		if err != nil {
			b.logger.Error("update profile", "user_id", user.ID, "error", err)
			return
		}
		b.sendMessage(msg.Chat.ID, msgProfileSaved+"\n\n"+FormatProfile(updated.RiskFactors()))
	}
}

// handlePhoto скачивает фото и запускает анализ
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID string) {
	if user.State == entity.StateProcessing {
		b.sendMessage(msg.Chat.ID, msgBusy)
		return
	}

	b.sendMessage(msg.Chat.ID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("download photo", "user_id", user.ID, "error", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		b.setState(ctx, user, entity.StateMainMenu)
		return
	}

	out, err := b.services.AnalysisService.ProcessPhoto(ctx, user.ID, user.ChatID, imageData)
	switch {
	case errors.Is(err, entity.ErrInvalidImage):
		b.logger.Warn("invalid image", "user_id", user.ID, "error", err)
		b.sendMessage(msg.Chat.ID, msgInvalidImage)
		return
	case errors.Is(err, entity.ErrClassifierInvocation):
		b.sendMessage(msg.Chat.ID, msgModelError)
		return
	case err != nil:
		b.logger.Error("analysis failed", "user_id", user.ID, "error", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	b.sendMessage(msg.Chat.ID, FormatResult(out.Result))

	if len(out.Overlay) > 0 {
		photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{
			Name:  "gradcam_" + out.Result.AnalysisID + ".jpg",
			Bytes: out.Overlay,
		})
		photo.Caption = "🌡 Области, повлиявшие на решение модели"
		if _, err := b.api.Send(photo); err != nil {
			b.logger.Error("send overlay", "user_id", user.ID, "error", err)
		}
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.downloader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	if _, err := b.services.UserService.SetState(ctx, user.ID, user.ChatID, state); err != nil {
		b.logger.Error("set state", "user_id", user.ID, "state", state, "error", err)
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", "chat_id", chatID, "error", err)
	}
}
