package port

import (
	"context"

	"lesion-bot/internal/domain/entity"
)

// Classifier обученный классификатор кожных образований
type Classifier interface {
	// Predict возвращает класс, уверенность и лучшие классы.
	// Для одной модели и одного изображения ответ детерминирован.
	Predict(ctx context.Context, img entity.LesionImage) (*entity.ClassifierPrediction, error)
}

// Explainer даёт доступ к внутреннему слою классификатора
type Explainer interface {
	// PrepareForExplanation переводит изображение во входной тензор модели
	PrepareForExplanation(ctx context.Context, img entity.LesionImage) (*entity.Tensor, error)

	// Instrument выполняет проход вперёд и назад для скалярного выхода класса classIndex
	// и возвращает выход слоя layer и градиент по нему. Состояние между вызовами не сохраняется.
	Instrument(ctx context.Context, input *entity.Tensor, layer string, classIndex int) (*entity.LayerCapture, error)
}
