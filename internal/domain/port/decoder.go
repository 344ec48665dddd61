package port

import "lesion-bot/internal/domain/entity"

// ImageDecoder проверяет загруженный файл и переводит его в RGB
type ImageDecoder interface {
	Decode(data []byte) (entity.LesionImage, error)
}
