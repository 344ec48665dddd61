package entity

import "fmt"

// SkinClass метка класса кожного образования.
type SkinClass string

const (
	ClassAK   SkinClass = "AK"
	ClassBCC  SkinClass = "BCC"
	ClassBKL  SkinClass = "BKL"
	ClassDF   SkinClass = "DF"
	ClassMEL  SkinClass = "MEL"
	ClassNV   SkinClass = "NV"
	ClassSCC  SkinClass = "SCC"
	ClassVASC SkinClass = "VASC"
)

// Classes порядок совпадает с выходами модели.
var Classes = []SkinClass{ClassAK, ClassBCC, ClassBKL, ClassDF, ClassMEL, ClassNV, ClassSCC, ClassVASC}

var classNames = map[SkinClass]string{
	ClassAK:   "Actinic Keratosis",
	ClassBCC:  "Basal Cell Carcinoma",
	ClassBKL:  "Benign Keratosis",
	ClassDF:   "Dermatofibroma",
	ClassMEL:  "Melanoma",
	ClassNV:   "Melanocytic Nevus",
	ClassSCC:  "Squamous Cell Carcinoma",
	ClassVASC: "Vascular Lesion",
}

// ParseSkinClass проверяет, что метка входит в набор классов модели.
func ParseSkinClass(s string) (SkinClass, error) {
	c := SkinClass(s)
	if _, ok := classNames[c]; !ok {
		return "", fmt.Errorf("unknown skin class %q", s)
	}
	return c, nil
}

// Name возвращает человекочитаемое название класса.
func (c SkinClass) Name() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return string(c)
}

// Index возвращает номер выхода модели или -1.
func (c SkinClass) Index() int {
	for i, cls := range Classes {
		if cls == c {
			return i
		}
	}
	return -1
}

// ClassScore класс с уверенностью модели.
type ClassScore struct {
	Class      SkinClass `json:"class"`
	Name       string    `json:"name"`
	Confidence float64   `json:"confidence"`
}

// ClassifierPrediction ответ обученного классификатора.
type ClassifierPrediction struct {
	PrimaryClass      SkinClass    // класс с максимальной уверенностью
	Confidence        float64      // уверенность в [0, 1]
	TopK              []ClassScore // лучшие классы по убыванию уверенности
	EnsembleConsensus *bool        // заполняется только ансамблем моделей
}
