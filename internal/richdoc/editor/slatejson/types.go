// Пакет slatejson читает и пишет документы в формате Slate JSON.
//
// Документ - JSON массив блоков. Элемент - объект с полями type и children,
// текст - объект с полем text и необязательными стилями.
//
// Импорт пакета регистрирует парсер и сериализатор в edtypes, после чего
// edtypes.Document реализует json.Marshaler, json.Unmarshaler и работу с JSONB.
package slatejson

import "github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"

// SlateNode - узел Slate JSON. Текст отличается от элемента наличием поля text.
type SlateNode struct {
	Type string  `json:"type,omitempty"`
	Text *string `json:"text,omitempty"`

	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Code      bool   `json:"code,omitempty"`
	Color     string `json:"color,omitempty"`
	FontSize  int    `json:"fontSize,omitempty"`

	Align   string `json:"align,omitempty"`
	Level   int    `json:"level,omitempty"`
	URL     string `json:"url,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	Title   string `json:"title,omitempty"`

	Children []SlateNode `json:"children,omitempty"`
}

// SlateDocument - документ в обертке, принимается парсером наравне с массивом
type SlateDocument struct {
	Children []SlateNode `json:"children"`
}

func init() {
	edtypes.SlateParser = ParseJSON
	edtypes.SlateSerializer = Serialize
}
