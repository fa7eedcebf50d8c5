package editor

import (
	"regexp"
	"strings"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
)

var schemeRegexp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// NormalizeURL добавляет https:// к адресу без схемы
func NormalizeURL(url string) string {
	if url == "" || schemeRegexp.MatchString(url) {
		return url
	}
	return "https://" + url
}

// InsertLink вставляет ссылку на url. Каретка получает новую ссылку с адресом в качестве текста,
// развернутое выделение оборачивается в ссылку.
func InsertLink(e *engine.Editor, url string) error {
	return UpsertLink(e, url, "")
}

// UpsertLink заменяет ссылку в выделении или создает новую. text задает текст ссылки,
// вставляемой в каретку, пустой text заменяется адресом.
func UpsertLink(e *engine.Editor, url, text string) error {
	url = NormalizeURL(strings.TrimSpace(url))
	if url == "" || e.Selection() == nil {
		return nil
	}

	return e.Transact("insert_link", func() error {
		if IsLinkActive(e) {
			if err := unwrapLinks(e); err != nil {
				return err
			}
		}

		sel := e.Selection()
		if sel == nil {
			return nil
		}
		if sel.IsCollapsed() {
			if text == "" {
				text = url
			}
			return e.InsertNodes([]edtypes.Node{edtypes.NewLink(url, edtypes.NewText(text))}, engine.TransformOptions{})
		}

		if err := e.WrapNodes(&edtypes.Link{URL: url}, engine.TransformOptions{Split: true}); err != nil {
			return err
		}
		return e.Collapse(engine.EdgeEnd)
	})
}

// RemoveLink разворачивает ссылку в выделении, ее тексты остаются на месте
func RemoveLink(e *engine.Editor) error {
	if !IsLinkActive(e) {
		return nil
	}
	return e.Transact("remove_link", func() error {
		return unwrapLinks(e)
	})
}

func unwrapLinks(e *engine.Editor) error {
	return e.UnwrapNodes(engine.TransformOptions{Match: matchLink})
}
