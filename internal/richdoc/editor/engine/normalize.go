package engine

import (
	"unicode/utf8"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

const maxNormalizeSteps = 10000

// normalize приводит дерево к допустимой форме, исправляя по одному нарушению за шаг:
//   - пустой документ получает пустой параграф;
//   - элемент без детей получает пустой текст, пустые списки и таблицы удаляются;
//   - блок с inline содержимым не содержит блоков, контейнер блоков не содержит текстов;
//   - ссылка окружена текстами и не вкладывается в ссылку или блок кода;
//   - соседние тексты с одинаковыми стилями сливаются, пустые тексты рядом с другими удаляются.
func (e *Editor) normalize() {
	for range maxNormalizeSteps {
		if !e.normalizeStep() {
			return
		}
	}
	fail(ErrNormalizeLoop)
}

// Normalize принудительно нормализует документ отдельной транзакцией
func (e *Editor) Normalize() error {
	return e.Transact("normalize", func() error {
		e.normalize()
		return nil
	})
}

func (e *Editor) normalizeStep() bool {
	if len(e.doc.Children) == 0 {
		e.apply(Operation{Type: OpInsertNode, Path: Path{0}, Node: edtypes.NewParagraph()})
		return true
	}
	for i, n := range e.doc.Children {
		p := Path{i}
		if !edtypes.IsBlock(n) {
			e.apply(Operation{Type: OpRemoveNode, Path: p, Node: edtypes.Clone(n)})
			return true
		}
		if e.normalizeElement(n.(edtypes.Element), p) {
			return true
		}
	}
	return false
}

func (e *Editor) normalizeElement(el edtypes.Element, path Path) bool {
	kids := el.Children()
	shouldHaveInlines := edtypes.HasInlines(el)

	if len(kids) == 0 {
		if shouldHaveInlines {
			e.apply(Operation{Type: OpInsertNode, Path: path.Child(0), Node: &edtypes.Text{}})
		} else {
			e.apply(Operation{Type: OpRemoveNode, Path: path, Node: edtypes.Shallow(el)})
		}
		return true
	}

	for i, child := range kids {
		p := path.Child(i)
		_, isText := child.(*edtypes.Text)
		isInlineOrText := isText || edtypes.IsInline(child)

		if isInlineOrText != shouldHaveInlines {
			e.apply(Operation{Type: OpRemoveNode, Path: p, Node: edtypes.Clone(child)})
			return true
		}

		var prev edtypes.Node
		if i > 0 {
			prev = kids[i-1]
		}
		prevText, prevIsText := prev.(*edtypes.Text)

		switch c := child.(type) {
		case *edtypes.Link:
			if _, ok := el.(*edtypes.Link); ok {
				e.unwrapNodes(TransformOptions{At: p, Match: MatchPath(p)})
				return true
			}
			if _, ok := el.(*edtypes.CodeBlock); ok {
				e.unwrapNodes(TransformOptions{At: p, Match: MatchPath(p)})
				return true
			}
			if !prevIsText {
				e.apply(Operation{Type: OpInsertNode, Path: p, Node: &edtypes.Text{}})
				return true
			}
			if i == len(kids)-1 {
				e.apply(Operation{Type: OpInsertNode, Path: p.Next(), Node: &edtypes.Text{}})
				return true
			}
			if e.normalizeElement(c, p) {
				return true
			}
		case *edtypes.Text:
			if !prevIsText {
				continue
			}
			switch {
			case prevText.Marks.Equal(c.Marks):
				e.apply(Operation{
					Type:       OpMergeNode,
					Path:       p,
					Position:   utf8.RuneCountInString(prevText.Text),
					Properties: edtypes.Shallow(c),
				})
				return true
			case prevText.Text == "":
				e.apply(Operation{Type: OpRemoveNode, Path: p.Previous(), Node: edtypes.Clone(prevText)})
				return true
			case c.Text == "":
				e.apply(Operation{Type: OpRemoveNode, Path: p, Node: edtypes.Clone(c)})
				return true
			}
		case edtypes.Element:
			if e.normalizeElement(c, p) {
				return true
			}
		}
	}
	return false
}
