package edtypes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyChildren     = errors.New("element has no children")
	ErrMisplacedListItem = errors.New("list-item outside of a list")
	ErrMisplacedRow      = errors.New("table-row outside of a table")
	ErrMisplacedCell     = errors.New("table-cell outside of a table-row")
	ErrNestedLink        = errors.New("link inside a link")
	ErrBadHeadingLevel   = errors.New("heading level out of range")
	ErrBadFontSize       = errors.New("font size out of range")
	ErrEmptyURL          = errors.New("empty url")
	ErrBlockInInline     = errors.New("block inside inline content")
	ErrInlineInBlock     = errors.New("inline content inside a block container")
	ErrVoidContent       = errors.New("void element must contain a single empty text")
	ErrNilNode           = errors.New("nil node")
)

// ValidationError - нарушение схемы с путем до узла
type ValidationError struct {
	Path []int
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", FormatPath(e.Path), e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FormatPath печатает путь в виде /0/2/1
func FormatPath(path []int) string {
	if len(path) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, i := range path {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(i))
	}
	return sb.String()
}

// Validate проверяет инварианты схемы и возвращает все найденные нарушения
func Validate(doc *Document) []error {
	var errs []error
	report := func(path []int, err error) {
		errs = append(errs, &ValidationError{Path: append([]int(nil), path...), Err: err})
	}

	var walk func(n Node, parent Element, inLink bool, path []int)
	walk = func(n Node, parent Element, inLink bool, path []int) {
		if n == nil {
			report(path, ErrNilNode)
			return
		}

		if parent != nil {
			if HasInlines(parent) && IsBlock(n) {
				report(path, ErrBlockInInline)
			}
			if !HasInlines(parent) && !IsBlock(n) {
				report(path, ErrInlineInBlock)
			}
		} else if !IsBlock(n) {
			report(path, ErrInlineInBlock)
		}

		switch v := n.(type) {
		case *Text:
			if v.FontSize != 0 && (v.FontSize < MinFontSize || v.FontSize > MaxFontSize) {
				report(path, ErrBadFontSize)
			}
			return
		case *ListItem:
			if !IsList(parent) {
				report(path, ErrMisplacedListItem)
			}
		case *TableRow:
			if _, ok := parent.(*Table); !ok {
				report(path, ErrMisplacedRow)
			}
		case *TableCell:
			if _, ok := parent.(*TableRow); !ok {
				report(path, ErrMisplacedCell)
			}
		case *Heading:
			if v.Level < MinHeadingLevel || v.Level > MaxHeadingLevel {
				report(path, ErrBadHeadingLevel)
			}
		case *Link:
			if inLink {
				report(path, ErrNestedLink)
			}
			if v.URL == "" {
				report(path, ErrEmptyURL)
			}
		case *Image:
			if v.URL == "" {
				report(path, ErrEmptyURL)
			}
		case *Video:
			if v.URL == "" {
				report(path, ErrEmptyURL)
			}
		}

		el := n.(Element)
		children := el.Children()
		if len(children) == 0 {
			report(path, ErrEmptyChildren)
			return
		}
		if IsVoid(el) {
			if t, ok := children[0].(*Text); len(children) != 1 || !ok || t.Text != "" {
				report(path, ErrVoidContent)
			}
			return
		}
		for i, c := range children {
			if _, isText := c.(*Text); !isText {
				if _, ok := el.(*CodeBlock); ok {
					report(append(path, i), ErrInlineInBlock)
					continue
				}
			}
			walk(c, el, inLink || IsInline(el), append(path, i))
		}
	}

	for i, n := range doc.Children {
		walk(n, nil, false, []int{i})
	}
	return errs
}
