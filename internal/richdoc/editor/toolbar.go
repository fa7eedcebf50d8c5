package editor

import (
	"strconv"

	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
	"github.com/aisa-it/richdoc/internal/richdoc/editor/engine"
)

type ItemKind string

const (
	ItemMark      ItemKind = "mark"
	ItemBlock     ItemKind = "block"
	ItemAlignment ItemKind = "alignment"
	ItemSelect    ItemKind = "select"
	ItemAction    ItemKind = "action"
)

type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ToolbarItem - кнопка или список панели инструментов
type ToolbarItem struct {
	Kind    ItemKind       `json:"kind"`
	Command string         `json:"command"`
	Format  string         `json:"format,omitempty"`
	Icon    string         `json:"icon,omitempty"`
	Title   string         `json:"title"`
	Options []SelectOption `json:"options,omitempty"`
}

// ToolbarGroup - кнопки между разделителями
type ToolbarGroup []ToolbarItem

// Toolbar возвращает раскладку панели инструментов. Группы разделяются одним разделителем.
func Toolbar() []ToolbarGroup {
	headingOptions := []SelectOption{{Value: "", Label: "본문"}}
	for level := edtypes.MinHeadingLevel; level <= edtypes.MaxHeadingLevel; level++ {
		headingOptions = append(headingOptions, SelectOption{Value: strconv.Itoa(level), Label: "H" + strconv.Itoa(level)})
	}
	sizeOptions := []SelectOption{{Value: "", Label: "기본"}}
	for size := edtypes.MinFontSize; size <= edtypes.MaxFontSize; size++ {
		sizeOptions = append(sizeOptions, SelectOption{Value: strconv.Itoa(size), Label: strconv.Itoa(size) + "px"})
	}

	return []ToolbarGroup{
		{
			{Kind: ItemMark, Command: CmdToggleMark, Format: string(edtypes.MarkBold), Icon: "B", Title: "굵게 (Ctrl+B)"},
			{Kind: ItemMark, Command: CmdToggleMark, Format: string(edtypes.MarkItalic), Icon: "I", Title: "기울임 (Ctrl+I)"},
			{Kind: ItemMark, Command: CmdToggleMark, Format: string(edtypes.MarkUnderline), Icon: "U", Title: "밑줄 (Ctrl+U)"},
			{Kind: ItemMark, Command: CmdToggleMark, Format: string(edtypes.MarkCode), Icon: "<>", Title: "코드 (Ctrl+`)"},
		},
		{
			{Kind: ItemSelect, Command: CmdSetHeadingLevel, Title: "제목", Options: headingOptions},
			{Kind: ItemSelect, Command: CmdSetFontSize, Title: "폰트", Options: sizeOptions},
		},
		{
			{Kind: ItemBlock, Command: CmdToggleBlock, Format: string(edtypes.KindBlockquote), Icon: "❝", Title: "인용문"},
			{Kind: ItemBlock, Command: CmdToggleBlock, Format: string(edtypes.KindCodeBlock), Icon: "{ }", Title: "코드 블록"},
			{Kind: ItemAction, Command: CmdInsertDivider, Icon: "━", Title: "구분선 추가"},
		},
		{
			{Kind: ItemBlock, Command: CmdToggleBlock, Format: string(edtypes.KindBulletedList), Icon: "•", Title: "글머리 기호 목록"},
			{Kind: ItemBlock, Command: CmdToggleBlock, Format: string(edtypes.KindNumberedList), Icon: "1.", Title: "번호 매기기 목록"},
		},
		{
			{Kind: ItemAlignment, Command: CmdSetAlignment, Format: edtypes.LeftAlign.String(), Icon: "⇤", Title: "좌측 정렬"},
			{Kind: ItemAlignment, Command: CmdSetAlignment, Format: edtypes.CenterAlign.String(), Icon: "↔", Title: "가운데 정렬"},
			{Kind: ItemAlignment, Command: CmdSetAlignment, Format: edtypes.RightAlign.String(), Icon: "⇥", Title: "우측 정렬"},
		},
		{
			{Kind: ItemAction, Command: CmdInsertImage, Icon: "🖼", Title: "이미지 추가"},
			{Kind: ItemAction, Command: CmdInsertVideo, Icon: "▶", Title: "YouTube 영상 추가"},
			{Kind: ItemAction, Command: CmdToggleLink, Icon: "🔗", Title: "링크 추가"},
			{Kind: ItemAction, Command: CmdInsertTable, Icon: "표", Title: "표 삽입"},
		},
	}
}

// State - состояние кнопок панели инструментов для текущего выделения
type State struct {
	Marks        map[edtypes.Mark]bool `json:"marks"`
	Blocks       map[edtypes.Kind]bool `json:"blocks"`
	Alignments   map[string]bool       `json:"alignments"`
	HeadingLevel int                   `json:"heading_level"`
	FontSize     int                   `json:"font_size"`
	Color        string                `json:"color,omitempty"`
	LinkActive   bool                  `json:"link_active"`
	LinkURL      string                `json:"link_url,omitempty"`
	SelectedText string                `json:"selected_text,omitempty"`
	CanUndo      bool                  `json:"can_undo"`
	CanRedo      bool                  `json:"can_redo"`
}

// ToolbarState вычисляет активность кнопок через предикаты выделения
func ToolbarState(e *engine.Editor) State {
	s := State{
		Marks:        make(map[edtypes.Mark]bool, len(edtypes.AllMarks)),
		Blocks:       make(map[edtypes.Kind]bool, len(ToggleableBlocks)),
		Alignments:   make(map[string]bool, 3),
		HeadingLevel: GetCurrentHeadingLevel(e),
		FontSize:     GetCurrentFontSize(e),
		LinkURL:      GetActiveLinkURL(e),
		SelectedText: GetSelectedText(e),
		CanUndo:      e.History().CanUndo(),
		CanRedo:      e.History().CanRedo(),
	}
	s.LinkActive = s.LinkURL != ""
	for _, m := range edtypes.AllMarks {
		s.Marks[m] = IsMarkActive(e, m)
	}
	for _, k := range ToggleableBlocks {
		s.Blocks[k] = IsBlockActive(e, k)
	}
	for _, a := range []edtypes.TextAlign{edtypes.LeftAlign, edtypes.CenterAlign, edtypes.RightAlign} {
		s.Alignments[a.String()] = IsAlignmentActive(e, a)
	}
	if c := GetCurrentColor(e); c != nil {
		s.Color = c.Hex()
	}
	return s
}
