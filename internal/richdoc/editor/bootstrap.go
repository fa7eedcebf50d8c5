package editor

import (
	"github.com/aisa-it/richdoc/internal/richdoc/editor/edtypes"
)

const bootstrapImageURL = "https://images.unsplash.com/photo-1503676260728-1c00da094a0b?auto=format&fit=crop&w=1200&q=80"

// InitialDocument возвращает демонстрационный документ, с которого начинается новая сессия.
// Каждый вызов строит новое дерево.
func InitialDocument() *edtypes.Document {
	t := edtypes.NewText

	image := edtypes.NewImage(bootstrapImageURL, "", "Unsplash 제공 예시 이미지")
	image.Align = edtypes.CenterAlign

	guide := edtypes.NewParagraph(
		t("자세한 가이드는 "),
		edtypes.NewLink("https://docs.slatejs.org", t("Slate 공식 문서")),
		t("를 참고하세요."),
	)
	guide.Align = edtypes.CenterAlign

	table := &edtypes.Table{
		Align: edtypes.CenterAlign,
		Content: []edtypes.Node{
			tableRow("기능", "설명"),
			tableRow("정렬", "좌/중앙/우측 정렬을 제공합니다."),
			tableRow("이미지", "URL 입력으로 이미지를 삽입합니다."),
		},
	}

	return &edtypes.Document{Children: []edtypes.Node{
		edtypes.NewHeading(1, t("Slate.js 텍스트 에디터 데모")),
		edtypes.NewParagraph(
			t("이것은 "),
			t("Slate.js", edtypes.MarkBold),
			t("로 구현된 리치 텍스트 에디터입니다. "),
			t("Next.js 14", edtypes.MarkItalic),
			t(" 환경에서 실행됩니다."),
		),
		edtypes.NewHeading(2, t("지원하는 기능들")),
		&edtypes.BulletedList{Content: []edtypes.Node{
			edtypes.NewListItem(t("굵게 (Ctrl+B)")),
			edtypes.NewListItem(t("기울임 (Ctrl+I)")),
			edtypes.NewListItem(t("밑줄 (Ctrl+U)")),
			edtypes.NewListItem(t("코드 (Ctrl+`)")),
		}},
		&edtypes.Blockquote{Content: []edtypes.Node{t("인용문 블록도 지원합니다. 텍스트를 강조할 때 사용하세요.")}},
		&edtypes.CodeBlock{Content: []edtypes.Node{t("const greeting = \"Hello, Slate!\";\nconsole.log(greeting);")}},
		guide,
		image,
		edtypes.NewDivider(),
		table,
		edtypes.NewParagraph(t("위의 도구 모음을 사용하여 텍스트 서식을 변경해보세요!")),
	}}
}

func tableRow(cells ...string) *edtypes.TableRow {
	row := &edtypes.TableRow{}
	for _, c := range cells {
		row.Content = append(row.Content, &edtypes.TableCell{Content: []edtypes.Node{edtypes.NewText(c)}})
	}
	return row
}
