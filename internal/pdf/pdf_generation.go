package pdf

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Renderer: интерфейс (удобно мокать в тестах)
type Renderer interface {
	RenderNote(w io.Writer, data NoteData) error
}

type NoteData struct {
	Name      string
	Content   string // basic HTML from the editor
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteRenderer: реализация. Без FontPath используется встроенный Helvetica (cp1252).
type NoteRenderer struct {
	FontPath string // путь до TTF, например "assets/fonts/DejaVuSans.ttf"
	Author   string
	fontName string
	raw      bool // без сжатия потоков, для тестов
}

func NewNoteRenderer(fontPath, author string) *NoteRenderer {
	r := &NoteRenderer{FontPath: fontPath, Author: author, fontName: "Helvetica"}
	if fontPath != "" {
		r.fontName = "DejaVu"
	}
	return r
}

func (g *NoteRenderer) RenderNote(w io.Writer, data NoteData) error {
	if strings.TrimSpace(data.Name) == "" {
		return errors.New("note name is empty")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := g.translator(pdf)

	pdf.SetTitle(data.Name, true)
	if g.Author != "" {
		pdf.SetAuthor(g.Author, true)
	}
	pdf.SetCompression(!g.raw)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	// ===== Нумерация страниц: футер регистрируется до первой страницы
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(g.fontName, "B", 18)
	pdf.MultiCell(0, 9, tr(data.Name), "", "L", false)

	pdf.SetFont(g.fontName, "", 10)
	meta := "Created " + data.CreatedAt.Format("02.01.2006 15:04")
	if !data.UpdatedAt.IsZero() && data.UpdatedAt.After(data.CreatedAt) {
		meta += "   Updated " + data.UpdatedAt.Format("02.01.2006 15:04")
	}
	pdf.CellFormat(0, 6, meta, "", 1, "L", false, 0, "")
	g.hr(pdf)
	pdf.Ln(2)

	// ===== Текст заметки
	pdf.SetFont(g.fontName, "", 12)
	html := pdf.HTMLBasicNew()
	html.Write(6, tr(basicHTML(data.Content)))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render note pdf: %w", err)
	}
	return nil
}

// ===== helpers =====

func (g *NoteRenderer) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath != "" {
		// AddUTF8Font принимает путь до TTF
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "I", g.FontPath)
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func (g *NoteRenderer) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

// HTMLBasic understands only b/i/u/a/br; block tags of the editor become line breaks.
var blockTags = strings.NewReplacer(
	"</p>", "<br>",
	"<p>", "",
	"</h1>", "<br>", "</h2>", "<br>", "</h3>", "<br>",
	"<li>", "- ", "</li>", "<br>",
	"<strong>", "<b>", "</strong>", "</b>",
	"<em>", "<i>", "</em>", "</i>",
	"&nbsp;", " ",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

func basicHTML(content string) string {
	return strings.TrimSuffix(blockTags.Replace(content), "<br>")
}
