package service

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/agencyval/commission-recon/dto"
)

type PDFProcessor interface {
	ExtractPages(pdfData []byte, password string) ([]dto.Page, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// ExtractPages reads every page's positioned text fragments. A
// password-protected document is decrypted first; a document that
// cannot be opened at all is a document-level error. Individual pages
// that fail to decode are skipped, never fatal.
func (p *pdfProcessor) ExtractPages(pdfData []byte, password string) ([]dto.Page, error) {
	if password != "" {
		decrypted, err := decryptPDF(pdfData, password)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt pdf: %w", err)
		}
		pdfData = decrypted
	}

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("unreadable pdf: %w", err)
	}

	var pages []dto.Page
	totalPage := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		frags, ok := extractPage(r, pageIndex)
		if !ok {
			continue
		}
		pages = append(pages, dto.Page{Number: pageIndex, Fragments: frags})
	}

	if len(pages) == 0 {
		return nil, dto.ErrEmptyDocument
	}
	return pages, nil
}

// extractPage decodes one page's content stream. Malformed streams
// can panic inside the reader; that counts as a skipped page.
func extractPage(r *pdf.Reader, pageIndex int) (frags []dto.Fragment, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("skipping malformed pdf page %d: %v", pageIndex, rec)
			frags, ok = nil, false
		}
	}()

	page := r.Page(pageIndex)
	if page.V.IsNull() {
		return nil, false
	}
	return coalesceFragments(page.Content().Text), true
}

// coalesceFragments merges contiguous text runs on the same baseline
// into word-level fragments, so downstream row clustering sees words,
// not individual show-text operations.
func coalesceFragments(texts []pdf.Text) []dto.Fragment {
	var frags []dto.Fragment
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		if n := len(frags); n > 0 {
			prev := &frags[n-1]
			gap := t.X - prevEnd(*prev)
			if prev.Y == t.Y && gap >= -0.5 && gap <= 1.0 {
				prev.Text += t.S
				continue
			}
		}
		frags = append(frags, dto.Fragment{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			FontSize: t.FontSize,
		})
	}
	return frags
}

// prevEnd estimates where the previous fragment's text ends.
func prevEnd(prev dto.Fragment) float64 {
	size := prev.FontSize
	if size <= 0 {
		size = 10
	}
	return prev.X + float64(len(prev.Text))*size*0.5
}

// decryptPDF removes password protection via pdfcpu, which operates
// on files, so the data round-trips through a temp pair.
func decryptPDF(pdfData []byte, password string) ([]byte, error) {
	inFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(inFile.Name())

	if _, err := inFile.Write(pdfData); err != nil {
		inFile.Close()
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	inFile.Close()

	outFile, err := os.CreateTemp("", "doc-dec-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	outFile.Close()
	defer os.Remove(outFile.Name())

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password

	if err := api.DecryptFile(inFile.Name(), outFile.Name(), conf); err != nil {
		return nil, err
	}
	return os.ReadFile(outFile.Name())
}
