package book

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	errContainerNotFound = errors.New("META-INF/container.xml not found")
	errOPFPathNotFound   = errors.New("OPF path not found in container.xml")
)

type epubContainer struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

type opfPackage struct {
	Metadata struct {
		Title       []string `xml:"http://purl.org/dc/elements/1.1/ title"`
		Description []string `xml:"http://purl.org/dc/elements/1.1/ description"`
		Subject     []string `xml:"http://purl.org/dc/elements/1.1/ subject"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef  string `xml:"idref,attr"`
			Linear string `xml:"linear,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// LoadEPUB reads an EPUB file. Each non-blank paragraph of the spine
// documents, in reading order, becomes a page.
func LoadEPUB(filename string) (*Book, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open EPUB: %w", err)
	}
	defer zr.Close() //nolint:errcheck

	b, err := readEPUB(&zr.Reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	b.ID = idFromPath(filename)
	b.Source = filename
	return b, nil
}

func readEPUB(zr *zip.Reader) (*Book, error) {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[strings.TrimPrefix(path.Clean(f.Name), "/")] = f
	}

	data, err := readZipFile(files, "META-INF/container.xml")
	if err != nil {
		return nil, errContainerNotFound
	}
	var c epubContainer
	if err := xml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse container.xml: %w", err)
	}
	if len(c.Rootfiles.Rootfile) == 0 || c.Rootfiles.Rootfile[0].FullPath == "" {
		return nil, errOPFPathNotFound
	}
	opfPath := c.Rootfiles.Rootfile[0].FullPath

	data, err = readZipFile(files, opfPath)
	if err != nil {
		return nil, err
	}
	var opf opfPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, fmt.Errorf("failed to parse OPF: %w", err)
	}

	b := Book{
		Title:       first(opf.Metadata.Title),
		Description: first(opf.Metadata.Description),
		Genre:       first(opf.Metadata.Subject),
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	hrefs := make(map[string]string, len(opf.Manifest.Items))
	for _, it := range opf.Manifest.Items {
		hrefs[it.ID] = it.Href
	}
	base := path.Dir(opfPath)

	for _, ref := range opf.Spine.ItemRefs {
		if ref.Linear == "no" {
			continue
		}
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		// fragments never point at a separate document
		if i := strings.IndexByte(href, '#'); i >= 0 {
			href = href[:i]
		}
		data, err := readZipFile(files, path.Join(base, href))
		if err != nil {
			return nil, err
		}
		pages, err := paragraphs(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", href, err)
		}
		b.Pages = append(b.Pages, pages...)
	}
	return &b, nil
}

// paragraphs returns the text of each non-blank <p> in an XHTML document.
func paragraphs(data []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XHTML: %w", err)
	}
	var out []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			out = append(out, t)
		}
	})
	return out, nil
}

func readZipFile(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	defer rc.Close() //nolint:errcheck
	return io.ReadAll(rc)
}

func first(s []string) string {
	for _, v := range s {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
