// Package epub reads EPUB containers: bibliographic metadata from the
// OPF package document and chapter text from the spine, in spine order.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/shelfgrep/shelfgrep/pkg/types"
)

// Chapter is one spine item's extracted text, in document order.
type Chapter struct {
	Title    string
	Content  string // plain text, tags stripped
	Position int    // 0-based spine position
}

// container.xml locates the OPF package document inside the archive.
type containerXML struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// opfPackage is the subset of the OPF package document we consume.
type opfPackage struct {
	Metadata opfMetadata `xml:"metadata"`
	Manifest struct {
		Items []opfItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type opfMetadata struct {
	Titles      []string        `xml:"title"`
	Creators    []string        `xml:"creator"`
	Publisher   string          `xml:"publisher"`
	Dates       []string        `xml:"date"`
	Language    string          `xml:"language"`
	Identifiers []opfIdentifier `xml:"identifier"`
	Description string          `xml:"description"`
	Subjects    []string        `xml:"subject"`
}

type opfIdentifier struct {
	Scheme string `xml:"scheme,attr"`
	Value  string `xml:",chardata"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

// Read opens the EPUB at filePath and returns the book metadata and the
// chapters in spine order. A spine item that is missing from the archive
// or cannot be decoded is skipped and logged; it does not abort the
// remaining chapters.
func Read(filePath string) (*types.Book, []Chapter, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open epub: %w", err)
	}
	defer zr.Close()

	return readArchive(&zr.Reader, filePath)
}

// ReadFrom parses an EPUB from an already-open zip reader. Split out so
// tests can build archives in memory.
func ReadFrom(zr *zip.Reader, filePath string) (*types.Book, []Chapter, error) {
	return readArchive(zr, filePath)
}

func readArchive(zr *zip.Reader, filePath string) (*types.Book, []Chapter, error) {
	opfPath, err := locateOPF(zr)
	if err != nil {
		return nil, nil, err
	}

	pkg, err := parseOPF(zr, opfPath)
	if err != nil {
		return nil, nil, err
	}

	book := bookFromMetadata(&pkg.Metadata, filePath)
	chapters := readSpine(zr, pkg, path.Dir(opfPath))

	for _, ch := range chapters {
		book.TotalWords += len(strings.Fields(ch.Content))
	}

	return book, chapters, nil
}

// locateOPF resolves the package document path via META-INF/container.xml.
func locateOPF(zr *zip.Reader) (string, error) {
	data, err := readZipFile(zr, "META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("read container.xml: %w", err)
	}

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("parse container.xml: %w", err)
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("container.xml declares no rootfile")
	}
	return c.Rootfiles[0].FullPath, nil
}

func parseOPF(zr *zip.Reader, opfPath string) (*opfPackage, error) {
	data, err := readZipFile(zr, opfPath)
	if err != nil {
		return nil, fmt.Errorf("read package document: %w", err)
	}

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parse package document: %w", err)
	}
	return &pkg, nil
}

func bookFromMetadata(md *opfMetadata, filePath string) *types.Book {
	book := &types.Book{
		Publisher:   strings.TrimSpace(md.Publisher),
		Language:    strings.TrimSpace(md.Language),
		Description: strings.TrimSpace(md.Description),
		FilePath:    filePath,
	}

	if len(md.Titles) > 0 {
		book.Title = strings.TrimSpace(md.Titles[0])
	}
	if len(md.Creators) > 0 {
		book.Author = strings.TrimSpace(md.Creators[0])
	}
	if len(md.Dates) > 0 {
		book.Published = strings.TrimSpace(md.Dates[0])
	}
	if len(md.Subjects) > 0 {
		book.Genre = strings.TrimSpace(md.Subjects[0])
	}

	// Prefer an explicitly ISBN-tagged identifier, fall back to any
	// identifier that looks like one.
	for _, id := range md.Identifiers {
		v := strings.TrimSpace(strings.TrimPrefix(id.Value, "urn:isbn:"))
		if strings.EqualFold(id.Scheme, "isbn") || strings.HasPrefix(id.Value, "urn:isbn:") {
			book.ISBN = v
			break
		}
	}

	return book
}

// readSpine extracts chapter text for each spine item. Failures are
// per-chapter: a bad item is logged and skipped.
func readSpine(zr *zip.Reader, pkg *opfPackage, baseDir string) []Chapter {
	hrefByID := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		hrefByID[item.ID] = item.Href
	}

	chapters := make([]Chapter, 0, len(pkg.Spine.ItemRefs))
	for pos, ref := range pkg.Spine.ItemRefs {
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			log.Printf("epub: spine idref %q not in manifest, skipping", ref.IDRef)
			continue
		}

		docPath := href
		if baseDir != "." && baseDir != "" {
			docPath = path.Join(baseDir, href)
		}

		data, err := readZipFile(zr, docPath)
		if err != nil {
			log.Printf("epub: spine item %q unreadable, skipping: %v", docPath, err)
			continue
		}

		raw := string(data)
		chapters = append(chapters, Chapter{
			Title:    chapterTitle(raw, href),
			Content:  StripTags(raw),
			Position: pos,
		})
	}
	return chapters
}

// chapterTitle pulls a title from the first heading or <title> element,
// falling back to the document file name.
func chapterTitle(doc, href string) string {
	for _, tag := range []string{"h1", "h2", "title"} {
		if t := firstTagText(doc, tag); t != "" {
			return t
		}
	}
	base := path.Base(href)
	return strings.TrimSuffix(base, path.Ext(base))
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}
