// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders the dataset in formats other than its canonical
// JSON: BibTeX for citation managers and YAML for hand review.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/nickng/bibtex"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/secpapers/pkg/types"
)

// Format names an export format.
type Format string

const (
	FormatBibTeX Format = "bibtex"
	FormatYAML   Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatBibTeX, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want bibtex or yaml)", s)
}

// Write renders ds to w in the given format.
func Write(w io.Writer, format Format, ds *types.Dataset) error {
	var data []byte
	switch format {
	case FormatBibTeX:
		data = []byte(BibTeX(ds.Papers).PrettyString())
	case FormatYAML:
		var err error
		if data, err = yaml.Marshal(ds); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s export: %w", format, err)
	}
	return nil
}

// booktitles maps venues to their proceedings names.
var booktitles = map[types.Venue]string{
	types.VenueSP:     "IEEE Symposium on Security and Privacy",
	types.VenueCCS:    "ACM Conference on Computer and Communications Security",
	types.VenueUSENIX: "USENIX Security Symposium",
	types.VenueNDSS:   "Network and Distributed System Security Symposium",
}

// BibTeX builds one @inproceedings entry per paper. Cite keys that would
// collide get a letter suffix ("b", "c", ...) in paper order.
func BibTeX(papers []types.Paper) *bibtex.BibTex {
	bib := bibtex.NewBibTex()
	seen := make(map[string]int, len(papers))

	for _, p := range papers {
		key := CiteKey(p)
		seen[key]++
		if n := seen[key]; n > 1 {
			key += string(rune('a' + n - 1))
		}

		entry := bibtex.NewBibEntry("inproceedings", key)
		entry.AddField("title", bibtex.NewBibConst(escape(p.Title)))
		if len(p.Authors) > 0 {
			names := make([]string, len(p.Authors))
			for i, a := range p.Authors {
				names[i] = escape(a.Name)
			}
			entry.AddField("author", bibtex.NewBibConst(strings.Join(names, " and ")))
		}
		if bt, ok := booktitles[p.Venue]; ok {
			entry.AddField("booktitle", bibtex.NewBibConst(bt))
		} else if p.Venue != "" {
			entry.AddField("booktitle", bibtex.NewBibConst(escape(string(p.Venue))))
		}
		if p.Year > 0 {
			entry.AddField("year", bibtex.NewBibConst(strconv.Itoa(p.Year)))
		}
		if p.URL != "" {
			entry.AddField("url", bibtex.NewBibConst(p.URL))
		}
		if p.Award != "" {
			entry.AddField("note", bibtex.NewBibConst(string(p.Award)))
		}
		bib.AddEntry(entry)
	}
	return bib
}

// titleStopwords are skipped when picking the cite key word.
var titleStopwords = map[string]bool{"a": true, "an": true, "the": true}

// CiteKey is <lastname><year><firstword> in lowercase ASCII, e.g.
// "wikner2025breaking". Missing parts are left out.
func CiteKey(p types.Paper) string {
	var b strings.Builder
	if len(p.Authors) > 0 {
		if fields := strings.Fields(p.Authors[0].Name); len(fields) > 0 {
			b.WriteString(asciiWord(fields[len(fields)-1]))
		}
	}
	if p.Year > 0 {
		b.WriteString(strconv.Itoa(p.Year))
	}
	for _, w := range strings.Fields(p.Title) {
		if w = asciiWord(w); w != "" && !titleStopwords[w] {
			b.WriteString(w)
			break
		}
	}
	if b.Len() == 0 {
		return "paper"
	}
	return b.String()
}

// asciiWord strips diacritics and keeps lowercase ASCII letters and digits.
func asciiWord(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if r > unicode.MaxASCII {
			continue
		}
		r = unicode.ToLower(r)
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var latexEscaper = strings.NewReplacer(
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
)

func escape(s string) string {
	return latexEscaper.Replace(s)
}
