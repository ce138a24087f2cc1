package importer

import (
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
)

// Compiled once; Zefania element names are upper-case by convention.
var (
	zefBooks    = xpath.MustCompile("//BIBLEBOOK")
	zefChapters = xpath.MustCompile("CHAPTER")
	zefVerses   = xpath.MustCompile("VERS")
	zefTitle    = xpath.MustCompile("/XMLBIBLE/INFORMATION/title")
	zefLang     = xpath.MustCompile("/XMLBIBLE/INFORMATION/language")
	zefIdent    = xpath.MustCompile("/XMLBIBLE/INFORMATION/identifier")
)

// FromZefania imports a Zefania XML Bible:
//
//	<XMLBIBLE biblename="...">
//	  <INFORMATION><title/><identifier/><language/></INFORMATION>
//	  <BIBLEBOOK bnumber="1" bname="Genesis">
//	    <CHAPTER cnumber="1"><VERS vnumber="1">text</VERS></CHAPTER>
//	  </BIBLEBOOK>
//	</XMLBIBLE>
func FromZefania(r io.Reader, meta Meta) (*bible.Corpus, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.NewParse("zefania", "", err.Error())
	}
	if xmlquery.FindOne(doc, "/XMLBIBLE") == nil {
		return nil, errors.NewParse("zefania", "", "missing XMLBIBLE root element")
	}

	b := newBuilder()
	c := b.corpus
	c.Version = innerText(xmlquery.QuerySelector(doc, zefIdent))
	c.Name = innerText(xmlquery.QuerySelector(doc, zefTitle))
	if c.Name == "" {
		if root := xmlquery.FindOne(doc, "/XMLBIBLE"); root != nil {
			c.Name = root.SelectAttr("biblename")
		}
	}
	c.Language = innerText(xmlquery.QuerySelector(doc, zefLang))

	for _, bookNode := range xmlquery.QuerySelectorAll(doc, zefBooks) {
		bnum, err := intAttr(bookNode, "bnumber")
		if err != nil {
			return nil, err
		}
		b.book(bnum, strings.TrimSpace(bookNode.SelectAttr("bname")))

		for _, chNode := range xmlquery.QuerySelectorAll(bookNode, zefChapters) {
			cnum, err := intAttr(chNode, "cnumber")
			if err != nil {
				return nil, err
			}
			for _, vNode := range xmlquery.QuerySelectorAll(chNode, zefVerses) {
				vnum, err := intAttr(vNode, "vnumber")
				if err != nil {
					return nil, err
				}
				b.add(bnum, cnum, vnum, verseText(vNode))
			}
		}
	}

	return finish(c, meta, "")
}

func innerText(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}

func intAttr(n *xmlquery.Node, name string) (int, error) {
	v := strings.TrimSpace(n.SelectAttr(name))
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewParse("zefania", "", "<"+n.Data+"> has invalid "+name+" "+strconv.Quote(v))
	}
	return i, nil
}

// verseText flattens inline elements such as <gr> and <STYLE> and drops
// <NOTE> footnotes.
func verseText(n *xmlquery.Node) string {
	var sb strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				sb.WriteString(c.Data)
			case xmlquery.ElementNode:
				if strings.EqualFold(c.Data, "NOTE") {
					continue
				}
				walk(c)
			}
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
