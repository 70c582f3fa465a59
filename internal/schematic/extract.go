package schematic

import (
	"github.com/beevik/etree"
)

// RefAttribute is the marker attribute the snapshot generator stamps on every
// interactive schematic element.
const RefAttribute = "data-ref"

// ExtractRefs parses raw SVG markup and returns every element carrying a
// non-empty RefAttribute, keyed by attribute value. When the same ref appears
// on multiple elements the last one in document order wins; duplicates are a
// data-quality issue in the exported snapshot, not a parser fault. Malformed
// markup degrades to an empty map rather than an error.
func ExtractRefs(svgMarkup string) map[string]*etree.Element {
	refs := make(map[string]*etree.Element)

	document := etree.NewDocument()
	if err := document.ReadFromString(svgMarkup); err != nil {
		return refs
	}

	root := document.Root()
	if root == nil {
		return refs
	}

	collectRefs(root, refs)
	return refs
}

func collectRefs(element *etree.Element, refs map[string]*etree.Element) {
	if value := element.SelectAttrValue(RefAttribute, ""); value != "" {
		refs[value] = element
	}
	for _, child := range element.ChildElements() {
		collectRefs(child, refs)
	}
}
