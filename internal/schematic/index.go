package schematic

import (
	"fmt"

	"github.com/beevik/etree"
)

// Index is the derived ref-to-component lookup built from the loaded
// component list and the refs discovered in the rendered SVG. It is rebuilt
// from scratch whenever either input changes and never mutated incrementally.
type Index struct {
	ByRef    map[string]Component
	Warnings []string
}

// BuildIndex maps every component by ref and records a warning for each
// component that has no matching rendered element. Ref collisions are not
// deduplicated; the last component wins. SVG refs without a matching
// component are dropped silently and simply remain non-interactive.
func BuildIndex(components []Component, svgRefs map[string]*etree.Element) Index {
	index := Index{
		ByRef:    make(map[string]Component, len(components)),
		Warnings: make([]string, 0),
	}

	for _, component := range components {
		index.ByRef[component.Ref] = component
		if _, rendered := svgRefs[component.Ref]; !rendered {
			index.Warnings = append(index.Warnings,
				fmt.Sprintf("component %s has no matching schematic element", component.Ref))
		}
	}

	return index
}

// Lookup returns the component indexed under ref, if any.
func (i Index) Lookup(ref string) (Component, bool) {
	component, ok := i.ByRef[ref]
	return component, ok
}
