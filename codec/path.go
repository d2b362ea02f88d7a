package codec

import (
	"fmt"
	"strings"

	"github.com/oxhq/queryalgebra/dberr"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/path"
)

// EncodePath renders p in the dot-separated wire form from spec §6:
// "" for Self, "." between field accesses, "?" for not-null narrowing,
// ".*" for a collection-elements step. path.Path.String already
// implements this shape.
func EncodePath(p *path.Path) string {
	if s := p.String(); s != "this" {
		return s
	}
	return ""
}

// DecodePath parses the dot-separated wire form back into a Path
// rooted at root, resolving each component against the descriptor the
// previous step left off at. Readers parse strictly left-to-right
// (spec §6).
func DecodePath(root *descriptor.Descriptor, wire string) (*path.Path, error) {
	p := path.Self(root)
	if wire == "" {
		return p, nil
	}
	for _, raw := range strings.Split(wire, ".") {
		segment := raw
		for segment != "" {
			switch {
			case segment == "*":
				var err error
				switch p.Leaf().Container {
				case descriptor.ListContainer:
					p, err = path.ListElements(p)
				case descriptor.SetContainer:
					p, err = path.SetElements(p)
				default:
					return nil, dberr.New(dberr.SerializationError, wire, fmt.Sprintf("'.*' requires a list/set leaf, got %s", p.Leaf().SerialName))
				}
				if err != nil {
					return nil, err
				}
				segment = ""
			case strings.HasSuffix(segment, "?"):
				name := strings.TrimSuffix(segment, "?")
				if name != "" {
					next, err := accessField(p, name, wire)
					if err != nil {
						return nil, err
					}
					p = next
				}
				var err error
				p, err = path.NotNull(p)
				if err != nil {
					return nil, err
				}
				segment = ""
			default:
				next, err := accessField(p, segment, wire)
				if err != nil {
					return nil, err
				}
				p = next
				segment = ""
			}
		}
	}
	return p, nil
}

func accessField(p *path.Path, name, wire string) (*path.Path, error) {
	prop, ok := p.Leaf().FieldByName(name)
	if !ok {
		return nil, dberr.New(dberr.SerializationError, wire, fmt.Sprintf("no field %q on %s", name, p.Leaf().SerialName))
	}
	return path.Access(p, prop)
}
