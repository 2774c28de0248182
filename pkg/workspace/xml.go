package workspace

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/zurustar/blockpy/pkg/block"
)

// xmlWorkspace mirrors <xml><variables/><block/>...</xml>. Element names are
// matched without namespace, so both plain and xmlns-qualified exports load.
type xmlWorkspace struct {
	XMLName   xml.Name      `xml:"xml"`
	Variables []xmlVariable `xml:"variables>variable"`
	Blocks    []xmlBlock    `xml:"block"`
}

type xmlVariable struct {
	ID   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

type xmlBlock struct {
	Type       string       `xml:"type,attr"`
	ID         string       `xml:"id,attr"`
	Disabled   string       `xml:"disabled,attr"`
	Mutation   *xmlMutation `xml:"mutation"`
	Fields     []xmlField   `xml:"field"`
	Values     []xmlInput   `xml:"value"`
	Statements []xmlInput   `xml:"statement"`
	Next       *xmlNext     `xml:"next"`
	Comment    *xmlComment  `xml:"comment"`
}

type xmlMutation struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Args  []xmlArg   `xml:"arg"`
}

type xmlArg struct {
	Name string `xml:"name,attr"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// xmlInput is a <value> or <statement>. A value socket may hold only the
// shadow block the toolbox placed there.
type xmlInput struct {
	Name   string    `xml:"name,attr"`
	Block  *xmlBlock `xml:"block"`
	Shadow *xmlBlock `xml:"shadow"`
}

type xmlNext struct {
	Block *xmlBlock `xml:"block"`
}

type xmlComment struct {
	Text string `xml:",chardata"`
}

var errMissingType = errors.New("block without type attribute")

func (x *xmlInput) child() *xmlBlock {
	if x.Block != nil {
		return x.Block
	}
	return x.Shadow
}

// toBlock converts an element and everything below it.
func (x *xmlBlock) toBlock() (*block.Block, error) {
	if x.Type == "" {
		if x.ID != "" {
			return nil, fmt.Errorf("%w (id %q)", errMissingType, x.ID)
		}
		return nil, errMissingType
	}

	b := block.New(x.Type).WithID(x.ID)
	b.Disabled = x.Disabled == "true"
	if x.Comment != nil {
		b.Comment = strings.TrimSpace(x.Comment.Text)
	}
	for _, f := range x.Fields {
		b.SetField(f.Name, f.Value)
	}

	if m := x.Mutation; m != nil {
		for _, a := range m.Attrs {
			b.SetMutation(a.Name.Local, a.Value)
		}
		args := make([]string, 0, len(m.Args))
		for _, a := range m.Args {
			args = append(args, a.Name)
		}
		b.SetArgs(args...)
		// Procedure calls carry their target in the mutation only.
		if name, ok := b.Mutation.Attrs["name"]; ok && !b.HasField("NAME") {
			b.SetField("NAME", name)
		}
	}

	for _, inputs := range [][]xmlInput{x.Values, x.Statements} {
		for i := range inputs {
			c := inputs[i].child()
			if c == nil {
				continue
			}
			child, err := c.toBlock()
			if err != nil {
				return nil, err
			}
			b.SetInput(inputs[i].Name, child)
		}
	}

	if x.Next != nil && x.Next.Block != nil {
		next, err := x.Next.Block.toBlock()
		if err != nil {
			return nil, err
		}
		b.Next = next
	}
	return b, nil
}
