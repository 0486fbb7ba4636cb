package workflow

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	bperrors "github.com/alexisbeaulieu97/blueprint/pkg/errors"
)

// hclWorkflowFile is the top-level decode target for .hcl workflow files:
//
//	name = "content"
//	node "extract" {
//	  type       = "datasource"
//	  depends_on = []
//	  config     = { query = ".items" }
//	}
type hclWorkflowFile struct {
	Name        string     `hcl:"name,optional"`
	Description string     `hcl:"description,optional"`
	Nodes       []*hclNode `hcl:"node,block"`
}

type hclNode struct {
	ID        string    `hcl:"id,label"`
	Type      string    `hcl:"type,optional"`
	DependsOn []string  `hcl:"depends_on,optional"`
	Config    cty.Value `hcl:"config,optional"`
}

func parseHCL(data []byte, path string) (*Workflow, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, bperrors.NewParseError(path, diagLine(diags), diags)
	}

	var parsed hclWorkflowFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, bperrors.NewParseError(path, diagLine(diags), diags)
	}

	wf := &Workflow{
		Name:        parsed.Name,
		Description: parsed.Description,
		Nodes:       make([]Node, 0, len(parsed.Nodes)),
	}
	for _, block := range parsed.Nodes {
		node := Node{
			ID:        block.ID,
			Type:      NodeType(block.Type),
			DependsOn: block.DependsOn,
		}
		if !block.Config.IsNull() {
			native, err := ctyToNative(block.Config)
			if err != nil {
				return nil, bperrors.NewParseError(path, 0, fmt.Errorf("node %q config: %w", block.ID, err))
			}
			cfg, ok := native.(map[string]any)
			if !ok {
				return nil, bperrors.NewParseError(path, 0, fmt.Errorf("node %q config must be an object, got %s", block.ID, block.Config.Type().FriendlyName()))
			}
			node.Config = cfg
		}
		wf.Nodes = append(wf.Nodes, node)
	}

	return wf, nil
}

func diagLine(diags hcl.Diagnostics) int {
	for _, diag := range diags {
		if diag.Subject != nil {
			return diag.Subject.Start.Line
		}
	}
	return 0
}

// ctyToNative converts a cty.Value into plain Go values. Whole numbers become
// int so that config accessors see the same shapes the YAML loader produces.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			var i int
			if err := gocty.FromCtyValue(v, &i); err == nil {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
