package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ironsheep/mockup-tools-mcp/internal/model"
)

// Tree writes one line per component, indented by depth:
//
//	#0 window title="Settings" @0,0 14x5
//	  #1 checkbox label="Dark" state="checked" @2,1 8x1
func Tree(w io.Writer, m *model.ComponentModel) error {
	var err error
	m.Walk(func(c model.Component, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(c))
		return true
	})
	return err
}

// TreeString is Tree into a string.
func TreeString(m *model.ComponentModel) string {
	var sb strings.Builder
	_ = Tree(&sb, m)
	return sb.String()
}

func describe(c model.Component) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s", c.ID, c.Type)
	for _, kv := range [2]map[string]string{c.Properties, c.Extensions} {
		keys := make([]string, 0, len(kv))
		for k := range kv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%q", k, kv[k])
		}
	}
	fmt.Fprintf(&sb, " @%d,%d %dx%d", c.Box.MinX, c.Box.MinY, c.Box.Width(), c.Box.Height())
	return sb.String()
}
