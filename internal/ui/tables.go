package ui

import (
	"fmt"
	"io"

	"github.com/vvka-141/songplays/internal/schema"
)

// writeTableList prints the tables a reset drops, in drop order.
func writeTableList(w io.Writer) {
	fmt.Fprintln(w, "Tables to drop:")
	for _, t := range schema.All() {
		fmt.Fprintf(w, "  - %s (%s)\n", t.Name, t.Kind)
	}
}
