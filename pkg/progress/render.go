package progress

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Renderer paints a single updating progress line on a terminal.
type Renderer struct {
	out      io.Writer
	fileTint *color.Color
	doneTint *color.Color
	lastFile string
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:      out,
		fileTint: color.New(color.FgCyan),
		doneTint: color.New(color.FgGreen),
	}
}

// Handle implements Func.
func (r *Renderer) Handle(e Event) {
	if e.File != r.lastFile {
		if r.lastFile != "" {
			fmt.Fprintln(r.out)
		}
		r.fileTint.Fprintf(r.out, "%s (%s)\n", e.File, FormatBytes(e.Total))
		r.lastFile = e.File
	}

	fmt.Fprintf(r.out, "\r\033[KProgress: %.2f%% | %s/%s | Speed: %s | Chunk: %s | Elapsed: %s | ETA: %s",
		e.Percent(),
		FormatBytes(e.Transferred), FormatBytes(e.Total),
		FormatSpeed(e.Speed),
		FormatChunkSize(e.ChunkSize),
		FormatDuration(e.Elapsed),
		FormatDuration(e.ETA()),
	)
	if e.Done {
		fmt.Fprint(r.out, " ")
		r.doneTint.Fprint(r.out, "done")
		fmt.Fprintln(r.out)
		r.lastFile = ""
	}
}
