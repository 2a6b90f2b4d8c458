// Package effects builds the ffmpeg filter chains applied to an export.
package effects

import (
	"fmt"
	"strings"
)

// Fade is a fade-in at the start and a fade-out at the end, in seconds.
type Fade struct {
	In  float64
	Out float64
}

// fit shrinks both fades proportionally when they do not fit in duration.
func (f Fade) fit(duration float64) Fade {
	in, out := max(0, f.In), max(0, f.Out)
	if total := in + out; total > duration && total > 0 {
		scale := duration / total
		in, out = in*scale, out*scale
	}
	return Fade{In: in, Out: out}
}

// VideoFilter returns the -vf chain, or "" when there is nothing to fade.
func (f Fade) VideoFilter(duration float64) string {
	return f.chain("fade", duration)
}

// AudioFilter returns the -af chain, or "" when there is nothing to fade.
func (f Fade) AudioFilter(duration float64) string {
	return f.chain("afade", duration)
}

func (f Fade) chain(filter string, duration float64) string {
	if duration <= 0 {
		return ""
	}
	f = f.fit(duration)

	var parts []string
	if f.In > 0 {
		parts = append(parts, fmt.Sprintf("%s=t=in:st=0:d=%.3f", filter, f.In))
	}
	if f.Out > 0 {
		parts = append(parts, fmt.Sprintf("%s=t=out:st=%.3f:d=%.3f", filter, duration-f.Out, f.Out))
	}
	return strings.Join(parts, ",")
}
