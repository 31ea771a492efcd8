package particle

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

// DebugDump writes every slot, dead or alive, to w.
func (p *Pool) DebugDump(w io.Writer) error {
	if _, err := io.WriteString(w, "particles:\n"); err != nil {
		return err
	}
	for i := range p.state {
		s := p.Slot(i)
		_, err := fmt.Fprintf(w, "particle %d: state=%s life=%d\n  pos=%s\n  vel=%s\n  colour=%s\n",
			i, s.State, s.Life, fmtVec(s.Position), fmtVec(s.Velocity), fmtVec(s.Colour))
		if err != nil {
			return err
		}
	}
	return nil
}

func fmtVec(v mgl32.Vec4) string {
	return fmt.Sprintf("[%.4f %.4f %.4f %.4f]", v[0], v[1], v[2], v[3])
}
