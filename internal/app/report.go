package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/process"

	"vdpsim/internal/bus"
	"vdpsim/internal/clock"
	"vdpsim/internal/sdram"
	"vdpsim/internal/session"
)

// Report summarises a finished run.
type Report struct {
	Width, Height int
	Frequency     clock.Freq
	Backend       string
	Session       session.Stats
	SDRAM         sdram.Stats
	QuitReason    string
	TracePath     string

	// Process resources, zero when unavailable
	CPUPercent float64
	RSS        uint64
}

// Report collects the statistics of the run.
func (app *Application) Report() Report {
	r := Report{
		Frequency:  app.config.Frequency(),
		Backend:    app.BackendName(),
		Session:    app.Stats(),
		QuitReason: app.QuitReason(),
	}
	if app.design != nil {
		r.Width, r.Height = app.design.Resolution()
	}
	if app.memory != nil {
		r.SDRAM = app.memory.Stats()
	}
	if app.recorder != nil {
		r.TracePath = app.recorder.Path()
	}
	r.CPUPercent, r.RSS = processUsage()
	return r
}

func processUsage() (cpu float64, rss uint64) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0
	}
	if c, err := p.CPUPercent(); err == nil {
		cpu = c
	}
	if m, err := p.MemoryInfo(); err == nil {
		rss = m.RSS
	}
	return cpu, rss
}

// Print writes the report in the format shown at exit.
func (r Report) Print(w io.Writer) {
	s := r.Session
	fmt.Fprintf(w, "📊 Session Statistics:\n")
	fmt.Fprintf(w, "   Frames presented: %d\n", s.Frames)
	fmt.Fprintf(w, "   Session time: %v\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "   Frames per second: %.1f\n", s.FPS())
	fmt.Fprintf(w, "   Virtual time: %v (%d cycles at %v)\n", s.VirtualTime, s.Cycles, r.Frequency)
	fmt.Fprintf(w, "   Speed: %.4fx real time\n", s.SpeedRatio())
	fmt.Fprintf(w, "   SDRAM: %d reads, %d writes, %d refreshes, %d violations\n",
		r.SDRAM.Reads, r.SDRAM.Writes, r.SDRAM.Refreshes, r.SDRAM.Violations)
	if cmds := formatCommands(r.SDRAM.Commands); cmds != "" {
		fmt.Fprintf(w, "   Commands: %s\n", cmds)
	}
	if r.RSS > 0 {
		fmt.Fprintf(w, "   Process: %.1f%% CPU, %.1f MB RSS\n", r.CPUPercent, float64(r.RSS)/(1024*1024))
	}
	if r.QuitReason != "" {
		fmt.Fprintf(w, "   Stopped: %s\n", r.QuitReason)
	}
	if r.TracePath != "" {
		fmt.Fprintf(w, "   Trace: %s\n", r.TracePath)
	}
}

func formatCommands(counts map[bus.Command]uint64) string {
	cmds := make([]bus.Command, 0, len(counts))
	for c := range counts {
		cmds = append(cmds, c)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i] < cmds[j] })

	parts := make([]string, len(cmds))
	for i, c := range cmds {
		parts[i] = fmt.Sprintf("%v=%d", c, counts[c])
	}
	return strings.Join(parts, " ")
}
