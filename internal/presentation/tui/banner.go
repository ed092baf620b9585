package tui

import "fmt"

var bannerLines = []struct {
	text  string
	color string
}{
	{` __      __      .__  .__    .____    .__  __   `, "#34d399"},
	{`/  \    /  \ ____|  | |  |   |    |   |__|/  |_ `, "#2dd4bf"},
	{`\   \/\/   // __ \  | |  |   |    |   |  \   __\`, "#22d3ee"},
	{` \        /\  ___/  |_|  |__ |    |___|  ||  |  `, "#38bdf8"},
	{`  \__/\  /  \___  >____/____/|_______ \__||__|  `, "#60a5fa"},
	{`       \/       \/                   \/         `, "#818cf8"},
}

// Banner prints the WellLit banner, coloured when the profile allows it.
func (p *Printer) Banner() {
	fmt.Fprintln(p.out)
	for _, l := range bannerLines {
		fmt.Fprintln(p.out, p.profile.String(l.text).Foreground(p.profile.Color(l.color)))
	}
	fmt.Fprintln(p.out)
}
