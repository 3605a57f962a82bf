package version

import (
	"fmt"
	"io"
)

// Version information, set with -ldflags at build time.
var (
	BuildTS   = "None"
	GitHash   = "None"
	GitBranch = "None"
	Version   = "dev"
)

const Name = "listcrawler"

func GetVersion() string {
	if GitHash != "" && GitHash != "None" {
		h := GitHash
		if len(h) > 7 {
			h = h[:7]
		}
		return fmt.Sprintf("%s-%s", Version, h)
	}
	return Version
}

// UserAgent is the default identity sent with every request.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (+https://github.com/dreamerjackson/listcrawler)", Name, Version)
}

// Printer print build version
func Printer(w io.Writer) {
	fmt.Fprintln(w, "Version:          ", GetVersion())
	fmt.Fprintln(w, "Git Branch:       ", GitBranch)
	fmt.Fprintln(w, "Git Commit:       ", GitHash)
	fmt.Fprintln(w, "Build Time (UTC): ", BuildTS)
}
