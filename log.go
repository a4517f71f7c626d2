package gemdrop

import (
	"os"

	"github.com/charmbracelet/log"
)

// Log is the package-level logger used when a component is given none.
var Log = log.NewWithOptions(os.Stderr, log.Options{
	Prefix:          "gemdrop",
	ReportTimestamp: true,
})

// SetLevel parses a level name such as "debug" and applies it to Log.
func SetLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	return nil
}
