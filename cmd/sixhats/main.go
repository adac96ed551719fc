// Command sixhats runs Six Thinking Hats sessions against a language model.
package main

import (
	"os"

	"github.com/Iron-Ham/sixhats/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
