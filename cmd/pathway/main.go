// Command pathway runs the chat handlers outside of aws.
//
//	pathway serve --addr :3001
//	pathway ask "explain the water cycle"
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pathway",
		Short:         "Run the classroom chat assistant locally",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(), newAskCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("pathway failed")
		os.Exit(1)
	}
}
