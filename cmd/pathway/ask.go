package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prognoshealth/pathwayai/config"
	"github.com/prognoshealth/pathwayai/internal/app"
)

func newAskCommand() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "ask [message...]",
		Short: "Stream a completion to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), cmd.OutOrStdout(), profile, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&profile, "profile", config.StreamProfile, "prompt profile to use")
	return cmd
}

func runAsk(ctx context.Context, out io.Writer, name, message string) error {
	a, err := app.Load()
	if err != nil {
		return err
	}

	profile, err := a.Profiles.Get(name)
	if err != nil {
		return err
	}

	client, err := a.LLM()
	if err != nil {
		return err
	}

	err = client.Stream(ctx, profile, message, func(delta string) error {
		_, err := io.WriteString(out, delta)
		return err
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out)
	return err
}
