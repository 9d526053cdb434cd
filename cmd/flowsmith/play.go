package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flowsmith/flowsmith/internal/presentation/tui"
	"github.com/flowsmith/flowsmith/pkg/player"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play <flow-id|file>",
	Short: "Walk through a flow interactively",
	Long:  `Loads a flow and plays it in the terminal: each message node is rendered in turn and outgoing edges become choices.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		headless, _ := cmd.Flags().GetBool("headless")

		f, err := loadFlowArg(cmd, args[0])
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}

		p := player.New()
		p.Input = os.Stdin
		p.Output = os.Stdout
		p.Headless = headless

		// Banner and markdown styling only when stdout is a terminal;
		// piped output stays plain.
		if !headless && term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner()
			p.Renderer = tui.NewRenderer()
		}

		if err := p.Play(cmd.Context(), f); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Bool("headless", false, "Run without prompts or styling, taking the first edge at each step")
}
