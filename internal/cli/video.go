// video.go implements the "gmtools video" command.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gm-tools/gmtools/internal/sentiment"
	"github.com/gm-tools/gmtools/internal/tui/views"
	"github.com/gm-tools/gmtools/internal/video"
)

var videoCmd = &cobra.Command{
	Use:   "video <url>",
	Short: "Analyze the sentiment of a YouTube video",
	Args:  cobra.ExactArgs(1),
	RunE:  runVideo,
}

var neutralFlag bool

func init() {
	videoCmd.Flags().BoolVar(&neutralFlag, "neutral", false, "Request a neutral bucket (default from config)")
}

func runVideo(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	polarity, err := sentiment.ParsePolarity(rt.cfg.Sentiment.Polarity)
	if err != nil {
		return err
	}
	neutral := rt.cfg.Video.IncludeNeutral
	if cmd.Flags().Changed("neutral") {
		neutral = neutralFlag
	}

	sess := video.New(rt.client(), video.Options{
		IncludeNeutral: neutral,
		Classifier:     sentiment.NewClassifier(polarity, rt.cfg.Sentiment.HighlightLow, rt.cfg.Sentiment.HighlightHigh),
		Sink:           rt.sink,
		Logger:         rt.logger,
	})

	sum, err := sess.Analyze(cmd.Context(), args[0])
	if err != nil {
		return errors.New(video.Describe(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), views.RenderSummary(sum, sess.Status().Thumbnail()))
	return nil
}
