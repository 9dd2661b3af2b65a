package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaypeewhat/ThriftStore/client"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow your notification feed",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&apiBase, "api", "", "API base URL")
	watchCmd.Flags().StringVar(&email, "email", "", "Account email")
	watchCmd.Flags().StringVar(&password, "password", "", "Account password")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, cfg, log, err := signIn(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer sess.Teardown()

	out := cmd.OutOrStdout()
	var feed *client.Feed
	redraw := make(chan struct{}, 1)
	feed, err = sess.StartFeed(ctx, client.FeedOptions{
		Limit:        cfg.Notify.FeedLimit,
		PollInterval: cfg.Notify.PollInterval,
		OnChange: func() {
			select {
			case redraw <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Watching notifications for %s (Ctrl-C to stop)\n", sess.User().DisplayName())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-redraw:
			fmt.Fprintln(out, strings.Repeat("-", 60))
			fmt.Fprintf(out, "%d unread\n", feed.Unread())
			for _, n := range feed.Items() {
				mark := " "
				if !n.IsRead {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s  %s: %s\n", mark, n.CreatedAt.Format("Jan 02 15:04"), n.Title, n.Message)
			}
		}
	}
}
