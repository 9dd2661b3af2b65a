package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaypeewhat/ThriftStore/client"
)

var chatCmd = &cobra.Command{
	Use:   "chat <order-id>",
	Short: "Chat with the other party of an order",
	Args:  cobra.ExactArgs(1),
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&apiBase, "api", "", "API base URL")
	chatCmd.Flags().StringVar(&email, "email", "", "Account email")
	chatCmd.Flags().StringVar(&password, "password", "", "Account password")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, _, log, err := signIn(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer sess.Teardown()

	th, err := sess.OpenThread(ctx, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	me := sess.User().ID

	printed := map[string]bool{}
	show := func() {
		for _, e := range th.Entries() {
			if e.State != client.OpConfirmed || printed[e.Message.ID] {
				continue
			}
			printed[e.Message.ID] = true
			who := "them"
			if e.Message.SenderID == me {
				who = "you"
			}
			fmt.Fprintf(out, "[%s] %s: %s\n", e.Message.CreatedAt.Format("15:04"), who, e.Message.Content)
		}
	}
	updates := make(chan struct{}, 1)
	th.OnChange(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	show()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
			show()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if _, err := th.Send(ctx, line); err != nil {
				fmt.Fprintf(out, "! not sent (%v); draft kept: %s\n", err, th.Draft())
				continue
			}
			show()
		}
	}
}
