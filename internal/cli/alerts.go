package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ThimethZ03/utility-billing-system2/pkg/client"
	"github.com/spf13/cobra"
)

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alerts",
		Aliases: []string{"alert"},
		Short:   "Check limits and manage alerts",
	}

	cmd.AddCommand(newAlertsCheckCmd())
	cmd.AddCommand(newAlertsSettingsCmd())
	cmd.AddCommand(newAlertsFeedCmd())
	cmd.AddCommand(newAlertsAckCmd())
	cmd.AddCommand(newAlertsTestEmailCmd())
	cmd.AddCommand(newAlertsResetCmd())
	cmd.AddCommand(newAlertsNotificationsCmd())

	return cmd
}

func newAlertsCheckCmd() *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check this month's usage against the limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Alerts().Check(context.Background(), branchOrDefault(branch))
			if err != nil {
				return fmt.Errorf("failed to check alerts: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Period:  %s\n", result.Period)
			fmt.Fprintf(out, "Usage:   %s units, %s\n", formatUnits(result.TotalUnits), formatAmount(result.TotalAmount))
			fmt.Fprintf(out, "Emails:  %d sent\n\n", result.EmailsSent)

			if len(result.Alerts) == 0 && len(result.ProjectedAlerts) == 0 {
				fmt.Fprintln(out, "No limits exceeded")
				return nil
			}

			t := NewTable("TYPE", "SEVERITY", "CURRENT", "LIMIT", "USAGE", "PROJECTED")
			t.writer = out
			for _, group := range [][]client.AlertEvent{result.Alerts, result.ProjectedAlerts} {
				for _, a := range group {
					t.AddRow(a.Type, formatSeverity(a.Severity), formatUnits(a.Current), formatUnits(a.Limit),
						strconv.Itoa(a.Percentage)+"%", strconv.FormatBool(a.Projected))
				}
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch to check (default: whole account)")

	return cmd
}

func newAlertsSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change alert settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := apiClient.Alerts().GetSettings(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}
			return printSettings(cmd, settings)
		},
	}

	cmd.AddCommand(newAlertsSettingsSetCmd())

	return cmd
}

func newAlertsSettingsSetCmd() *cobra.Command {
	var (
		amount, units float64
		emails        []string
		email, push   bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update alert settings; only the given flags change",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req client.UpdateSettingsRequest
			flags := cmd.Flags()
			if flags.Changed("max-amount") {
				req.MaxMonthlyAmount = &amount
			}
			if flags.Changed("max-units") {
				req.MaxMonthlyUnits = &units
			}
			if flags.Changed("emails") {
				req.AlertEmails = emails
			}
			if flags.Changed("email-alerts") {
				req.EnableEmailAlerts = &email
			}
			if flags.Changed("push-alerts") {
				req.EnablePushAlerts = &push
			}

			settings, err := apiClient.Alerts().UpdateSettings(context.Background(), req)
			if err != nil {
				return fmt.Errorf("failed to update settings: %w", err)
			}
			return printSettings(cmd, settings)
		},
	}

	cmd.Flags().Float64Var(&amount, "max-amount", 0, "monthly bill limit in rupees (0 disables)")
	cmd.Flags().Float64Var(&units, "max-units", 0, "monthly unit limit (0 disables)")
	cmd.Flags().StringSliceVar(&emails, "emails", nil, "alert recipients, comma separated")
	cmd.Flags().BoolVar(&email, "email-alerts", true, "send alert emails")
	cmd.Flags().BoolVar(&push, "push-alerts", true, "publish dashboard alerts")

	return cmd
}

func printSettings(cmd *cobra.Command, s *client.AlertSettings) error {
	if getOutputFormat() != "table" {
		return printOutput(s)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Max amount:    %s\n", formatAmount(s.MaxMonthlyAmount))
	fmt.Fprintf(out, "Max units:     %s\n", formatUnits(s.MaxMonthlyUnits))
	fmt.Fprintf(out, "Recipients:    %s\n", strings.Join(s.AlertEmails, ", "))
	fmt.Fprintf(out, "Email alerts:  %t\n", s.EnableEmailAlerts)
	fmt.Fprintf(out, "Push alerts:   %t\n", s.EnablePushAlerts)
	return nil
}

func newAlertsFeedCmd() *cobra.Command {
	var opts client.FeedListOptions

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List dashboard alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Alerts().Feed(context.Background(), &opts)
			if err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(page)
			}

			t := NewTable("ID", "BRANCH", "TYPE", "SEVERITY", "STATUS", "PERIOD", "MESSAGE")
			t.writer = cmd.OutOrStdout()
			for _, a := range page.Data {
				t.AddRow(
					strconv.FormatInt(a.ID, 10),
					a.BranchID,
					a.Type,
					formatSeverity(a.Severity),
					formatStatus(a.Status),
					a.Period,
					truncate(a.Message, 60),
				)
			}
			t.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d alerts)\n", page.Page, page.TotalPages, page.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Branch, "branch", "", "filter by branch")
	cmd.Flags().StringVar(&opts.Type, "type", "", "filter by type (units, amount)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (active, acknowledged)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "items per page")

	return cmd
}

func newAlertsAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge a dashboard alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid alert ID: %s", args[0])
			}

			if err := apiClient.Alerts().Acknowledge(context.Background(), id); err != nil {
				return fmt.Errorf("failed to acknowledge alert: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alert %d acknowledged\n", id)
			return nil
		},
	}
}

func newAlertsTestEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-email <address>",
		Short: "Send a test alert email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Alerts().SendTestEmail(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to send test email: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test email sent to %s\n", args[0])
			return nil
		},
	}
}

func newAlertsResetCmd() *cobra.Command {
	var branch, alertType string

	cmd := &cobra.Command{
		Use:   "reset-cooldowns",
		Short: "Allow alert emails to be sent again immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Alerts().ResetCooldowns(context.Background(), branch, alertType); err != nil {
				return fmt.Errorf("failed to reset cooldowns: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cooldowns reset")
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch scope (default: whole account)")
	cmd.Flags().StringVar(&alertType, "type", "", "alert type (units, amount; default: both)")

	return cmd
}

func newAlertsNotificationsCmd() *cobra.Command {
	var opts client.NotificationListOptions

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notification deliveries",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Alerts().Notifications(context.Background(), &opts)
			if err != nil {
				return fmt.Errorf("failed to list notifications: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(page)
			}

			t := NewTable("TIME", "CHANNEL", "RECIPIENT", "TYPE", "STATUS", "ERROR")
			t.writer = cmd.OutOrStdout()
			for _, n := range page.Data {
				t.AddRow(
					n.CreatedAt.Format("2006-01-02 15:04"),
					n.Channel,
					n.Recipient,
					n.AlertType,
					formatStatus(n.Status),
					truncate(n.Error, 40),
				)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "", "filter by channel (email, dashboard)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (sent, failed, suppressed)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "items per page")

	return cmd
}
