// Command dashaudit signs into a running portal, drives the dashboard view
// state through every section and prints the derived account figures. It is
// used to smoke-check a deployment from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kareemeredaze/maitre-seo/pkg/dashboard"
)

const (
	commandUseName          = "dashaudit"
	commandShortDescription = "Exercise the portal dashboard API for one account"

	flagNameBaseURL  = "base-url"
	flagNameEmail    = "email"
	flagNamePassword = "password"

	flagUsageBaseURL  = "base URL of the portal"
	flagUsageEmail    = "account email"
	flagUsagePassword = "account password"

	auditTimeout = 30 * time.Second
)

func runAudit(command *cobra.Command, _ []string) error {
	baseURL, _ := command.Flags().GetString(flagNameBaseURL)
	email, _ := command.Flags().GetString(flagNameEmail)
	password, _ := command.Flags().GetString(flagNamePassword)

	ctx, cancel := context.WithTimeout(command.Context(), auditTimeout)
	defer cancel()

	client, clientErr := dashboard.NewClient(baseURL)
	if clientErr != nil {
		return clientErr
	}
	if signInErr := client.SignIn(ctx, email, password); signInErr != nil {
		return fmt.Errorf("sign in: %w", signInErr)
	}

	controller := dashboard.NewController(client)
	controller.Start(ctx)
	controller.WaitIdle()
	controller.ShowView(ctx, dashboard.ViewCampaigns)
	controller.ShowView(ctx, dashboard.ViewBilling)
	controller.WaitIdle()

	if controller.SessionExpired() {
		return fmt.Errorf("session rejected while loading dashboard resources")
	}

	reportSnapshots(command, controller)
	reportSummary(command, controller.Summary())

	return client.SignOut(ctx)
}

func reportSnapshots(command *cobra.Command, controller *dashboard.Controller) {
	profileSnapshot := controller.ProfileSnapshot()
	if profileSnapshot.HasData {
		command.Printf("compte: %s <%s>\n", profileSnapshot.Data.FullName, profileSnapshot.Data.Email)
	} else {
		command.Printf("compte: indisponible (%s)\n", profileSnapshot.ErrorMessage)
	}

	campaignsSnapshot := controller.CampaignsSnapshot()
	if campaignsSnapshot.HasData {
		command.Printf("campagnes: %d\n", len(campaignsSnapshot.Data))
		for _, campaign := range campaignsSnapshot.Data {
			command.Printf("  - %s [%s] %d/%d liens\n",
				campaign.Name, campaign.Status, campaign.DeliveredLinks, campaign.TargetLinks)
		}
	}

	detailSnapshot := controller.CampaignDetailSnapshot()
	if detailSnapshot.HasData {
		command.Printf("backlinks (%s): %d\n", detailSnapshot.Data.Name, len(detailSnapshot.Data.Backlinks))
	}

	invoicesSnapshot := controller.InvoicesSnapshot()
	if invoicesSnapshot.HasData {
		command.Printf("factures: %d\n", len(invoicesSnapshot.Data))
	}
}

func reportSummary(command *cobra.Command, summary dashboard.AccountSummary) {
	command.Printf("progression globale: %d%% (%d/%d liens)\n",
		summary.ProgressPercent, summary.TotalDelivered, summary.TotalTarget)
	if summary.ActiveCampaign != nil {
		command.Printf("campagne active: %s\n", summary.ActiveCampaign.Name)
	}
	command.Printf("total réglé: %.2f €\n", summary.TotalPaid)
	if summary.NextPending != nil {
		command.Printf("prochaine facture: %s (%.2f €) échéance %s\n",
			summary.NextPending.Number, summary.NextPending.Amount,
			summary.NextPending.DueDate.Format("2006-01-02"))
	}
}

func main() {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		RunE:  runAudit,
	}
	rootCommand.Flags().String(flagNameBaseURL, "http://localhost:8080", flagUsageBaseURL)
	rootCommand.Flags().String(flagNameEmail, "", flagUsageEmail)
	rootCommand.Flags().String(flagNamePassword, "", flagUsagePassword)
	_ = rootCommand.MarkFlagRequired(flagNameEmail)
	_ = rootCommand.MarkFlagRequired(flagNamePassword)

	if executeErr := rootCommand.ExecuteContext(context.Background()); executeErr != nil {
		fmt.Fprintln(os.Stderr, executeErr)
		os.Exit(1)
	}
}
