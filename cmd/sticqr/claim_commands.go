package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sticqr/internal/claims"
	"sticqr/internal/logging"
)

type claimView struct {
	Identifier  string `json:"identifier"`
	Outcome     string `json:"outcome"`
	Success     bool   `json:"success"`
	Reason      string `json:"reason"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type recordView struct {
	Identifier  string      `json:"identifier"`
	BatchID     string      `json:"batch_id,omitempty"`
	Status      string      `json:"status"`
	Claimed     bool        `json:"claimed"`
	GeneratedAt string      `json:"generated_at"`
	SourcePath  string      `json:"source_path,omitempty"`
	StickerPath string      `json:"sticker_path,omitempty"`
	RedirectURL string      `json:"redirect_url,omitempty"`
	Claims      []eventView `json:"claims"`
}

type eventView struct {
	ClaimedAt    string `json:"claimed_at"`
	MaskedNumber string `json:"masked_number"`
}

func newClaimCommand(ctx *commandContext) *cobra.Command {
	var (
		phone  string
		masked string
	)

	cmd := &cobra.Command{
		Use:   "claim <identifier>",
		Short: "Register a phone number against an unclaimed code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(phone) == "" {
				return fmt.Errorf("--phone is required")
			}
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			identifier := strings.TrimSpace(args[0])
			result, err := store.Claim(cmd.Context(), identifier, phone, masked)
			if err != nil {
				return err
			}
			logging.WithContext(cmd.Context(), ctx.log()).Info("claim attempted",
				logging.String(logging.FieldIdentifier, identifier),
				logging.String("outcome", string(result.Outcome)),
			)
			view := claimView{
				Identifier:  identifier,
				Outcome:     string(result.Outcome),
				Success:     result.Succeeded(),
				Reason:      result.Reason,
				RedirectURL: result.RedirectURL,
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, colorizeOutcome(humanLabel(view.Outcome)+": "+view.Reason, view.Success, shouldColorize(out)))
			if view.RedirectURL != "" {
				fmt.Fprintf(out, "Redirect: %s\n", view.RedirectURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&phone, "phone", "p", "", "Phone number of the claimant")
	cmd.Flags().StringVar(&masked, "masked", "", "Masked phone number to store (derived when empty)")
	return cmd
}

func newRedirectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "redirect <identifier>",
		Short: "Print where a scan of the code lands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			identifier := strings.TrimSpace(args[0])
			url, found, err := store.ResolveRedirect(cmd.Context(), identifier)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("qr code %s not found", identifier)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"identifier": identifier, "redirect_url": url})
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <identifier>",
		Short: "Show a code and its claim history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			identifier := strings.TrimSpace(args[0])
			rec, err := store.GetRecord(cmd.Context(), identifier)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("qr code %s not found", identifier)
			}
			events, err := store.ClaimEvents(cmd.Context(), identifier)
			if err != nil {
				return err
			}
			view := newRecordView(rec, events)
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}
			printRecord(cmd, view)
			return nil
		},
	}
}

func newRecordView(rec *claims.Record, events []*claims.Event) recordView {
	view := recordView{
		Identifier:  rec.Identifier,
		BatchID:     rec.BatchID,
		Status:      rec.Status,
		Claimed:     rec.Claimed,
		GeneratedAt: formatTime(rec.GeneratedAt),
		SourcePath:  rec.SourcePath,
		StickerPath: rec.StickerPath,
		RedirectURL: rec.RedirectURL,
		Claims:      make([]eventView, 0, len(events)),
	}
	for _, ev := range events {
		view.Claims = append(view.Claims, eventView{
			ClaimedAt:    formatTime(ev.ClaimedAt),
			MaskedNumber: ev.MaskedNumber,
		})
	}
	return view
}

func printRecord(cmd *cobra.Command, view recordView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Identifier: %s\n", view.Identifier)
	fmt.Fprintf(out, "Batch:      %s\n", valueOrDash(view.BatchID))
	fmt.Fprintf(out, "Status:     %s\n", humanLabel(view.Status))
	fmt.Fprintf(out, "Claimed:    %s\n", yesNo(view.Claimed))
	fmt.Fprintf(out, "Generated:  %s\n", view.GeneratedAt)
	fmt.Fprintf(out, "Sticker:    %s\n", valueOrDash(view.StickerPath))
	fmt.Fprintf(out, "Redirect:   %s\n", valueOrDash(view.RedirectURL))
	if len(view.Claims) == 0 {
		return
	}
	rows := make([][]string, 0, len(view.Claims))
	for _, ev := range view.Claims {
		rows = append(rows, []string{ev.ClaimedAt, valueOrDash(ev.MaskedNumber)})
	}
	fmt.Fprintln(out, renderTable([]string{"Claimed At", "Phone"}, rows, nil))
}
