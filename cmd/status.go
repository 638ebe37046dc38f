package cmd

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	v1 "github.com/votingworks/paper-handler/api/v1"
)

const statusPath = "/api/v1/scanner/status"

func NewStatusCommand() *cobra.Command {
	var (
		serverURL string
		insecure  bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the status of a running paper handler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := fetchStatus(ctx, newStatusClient(insecure), serverURL)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server-url", "http://localhost:3002", "URL of the paper handler")
	cmd.Flags().BoolVar(&insecure, "insecure-skip-verify", false, "Accept the self-signed certificate of a prod server")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")

	return cmd
}

func newStatusClient(insecure bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{Transport: transport}
}

func fetchStatus(ctx context.Context, client *http.Client, serverURL string) (v1.ScannerStatus, error) {
	var status v1.ScannerStatus

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(serverURL, "/")+statusPath, nil)
	if err != nil {
		return status, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return status, fmt.Errorf("failed to reach paper handler: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return status, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("failed to decode status: %w", err)
	}
	return status, nil
}

func printStatus(w io.Writer, status v1.ScannerStatus) {
	statusColor := color.New(color.FgYellow, color.Bold)
	switch status.Status {
	case v1.ScannerStatusStatusAcceptingPaper, v1.ScannerStatusStatusResettingStateMachineAfterSuccess:
		statusColor = color.New(color.FgGreen, color.Bold)
	case v1.ScannerStatusStatusJammed, v1.ScannerStatusStatusNoHardware:
		statusColor = color.New(color.FgRed, color.Bold)
	case v1.ScannerStatusStatusNotAcceptingPaper:
		statusColor = color.New(color.Faint)
	}

	label := color.New(color.FgCyan)

	label.Fprint(w, "status: ")
	statusColor.Fprintln(w, status.Status)
	if status.Reason != nil {
		label.Fprint(w, "reason: ")
		fmt.Fprintln(w, *status.Reason)
	}
	label.Fprint(w, "since:  ")
	fmt.Fprintf(w, "%s (%s ago)\n", status.Since.Local().Format(time.RFC3339), time.Since(status.Since).Round(time.Second))
	if status.BatchId != nil {
		label.Fprint(w, "batch:  ")
		fmt.Fprintln(w, *status.BatchId)
	}
}
