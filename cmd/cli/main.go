package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiClient talks to the ledger HTTP API.
type apiClient struct {
	baseURL string
	timeout time.Duration
	out     io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &apiClient{out: out}

	rootCmd := &cobra.Command{
		Use:           "cuentas-cli",
		Short:         "Cuentas CLI tool",
		Long:          `A command line interface for interacting with the Cuentas ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&c.baseURL, "url", "http://localhost:8080", "Base URL of the Cuentas API")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(c.ledgerCmd(), c.accountCmd(), c.holderCmd())
	return rootCmd
}

// Ledger commands
func (c *apiClient) ledgerCmd() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.checkConsistency()
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Reconcile every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report map[string]any
			if err := c.do(http.MethodGet, "/api/v1/ledger/reconciliation", nil, &report); err != nil {
				return err
			}
			return c.printJSON(report)
		},
	}

	ledgerCmd.AddCommand(consistencyCmd, reportCmd)
	return ledgerCmd
}

func (c *apiClient) checkConsistency() error {
	var result struct {
		Status     string `json:"status"`
		Consistent bool   `json:"consistent"`
		Message    string `json:"message"`
	}
	err := c.do(http.MethodGet, "/api/v1/ledger/consistency", nil, &result)
	if err != nil {
		return fmt.Errorf("consistency check FAILED: %w", err)
	}

	fmt.Fprintf(c.out, "Consistency check PASSED\n")
	fmt.Fprintf(c.out, "Consistent: %v\n", result.Consistent)
	fmt.Fprintf(c.out, "Status: %s\n", result.Status)
	return nil
}

// Account commands
func (c *apiClient) accountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var (
		date     string
		order    int
		currency string
	)
	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if date != "" {
				query.Set("date", date)
			}
			if cmd.Flags().Changed("order") {
				query.Set("order", strconv.Itoa(order))
			}
			if currency != "" {
				query.Set("currency", currency)
			}

			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/balance"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			var balance struct {
				Balance   string `json:"balance"`
				Currency  string `json:"currency"`
				Formatted string `json:"formatted"`
			}
			if err := c.do(http.MethodGet, path, nil, &balance); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s %s (%s)\n", balance.Balance, balance.Currency, balance.Formatted)
			return nil
		},
	}
	balanceCmd.Flags().StringVar(&date, "date", "", "Balance at the end of this day (YYYY-MM-DD)")
	balanceCmd.Flags().IntVar(&order, "order", 0, "Balance just before this order within --date")
	balanceCmd.Flags().StringVar(&currency, "currency", "", "Convert the balance to this currency")

	var (
		subs      []string
		splitDate string
	)
	splitCmd := &cobra.Command{
		Use:   "split <account-id>",
		Short: "Split an account into subaccounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(subs) == 0 {
				return fmt.Errorf("at least one --sub is required")
			}

			body := map[string]any{"subaccounts": parseSubFlags(subs)}
			if splitDate != "" {
				body["date"] = splitDate
			}

			var created []map[string]any
			if err := c.do(http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/split", body, &created); err != nil {
				return err
			}
			for _, sub := range created {
				fmt.Fprintf(c.out, "%v\t%v\t%v\n", sub["id"], sub["key"], truncate(fmt.Sprint(sub["name"]), 30))
			}
			return nil
		},
	}
	splitCmd.Flags().StringArrayVar(&subs, "sub", nil, "Subaccount as name,key[,balance[,holder[,free]]]; repeatable")
	splitCmd.Flags().StringVar(&splitDate, "date", "", "Date of the split (YYYY-MM-DD)")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile <account-id>",
		Short: "Recompute an account balance from its movements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := c.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/reconcile", nil, &result); err != nil {
				return err
			}
			return c.printJSON(result)
		},
	}

	accountCmd.AddCommand(balanceCmd, splitCmd, reconcileCmd)
	return accountCmd
}

// Holder commands
func (c *apiClient) holderCmd() *cobra.Command {
	holderCmd := &cobra.Command{
		Use:   "holder",
		Short: "Holder operations",
	}

	var currency string
	capitalCmd := &cobra.Command{
		Use:   "capital <holder>",
		Short: "Show the capital of a holder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/holders/" + url.PathEscape(args[0]) + "/capital"
			if currency != "" {
				path += "?currency=" + url.QueryEscape(currency)
			}

			var capital map[string]any
			if err := c.do(http.MethodGet, path, nil, &capital); err != nil {
				return err
			}
			return c.printJSON(capital)
		},
	}
	capitalCmd.Flags().StringVar(&currency, "currency", "", "Express the capital in this currency")

	holderCmd.AddCommand(capitalCmd)
	return holderCmd
}

// parseSubFlags turns name,key[,balance[,holder[,free]]] flags into the
// positional form the API accepts.
func parseSubFlags(subs []string) [][]string {
	specs := make([][]string, 0, len(subs))
	for _, sub := range subs {
		fields := strings.Split(sub, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		specs = append(specs, fields)
	}
	return specs
}

// do sends a JSON request and decodes a successful response into out.
func (c *apiClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, strings.TrimRight(c.baseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *apiClient) printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(encoded))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
