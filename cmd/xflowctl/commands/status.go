package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// status: query a running realtime listener's stats endpoint.
func statusCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show connection stats of a running realtime listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetchStatus(addr, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://127.0.0.1:8081", "status server base URL")
	return cmd
}

func fetchStatus(addr string, out io.Writer) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(addr + "/stats")
	if err != nil {
		return fmt.Errorf("failed to reach status server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status server returned HTTP %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode stats: %w", err)
	}

	pretty, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(pretty))
	return err
}
